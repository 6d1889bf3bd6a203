package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"amdb/proj/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresDB struct {
	Conn *pgxpool.Pool
}

const (
	ErrConflictCode   = "23505"
	ErrForeignKeyCode = "23503"
)

//go:embed schema.sql
var schema string

func New(ctx context.Context, dsn string, maxConns int, maxConnIdleTime time.Duration) (*PostgresDB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = int32(maxConns)
	cfg.MaxConnIdleTime = maxConnIdleTime
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresDB{Conn: pool}, nil
}

// Migrate creates missing tables and indexes. It is safe to run on every start.
func (db *PostgresDB) Migrate(ctx context.Context) error {
	if _, err := db.Conn.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (db *PostgresDB) Close() {
	db.Conn.Close()
}

// MapError translates driver errors into storage sentinels.
func MapError(err error) error {
	var pgErr *pgconn.PgError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return storage.ErrNotFound
	case errors.As(err, &pgErr) && pgErr.Code == ErrConflictCode:
		return storage.ErrConflict
	case errors.As(err, &pgErr) && pgErr.Code == ErrForeignKeyCode:
		return storage.ErrForeignKey
	}
	return err
}
