package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"amdb/proj/internal/config"
	"amdb/proj/internal/domain/models"
	"amdb/proj/internal/services"
	"amdb/proj/internal/storage/memory"
	"amdb/proj/internal/storage/postgres"
	pgmodels "amdb/proj/internal/storage/postgres/models"
	"amdb/proj/internal/storage/rediscache"
)

func openStorage(ctx context.Context, log *slog.Logger, cfg *config.Config) (services.Storage, func(), error) {
	if cfg.DB.Driver == config.DriverMemory {
		log.Warn("using in-memory storage, data will be lost on exit")
		return memoryStorage(memory.New()), func() {}, nil
	}
	connCtx, cancel := context.WithTimeout(ctx, cfg.DB.ConnectTimeout)
	defer cancel()
	db, err := postgres.New(connCtx, cfg.DB.Dsn, cfg.DB.MaxConns, cfg.DB.MaxConnIdleTime)
	if err != nil {
		return services.Storage{}, nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Info("database connection established")
	if !cfg.DB.SkipMigrations {
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return services.Storage{}, nil, err
		}
		log.Info("database schema is up to date")
	}
	m := pgmodels.New(db, cfg.DB.TitleCollation)
	return services.Storage{Movies: m.Movie, Reviews: m.Review, Users: m.User}, db.Close, nil
}

func memoryStorage(m *memory.Models) services.Storage {
	return services.Storage{Movies: m.Movie, Reviews: m.Review, Users: m.User}
}

// openCache returns nil when Redis is disabled or unreachable; the service then runs uncached.
func openCache(ctx context.Context, log *slog.Logger, cfg *config.Config) *rediscache.Cache {
	if !cfg.Redis.Enabled {
		return nil
	}
	cache, err := rediscache.New(ctx, rediscache.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		TTL:          cfg.Redis.TTL,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		log.Warn("redis unavailable, running without rating cache", "errMsg", err.Error())
		return nil
	}
	log.Info("redis connection established", "addr", cfg.Redis.Addr)
	return cache
}

func seedMovies(ctx context.Context, log *slog.Logger, storage services.MoviesStorage, path string) error {
	const op = "main.seedMovies"
	log = log.With("op", op, "path", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var movies []models.Movie
	if err := json.Unmarshal(data, &movies); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	for i := range movies {
		if _, err := storage.Insert(ctx, &movies[i]); err != nil {
			return fmt.Errorf("insert movie %q: %w", movies[i].Title, err)
		}
	}
	log.Info("movies seeded", "count", len(movies))
	return nil
}
