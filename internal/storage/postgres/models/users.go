package models

import (
	"context"

	"amdb/proj/internal/domain/models"
	"amdb/proj/internal/storage/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserModel struct {
	DB *pgxpool.Pool
}

const userColumns = `id, username, hash, salt, reviews`

func (m *UserModel) Get(ctx context.Context, id string) (*models.User, error) {
	return m.getBy(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (m *UserModel) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.getBy(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (m *UserModel) getBy(ctx context.Context, query string, arg any) (*models.User, error) {
	rows, _ := m.DB.Query(ctx, query, arg)
	user, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.User])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &user, nil
}

func (m *UserModel) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := m.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	return exists, err
}

// Insert fails with storage.ErrConflict when the username is taken.
func (m *UserModel) Insert(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = newID()
	}
	rows, _ := m.DB.Query(
		ctx,
		`INSERT INTO users (id, username, hash, salt) VALUES ($1, $2, $3, $4) RETURNING `+userColumns,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.Salt,
	)
	inserted, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.User])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &inserted, nil
}

// Delete removes the user together with every review the user wrote, pulling each
// review id from its movie. Reviews are found by owner, not through the user's list.
func (m *UserModel) Delete(ctx context.Context, id string) (*models.User, []models.Review, error) {
	var (
		deleted models.User
		reviews []models.Review
	)
	err := pgx.BeginFunc(ctx, m.DB, func(tx pgx.Tx) error {
		rows, _ := tx.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
		var err error
		deleted, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[models.User])
		if err != nil {
			return err
		}
		rows, _ = tx.Query(ctx, `DELETE FROM reviews WHERE user_id = $1 RETURNING `+reviewColumns, id)
		reviews, err = pgx.CollectRows(rows, pgx.RowToStructByName[models.Review])
		if err != nil {
			return err
		}
		if len(reviews) > 0 {
			batch := &pgx.Batch{}
			for _, r := range reviews {
				batch.Queue(`UPDATE movies SET reviews = array_remove(reviews, $1) WHERE id = $2`, r.ID, r.MovieID)
			}
			if err := tx.SendBatch(ctx, batch).Close(); err != nil {
				return err
			}
		}
		_, err = tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return nil, nil, postgres.MapError(err)
	}
	return &deleted, reviews, nil
}
