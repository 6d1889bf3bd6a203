package models

import (
	"context"

	"amdb/proj/internal/domain/models"
	"amdb/proj/internal/storage/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReviewModel struct {
	DB *pgxpool.Pool
}

const reviewColumns = `id, rating, text, user_id, movie_id`

func (m *ReviewModel) Get(ctx context.Context, id string) (*models.Review, error) {
	rows, _ := m.DB.Query(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id)
	review, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Review])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &review, nil
}

func (m *ReviewModel) Exists(ctx context.Context, userID, movieID string) (bool, error) {
	var exists bool
	err := m.DB.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM reviews WHERE user_id = $1 AND movie_id = $2)`,
		userID,
		movieID,
	).Scan(&exists)
	return exists, err
}

// Insert stores the review and appends its id to the movie's and user's review lists
// in one transaction. A second review for the same user and movie fails with
// storage.ErrConflict, an unknown movie or user with storage.ErrForeignKey.
func (m *ReviewModel) Insert(ctx context.Context, review *models.Review) (*models.Review, error) {
	if review.ID == "" {
		review.ID = newID()
	}
	var inserted models.Review
	err := pgx.BeginFunc(ctx, m.DB, func(tx pgx.Tx) error {
		rows, _ := tx.Query(
			ctx,
			`INSERT INTO reviews (id, rating, text, user_id, movie_id) VALUES ($1, $2, $3, $4, $5)
			RETURNING `+reviewColumns,
			review.ID,
			review.Rating,
			review.Text,
			review.UserID,
			review.MovieID,
		)
		var err error
		inserted, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Review])
		if err != nil {
			return err
		}
		batch := &pgx.Batch{}
		batch.Queue(`UPDATE movies SET reviews = array_append(reviews, $1) WHERE id = $2`, inserted.ID, inserted.MovieID)
		batch.Queue(`UPDATE users SET reviews = array_append(reviews, $1) WHERE id = $2`, inserted.ID, inserted.UserID)
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &inserted, nil
}

func (m *ReviewModel) Update(ctx context.Context, id string, patch models.ReviewPatch) (*models.Review, error) {
	rows, _ := m.DB.Query(
		ctx,
		`UPDATE reviews SET rating = COALESCE($2, rating), text = COALESCE($3, text)
		WHERE id = $1 RETURNING `+reviewColumns,
		id,
		patch.Rating,
		patch.Text,
	)
	updated, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Review])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &updated, nil
}

// Delete removes the review and pulls its id from the movie's and user's review lists.
func (m *ReviewModel) Delete(ctx context.Context, id string) (*models.Review, error) {
	var deleted models.Review
	err := pgx.BeginFunc(ctx, m.DB, func(tx pgx.Tx) error {
		rows, _ := tx.Query(ctx, `DELETE FROM reviews WHERE id = $1 RETURNING `+reviewColumns, id)
		var err error
		deleted, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Review])
		if err != nil {
			return err
		}
		batch := &pgx.Batch{}
		batch.Queue(`UPDATE movies SET reviews = array_remove(reviews, $1) WHERE id = $2`, deleted.ID, deleted.MovieID)
		batch.Queue(`UPDATE users SET reviews = array_remove(reviews, $1) WHERE id = $2`, deleted.ID, deleted.UserID)
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &deleted, nil
}

func (m *ReviewModel) ListForMovie(ctx context.Context, movieID string) ([]models.Review, error) {
	return m.list(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE movie_id = $1 ORDER BY created_at, id`, movieID)
}

func (m *ReviewModel) ListForUser(ctx context.Context, userID string) ([]models.Review, error) {
	return m.list(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE user_id = $1 ORDER BY created_at, id`, userID)
}

func (m *ReviewModel) list(ctx context.Context, query string, args ...any) ([]models.Review, error) {
	rows, _ := m.DB.Query(ctx, query, args...)
	reviews, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Review])
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}

// RebuildBackReferences recomputes every movie's and user's review list from the
// reviews table and returns how many rows were corrected.
func (m *ReviewModel) RebuildBackReferences(ctx context.Context) (int64, error) {
	var fixed int64
	err := pgx.BeginFunc(ctx, m.DB, func(tx pgx.Tx) error {
		for _, stmt := range []string{
			`WITH actual AS (
				SELECT m.id, COALESCE(array_agg(r.id ORDER BY r.created_at, r.id) FILTER (WHERE r.id IS NOT NULL), '{}') AS ids
				FROM movies m LEFT JOIN reviews r ON r.movie_id = m.id
				GROUP BY m.id
			)
			UPDATE movies SET reviews = actual.ids FROM actual
			WHERE movies.id = actual.id AND movies.reviews IS DISTINCT FROM actual.ids`,
			`WITH actual AS (
				SELECT u.id, COALESCE(array_agg(r.id ORDER BY r.created_at, r.id) FILTER (WHERE r.id IS NOT NULL), '{}') AS ids
				FROM users u LEFT JOIN reviews r ON r.user_id = u.id
				GROUP BY u.id
			)
			UPDATE users SET reviews = actual.ids FROM actual
			WHERE users.id = actual.id AND users.reviews IS DISTINCT FROM actual.ids`,
		} {
			tag, err := tx.Exec(ctx, stmt)
			if err != nil {
				return err
			}
			fixed += tag.RowsAffected()
		}
		return nil
	})
	return fixed, err
}
