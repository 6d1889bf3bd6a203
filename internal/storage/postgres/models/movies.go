package models

import (
	"context"

	"amdb/proj/internal/domain/filters"
	"amdb/proj/internal/domain/models"
	"amdb/proj/internal/storage/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MovieModel struct {
	DB             *pgxpool.Pool
	TitleCollation string
}

const movieColumns = `id, title, poster_path, genre, description, budget, release_date, duration, reviews`

func (m *MovieModel) Get(ctx context.Context, id string) (*models.Movie, error) {
	rows, err := m.DB.Query(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	movie, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Movie])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &movie, nil
}

// Insert is used for seeding; the HTTP surface exposes movies read-only.
func (m *MovieModel) Insert(ctx context.Context, movie *models.Movie) (*models.Movie, error) {
	if movie.ID == "" {
		movie.ID = newID()
	}
	rows, _ := m.DB.Query(
		ctx,
		`INSERT INTO movies (id, title, poster_path, genre, description, budget, release_date, duration)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING `+movieColumns,
		movie.ID,
		movie.Title,
		movie.PosterPath,
		movie.Genre,
		movie.Description,
		movie.Budget,
		movie.ReleaseDate,
		movie.Duration,
	)
	inserted, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Movie])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &inserted, nil
}

// List counts every movie matching the query, then fetches the requested page.
func (m *MovieModel) List(ctx context.Context, q *filters.MovieQuery) ([]models.MovieSummary, int, error) {
	countSQL, countArgs := buildMovieCountQuery(q)
	var count int
	if err := m.DB.QueryRow(ctx, countSQL, countArgs...).Scan(&count); err != nil {
		return nil, 0, err
	}
	pageSQL, pageArgs := buildMoviePageQuery(q, m.TitleCollation)
	rows, _ := m.DB.Query(ctx, pageSQL, pageArgs...)
	movies, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.MovieSummary])
	if err != nil {
		return nil, 0, err
	}
	if movies == nil {
		movies = []models.MovieSummary{}
	}
	return movies, count, nil
}
