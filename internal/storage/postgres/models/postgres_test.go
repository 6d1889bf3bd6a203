package models

import (
	"context"
	"os"
	"testing"
	"time"

	"amdb/proj/internal/domain/models"
	"amdb/proj/internal/storage"
	"amdb/proj/internal/storage/postgres"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestModels connects to TEST_DB_DSN and applies the schema.
// Rows are keyed by fresh uuids so runs against a shared database do not collide.
func newTestModels(t *testing.T) *Models {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := postgres.New(ctx, dsn, 4, time.Minute)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))
	return New(db, "")
}

func insertTestUser(t *testing.T, m *Models) *models.User {
	t.Helper()
	user, err := m.User.Insert(context.Background(), &models.User{
		Username:     "user-" + uuid.NewString(),
		PasswordHash: "hash",
		Salt:         "salt",
	})
	require.NoError(t, err)
	return user
}

func insertTestMovie(t *testing.T, m *Models) *models.Movie {
	t.Helper()
	movie, err := m.Movie.Insert(context.Background(), &models.Movie{
		Title:       "Movie " + uuid.NewString(),
		Genre:       []string{"Drama"},
		ReleaseDate: time.Date(1999, 3, 31, 0, 0, 0, 0, time.UTC),
		Duration:    136,
	})
	require.NoError(t, err)
	return movie
}

func rating(v float64) *float64 { return &v }

func TestPostgresReviewInsert(t *testing.T) {
	m := newTestModels(t)
	ctx := context.Background()
	user, movie := insertTestUser(t, m), insertTestMovie(t, m)

	review, err := m.Review.Insert(ctx, &models.Review{Rating: rating(4.5), UserID: user.ID, MovieID: movie.ID})
	require.NoError(t, err)

	gotMovie, err := m.Movie.Get(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{review.ID}, gotMovie.ReviewIDs)
	gotUser, err := m.User.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{review.ID}, gotUser.ReviewIDs)

	t.Run("duplicate is a conflict", func(t *testing.T) {
		_, err := m.Review.Insert(ctx, &models.Review{Rating: rating(1), UserID: user.ID, MovieID: movie.ID})
		assert.ErrorIs(t, err, storage.ErrConflict)
		gotMovie, err := m.Movie.Get(ctx, movie.ID)
		require.NoError(t, err)
		assert.Len(t, gotMovie.ReviewIDs, 1)
	})
	t.Run("unknown movie is a foreign key error", func(t *testing.T) {
		_, err := m.Review.Insert(ctx, &models.Review{Rating: rating(1), UserID: user.ID, MovieID: uuid.NewString()})
		assert.ErrorIs(t, err, storage.ErrForeignKey)
	})
}

func TestPostgresReviewDelete(t *testing.T) {
	m := newTestModels(t)
	ctx := context.Background()
	user, movie := insertTestUser(t, m), insertTestMovie(t, m)
	review, err := m.Review.Insert(ctx, &models.Review{Rating: rating(3), UserID: user.ID, MovieID: movie.ID})
	require.NoError(t, err)

	deleted, err := m.Review.Delete(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, review.ID, deleted.ID)

	gotMovie, err := m.Movie.Get(ctx, movie.ID)
	require.NoError(t, err)
	assert.Empty(t, gotMovie.ReviewIDs)
	gotUser, err := m.User.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, gotUser.ReviewIDs)

	_, err = m.Review.Get(ctx, review.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = m.Review.Delete(ctx, review.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPostgresUserDeleteCascades(t *testing.T) {
	m := newTestModels(t)
	ctx := context.Background()
	author, other := insertTestUser(t, m), insertTestUser(t, m)
	first, second := insertTestMovie(t, m), insertTestMovie(t, m)

	for _, movie := range []*models.Movie{first, second} {
		_, err := m.Review.Insert(ctx, &models.Review{Rating: rating(2), UserID: author.ID, MovieID: movie.ID})
		require.NoError(t, err)
	}
	kept, err := m.Review.Insert(ctx, &models.Review{Rating: rating(5), UserID: other.ID, MovieID: first.ID})
	require.NoError(t, err)

	deleted, reviews, err := m.User.Delete(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, author.ID, deleted.ID)
	assert.Len(t, reviews, 2)

	_, err = m.User.Get(ctx, author.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	gotFirst, err := m.Movie.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{kept.ID}, gotFirst.ReviewIDs)
	gotSecond, err := m.Movie.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Empty(t, gotSecond.ReviewIDs)

	_, _, err = m.User.Delete(ctx, author.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPostgresRebuildBackReferences(t *testing.T) {
	m := newTestModels(t)
	ctx := context.Background()
	user, movie := insertTestUser(t, m), insertTestMovie(t, m)
	review, err := m.Review.Insert(ctx, &models.Review{Rating: rating(4), UserID: user.ID, MovieID: movie.ID})
	require.NoError(t, err)

	_, err = m.Movie.DB.Exec(ctx, `UPDATE movies SET reviews = $1 WHERE id = $2`, []string{"missing"}, movie.ID)
	require.NoError(t, err)
	_, err = m.User.DB.Exec(ctx, `UPDATE users SET reviews = '{}' WHERE id = $1`, user.ID)
	require.NoError(t, err)

	fixed, err := m.Review.RebuildBackReferences(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, fixed, int64(2))

	gotMovie, err := m.Movie.Get(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{review.ID}, gotMovie.ReviewIDs)
	gotUser, err := m.User.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{review.ID}, gotUser.ReviewIDs)
}
