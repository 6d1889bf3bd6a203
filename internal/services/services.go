package services

import (
	"context"
	"log/slog"

	"amdb/proj/internal/domain/models"
	"amdb/proj/internal/services/auth"
	"amdb/proj/internal/services/movies"
	"amdb/proj/internal/services/reviews"
	"amdb/proj/internal/services/users"
	"amdb/proj/internal/storage/rediscache"
)

type MoviesStorage interface {
	movies.MoviesStorage
	Insert(ctx context.Context, movie *models.Movie) (*models.Movie, error)
}

type UsersStorage interface {
	auth.UsersStorage
	Delete(ctx context.Context, id string) (*models.User, []models.Review, error)
}

// Storage groups the entity stores. Both the Postgres and the in-memory models satisfy it.
type Storage struct {
	Movies  MoviesStorage
	Reviews reviews.ReviewStorage
	Users   UsersStorage
}

type Services struct {
	Auth    *auth.AuthService
	Movies  *movies.MovieService
	Reviews *reviews.ReviewService
	Users   *users.UserService
}

// New wires the services. cache may be nil, which runs them without a rating cache.
func New(log *slog.Logger, storage Storage, tokens *auth.TokenIssuer, cache *rediscache.Cache, taskExecutor users.TaskExecutor) *Services {
	var (
		moviesCache  movies.RatingCache
		reviewsCache reviews.RatingCache
		usersCache   users.RatingCache
	)
	if cache != nil {
		moviesCache, reviewsCache, usersCache = cache, cache, cache
	}
	return &Services{
		Auth:    auth.New(log, storage.Users, tokens),
		Movies:  movies.New(log, storage.Movies, storage.Reviews, moviesCache),
		Reviews: reviews.New(log, storage.Reviews, storage.Users, storage.Movies, reviewsCache),
		Users:   users.New(log, storage.Users, usersCache, taskExecutor),
	}
}
