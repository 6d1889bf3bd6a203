package users

import (
	"context"
	"errors"
	"log/slog"

	"amdb/proj/internal/domain/models"
	"amdb/proj/internal/storage"
)

type UsersStorage interface {
	Get(ctx context.Context, id string) (*models.User, error)
	Delete(ctx context.Context, id string) (*models.User, []models.Review, error)
}

type RatingCache interface {
	InvalidateAverageRating(ctx context.Context, movieIDs ...string) error
}

type TaskExecutor interface {
	Add(task func())
}

type UserService struct {
	log          *slog.Logger
	storage      UsersStorage
	cache        RatingCache
	taskExecutor TaskExecutor
}

func New(log *slog.Logger, storage UsersStorage, cache RatingCache, taskExecutor TaskExecutor) *UserService {
	return &UserService{
		log:          log,
		storage:      storage,
		cache:        cache,
		taskExecutor: taskExecutor,
	}
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	const op = "users.UserService.Get"
	log := s.log.With("op", op, "id", id)
	user, err := s.storage.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("user not found")
			return nil, ErrUserNotFound
		}
		log.Error("Error getting user", "errMsg", err.Error())
		return nil, err
	}
	return user, nil
}

// Delete removes the acting user together with every review they wrote.
func (s *UserService) Delete(ctx context.Context, id, actingUserID string) (*models.User, error) {
	const op = "users.UserService.Delete"
	log := s.log.With("op", op, "id", id, "acting_user_id", actingUserID)
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if id != actingUserID {
		log.Warn("attempt to delete another user")
		return nil, ErrForbidden
	}
	user, reviews, err := s.storage.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("user deleted concurrently")
			return nil, ErrUserNotFound
		}
		log.Error("Error deleting user", "errMsg", err.Error())
		return nil, err
	}
	log.Info("user deleted", "reviews_removed", len(reviews))
	s.invalidateRatings(reviews)
	return user, nil
}

func (s *UserService) invalidateRatings(reviews []models.Review) {
	if s.cache == nil || len(reviews) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(reviews))
	movieIDs := make([]string, 0, len(reviews))
	for _, r := range reviews {
		if _, ok := seen[r.MovieID]; ok {
			continue
		}
		seen[r.MovieID] = struct{}{}
		movieIDs = append(movieIDs, r.MovieID)
	}
	s.taskExecutor.Add(func() {
		if err := s.cache.InvalidateAverageRating(context.Background(), movieIDs...); err != nil {
			s.log.Warn("rating cache invalidation failed", "movie_ids", movieIDs, "errMsg", err.Error())
		}
	})
}
