package reviews

import (
	"context"
	"errors"
	"log/slog"

	"amdb/proj/internal/domain/models"
	"amdb/proj/internal/storage"
)

type ReviewStorage interface {
	Get(ctx context.Context, id string) (*models.Review, error)
	Exists(ctx context.Context, userID, movieID string) (bool, error)
	Insert(ctx context.Context, review *models.Review) (*models.Review, error)
	Update(ctx context.Context, id string, patch models.ReviewPatch) (*models.Review, error)
	Delete(ctx context.Context, id string) (*models.Review, error)
	ListForMovie(ctx context.Context, movieID string) ([]models.Review, error)
	ListForUser(ctx context.Context, userID string) ([]models.Review, error)
	RebuildBackReferences(ctx context.Context) (int64, error)
}

type UsersStorage interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

type MoviesStorage interface {
	Get(ctx context.Context, id string) (*models.Movie, error)
}

// RatingCache is optional; a nil cache disables invalidation.
type RatingCache interface {
	InvalidateAverageRating(ctx context.Context, movieIDs ...string) error
}

type ReviewService struct {
	log     *slog.Logger
	storage ReviewStorage
	users   UsersStorage
	movies  MoviesStorage
	cache   RatingCache
}

func New(log *slog.Logger, storage ReviewStorage, users UsersStorage, movies MoviesStorage, cache RatingCache) *ReviewService {
	return &ReviewService{
		log:     log,
		storage: storage,
		users:   users,
		movies:  movies,
		cache:   cache,
	}
}

type CreateInput struct {
	Rating  *float64
	Text    *string
	MovieID string
}

func (s *ReviewService) Get(ctx context.Context, id string) (*models.ReviewDetail, error) {
	const op = "reviews.ReviewService.Get"
	log := s.log.With("op", op, "id", id)
	review, err := s.get(ctx, log, id)
	if err != nil {
		return nil, err
	}
	detail := s.newDenormalizer(log).detail(ctx, *review)
	return &detail, nil
}

func (s *ReviewService) get(ctx context.Context, log *slog.Logger, id string) (*models.Review, error) {
	review, err := s.storage.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("review not found")
			return nil, ErrReviewNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return review, nil
}

// Create stores a review by the acting user. The existence check gives a clean
// error early; the unique (user, movie) index is what rejects concurrent duplicates.
func (s *ReviewService) Create(ctx context.Context, input CreateInput, actingUserID string) (*models.Review, error) {
	const op = "reviews.ReviewService.Create"
	log := s.log.With("op", op, "movie_id", input.MovieID, "user_id", actingUserID)
	if input.Rating == nil && input.Text == nil {
		return nil, ErrInvalidReview
	}
	exists, err := s.storage.Exists(ctx, actingUserID, input.MovieID)
	if err != nil {
		log.Error("Error checking for existing review: " + err.Error())
		return nil, err
	}
	if exists {
		log.Info("review already exists")
		return nil, ErrReviewAlreadyExists
	}
	review, err := s.storage.Insert(ctx, &models.Review{
		Rating:  input.Rating,
		Text:    input.Text,
		UserID:  actingUserID,
		MovieID: input.MovieID,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			log.Info("review created concurrently")
			return nil, ErrReviewAlreadyExists
		case errors.Is(err, storage.ErrForeignKey):
			log.Info("movie does not exist")
			return nil, ErrMovieNotFound
		}
		log.Error("Error inserting review: " + err.Error())
		return nil, err
	}
	log.Info("review created", "id", review.ID)
	s.invalidateRating(ctx, log, review.MovieID)
	return review, nil
}

func (s *ReviewService) Update(ctx context.Context, id, actingUserID string, patch models.ReviewPatch) (*models.Review, error) {
	const op = "reviews.ReviewService.Update"
	log := s.log.With("op", op, "id", id, "user_id", actingUserID)
	review, err := s.get(ctx, log, id)
	if err != nil {
		return nil, err
	}
	if review.UserID != actingUserID {
		log.Warn("attempt to update someone else's review", "owner_id", review.UserID)
		return nil, ErrNotOwner
	}
	if patch.IsEmpty() {
		return nil, ErrInvalidReview
	}
	updated, err := s.storage.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("review deleted before update")
			return nil, ErrReviewNotFound
		}
		log.Error("Error updating review: " + err.Error())
		return nil, err
	}
	if patch.Rating != nil {
		s.invalidateRating(ctx, log, updated.MovieID)
	}
	return updated, nil
}

func (s *ReviewService) Delete(ctx context.Context, id, actingUserID string) (*models.Review, error) {
	const op = "reviews.ReviewService.Delete"
	log := s.log.With("op", op, "id", id, "user_id", actingUserID)
	review, err := s.get(ctx, log, id)
	if err != nil {
		return nil, err
	}
	if review.UserID != actingUserID {
		log.Warn("attempt to delete someone else's review", "owner_id", review.UserID)
		return nil, ErrNotOwner
	}
	deleted, err := s.storage.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("review already deleted")
			return nil, ErrReviewNotFound
		}
		log.Error("Error deleting review: " + err.Error())
		return nil, err
	}
	log.Info("review deleted")
	s.invalidateRating(ctx, log, deleted.MovieID)
	return deleted, nil
}

func (s *ReviewService) ListForMovie(ctx context.Context, movieID string) ([]models.ReviewDetail, error) {
	const op = "reviews.ReviewService.ListForMovie"
	log := s.log.With("op", op, "movie_id", movieID)
	reviews, err := s.storage.ListForMovie(ctx, movieID)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	return s.newDenormalizer(log).details(ctx, reviews), nil
}

func (s *ReviewService) ListForUser(ctx context.Context, userID string) ([]models.ReviewDetail, error) {
	const op = "reviews.ReviewService.ListForUser"
	log := s.log.With("op", op, "user_id", userID)
	reviews, err := s.storage.ListForUser(ctx, userID)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	return s.newDenormalizer(log).details(ctx, reviews), nil
}

// RebuildBackReferences recomputes the review id lists of all movies and users.
func (s *ReviewService) RebuildBackReferences(ctx context.Context) (int64, error) {
	const op = "reviews.ReviewService.RebuildBackReferences"
	log := s.log.With("op", op)
	fixed, err := s.storage.RebuildBackReferences(ctx)
	if err != nil {
		log.Error(err.Error())
		return 0, err
	}
	if fixed > 0 {
		log.Warn("back-references repaired", "rows", fixed)
	} else {
		log.Debug("back-references consistent")
	}
	return fixed, nil
}

func (s *ReviewService) invalidateRating(ctx context.Context, log *slog.Logger, movieID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAverageRating(ctx, movieID); err != nil {
		log.Warn("rating cache invalidation failed", "movie_id", movieID, "errMsg", err.Error())
	}
}
