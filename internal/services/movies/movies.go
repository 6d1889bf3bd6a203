package movies

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"amdb/proj/internal/domain/filters"
	"amdb/proj/internal/domain/models"
	"amdb/proj/internal/storage"
)

type MoviesStorage interface {
	Get(ctx context.Context, id string) (*models.Movie, error)
	List(ctx context.Context, q *filters.MovieQuery) ([]models.MovieSummary, int, error)
}

type ReviewsStorage interface {
	ListForMovie(ctx context.Context, movieID string) ([]models.Review, error)
}

// RatingCache is optional; a nil cache disables caching.
type RatingCache interface {
	AverageRating(ctx context.Context, movieID string) (avg *float64, found bool, err error)
	SetAverageRating(ctx context.Context, movieID string, avg *float64) error
}

type MovieService struct {
	log     *slog.Logger
	storage MoviesStorage
	reviews ReviewsStorage
	cache   RatingCache
}

func New(log *slog.Logger, storage MoviesStorage, reviews ReviewsStorage, cache RatingCache) *MovieService {
	return &MovieService{
		log:     log,
		storage: storage,
		reviews: reviews,
		cache:   cache,
	}
}

type MoviePage struct {
	Movies      []models.MovieSummary `json:"movies"`
	TotalPages  int                   `json:"totalPages"`
	CurrentPage int                   `json:"currentPage"`
}

type MovieDetail struct {
	Movie         *models.Movie `json:"movie"`
	AverageRating *float64      `json:"averageRating"`
}

func (s *MovieService) List(ctx context.Context, q filters.MovieQuery) (*MoviePage, error) {
	const op = "movies.MovieService.List"
	q.Normalize()
	log := s.log.With("op", op, "q", q.Q, "genres", q.Genres, "sort", q.SortColumn(), "page", q.Page, "limit", q.Limit)
	movies, count, err := s.storage.List(ctx, &q)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	log.Debug("movies listed", "count", count)
	return &MoviePage{
		Movies:      movies,
		TotalPages:  q.TotalPages(count),
		CurrentPage: q.Page,
	}, nil
}

func (s *MovieService) Get(ctx context.Context, id string) (*models.Movie, error) {
	const op = "movies.MovieService.Get"
	log := s.log.With("op", op, "id", id)
	movie, err := s.storage.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("movie not found")
			return nil, ErrMovieNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return movie, nil
}

func (s *MovieService) Detail(ctx context.Context, id string) (*MovieDetail, error) {
	const op = "movies.MovieService.Detail"
	log := s.log.With("op", op, "id", id)
	movie, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		avg, found, err := s.cache.AverageRating(ctx, id)
		if err != nil {
			log.Warn("rating cache read failed", "errMsg", err.Error())
		} else if found {
			log.Debug("rating cache hit")
			return &MovieDetail{Movie: movie, AverageRating: avg}, nil
		}
	}
	reviews, err := s.reviews.ListForMovie(ctx, id)
	if err != nil {
		log.Error("Error listing reviews: " + err.Error())
		return nil, err
	}
	avg := AverageRating(reviews)
	if s.cache != nil {
		if err := s.cache.SetAverageRating(ctx, id, avg); err != nil {
			log.Warn("rating cache write failed", "errMsg", err.Error())
		}
	}
	return &MovieDetail{Movie: movie, AverageRating: avg}, nil
}

// AverageRating is the mean of the ratings present, rounded to two decimals.
// It is nil when no review carries a rating.
func AverageRating(reviews []models.Review) *float64 {
	var (
		sum float64
		n   int
	)
	for _, r := range reviews {
		if r.Rating != nil {
			sum += *r.Rating
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := math.Round(sum/float64(n)*100) / 100
	return &avg
}
