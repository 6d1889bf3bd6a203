package reviews

import (
	"context"
	"log/slog"

	"amdb/proj/internal/domain/models"
)

// denormalizer attaches usernames and movie titles to reviews. Lookups are
// memoized for one listing. A failed lookup leaves the field empty.
type denormalizer struct {
	s         *ReviewService
	log       *slog.Logger
	usernames map[string]string
	titles    map[string]string
}

func (s *ReviewService) newDenormalizer(log *slog.Logger) *denormalizer {
	return &denormalizer{
		s:         s,
		log:       log,
		usernames: make(map[string]string),
		titles:    make(map[string]string),
	}
}

func (d *denormalizer) details(ctx context.Context, reviews []models.Review) []models.ReviewDetail {
	out := make([]models.ReviewDetail, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, d.detail(ctx, r))
	}
	return out
}

func (d *denormalizer) detail(ctx context.Context, r models.Review) models.ReviewDetail {
	return models.ReviewDetail{
		Review:     r,
		Username:   d.username(ctx, r.UserID),
		MovieTitle: d.title(ctx, r.MovieID),
	}
}

func (d *denormalizer) username(ctx context.Context, userID string) string {
	if name, ok := d.usernames[userID]; ok {
		return name
	}
	var name string
	if user, err := d.s.users.Get(ctx, userID); err != nil {
		d.log.Warn("could not resolve review author", "user_id", userID, "errMsg", err.Error())
	} else {
		name = user.Username
	}
	d.usernames[userID] = name
	return name
}

func (d *denormalizer) title(ctx context.Context, movieID string) string {
	if title, ok := d.titles[movieID]; ok {
		return title
	}
	var title string
	if movie, err := d.s.movies.Get(ctx, movieID); err != nil {
		d.log.Warn("could not resolve reviewed movie", "movie_id", movieID, "errMsg", err.Error())
	} else {
		title = movie.Title
	}
	d.titles[movieID] = title
	return title
}
