package memory

import (
	"context"
	"sort"
	"strings"

	"amdb/proj/internal/domain/filters"
	"amdb/proj/internal/domain/models"
	"amdb/proj/internal/storage"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type MovieModel struct {
	db *DB
}

func (m *MovieModel) Get(_ context.Context, id string) (*models.Movie, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()
	movie, ok := m.db.movies[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyMovie(movie), nil
}

func (m *MovieModel) Insert(_ context.Context, movie *models.Movie) (*models.Movie, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	stored := copyMovie(movie)
	if stored.ID == "" {
		stored.ID = newID()
	}
	if _, ok := m.db.movies[stored.ID]; ok {
		return nil, storage.ErrConflict
	}
	stored.ReviewIDs = []string{}
	m.db.movies[stored.ID] = stored
	m.db.movieOrder = append(m.db.movieOrder, stored.ID)
	return copyMovie(stored), nil
}

func matchesMovie(q *filters.MovieQuery, movie *models.Movie) bool {
	if q.Q != "" && !strings.HasPrefix(strings.ToLower(movie.Title), strings.ToLower(q.Q)) {
		return false
	}
	for _, genre := range q.Genres {
		found := false
		for _, g := range movie.Genre {
			if g == genre {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return q.Duration.Contains(float64(movie.Duration)) && q.Budget.Contains(float64(movie.Budget))
}

// List mirrors the Postgres listing: count first, then one sort key with a
// stable sort so ties keep insertion order. Titles compare with English collation.
func (m *MovieModel) List(_ context.Context, q *filters.MovieQuery) ([]models.MovieSummary, int, error) {
	m.db.mu.RLock()
	matched := make([]*models.Movie, 0)
	for _, id := range m.db.movieOrder {
		if movie := m.db.movies[id]; matchesMovie(q, movie) {
			matched = append(matched, copyMovie(movie))
		}
	}
	m.db.mu.RUnlock()

	count := len(matched)
	var compare func(a, b *models.Movie) int
	switch q.SortColumn() {
	case filters.SortByDuration:
		compare = func(a, b *models.Movie) int { return cmpNumber(a.Duration, b.Duration) }
	case filters.SortByBudget:
		compare = func(a, b *models.Movie) int { return cmpNumber(a.Budget, b.Budget) }
	default:
		collator := collate.New(language.English)
		compare = func(a, b *models.Movie) int { return collator.CompareString(a.Title, b.Title) }
	}
	desc := q.IsDescending()
	sort.SliceStable(matched, func(i, j int) bool {
		if desc {
			return compare(matched[j], matched[i]) < 0
		}
		return compare(matched[i], matched[j]) < 0
	})

	page := []models.MovieSummary{}
	for i := q.Offset(); i >= 0 && i < len(matched) && len(page) < q.Limit; i++ {
		page = append(page, models.MovieSummary{
			ID:         matched[i].ID,
			Title:      matched[i].Title,
			PosterPath: matched[i].PosterPath,
		})
	}
	return page, count, nil
}

func cmpNumber[T int32 | int64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
