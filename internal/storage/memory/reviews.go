package memory

import (
	"context"
	"slices"

	"amdb/proj/internal/domain/models"
	"amdb/proj/internal/storage"
)

type ReviewModel struct {
	db *DB
}

func (m *ReviewModel) Get(_ context.Context, id string) (*models.Review, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()
	review, ok := m.db.reviews[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyReview(review), nil
}

func (m *ReviewModel) Exists(_ context.Context, userID, movieID string) (bool, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()
	return m.db.reviewExists(userID, movieID), nil
}

func (db *DB) reviewExists(userID, movieID string) bool {
	for _, r := range db.reviews {
		if r.UserID == userID && r.MovieID == movieID {
			return true
		}
	}
	return false
}

func (m *ReviewModel) Insert(_ context.Context, review *models.Review) (*models.Review, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if m.db.reviewExists(review.UserID, review.MovieID) {
		return nil, storage.ErrConflict
	}
	movie, ok := m.db.movies[review.MovieID]
	if !ok {
		return nil, storage.ErrForeignKey
	}
	user, ok := m.db.users[review.UserID]
	if !ok {
		return nil, storage.ErrForeignKey
	}
	stored := copyReview(review)
	if stored.ID == "" {
		stored.ID = newID()
	}
	m.db.reviews[stored.ID] = stored
	m.db.reviewOrder = append(m.db.reviewOrder, stored.ID)
	movie.ReviewIDs = append(movie.ReviewIDs, stored.ID)
	user.ReviewIDs = append(user.ReviewIDs, stored.ID)
	return copyReview(stored), nil
}

func (m *ReviewModel) Update(_ context.Context, id string, patch models.ReviewPatch) (*models.Review, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	review, ok := m.db.reviews[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if patch.Rating != nil {
		rating := *patch.Rating
		review.Rating = &rating
	}
	if patch.Text != nil {
		text := *patch.Text
		review.Text = &text
	}
	return copyReview(review), nil
}

func (m *ReviewModel) Delete(_ context.Context, id string) (*models.Review, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	review, ok := m.db.deleteReview(id)
	if !ok {
		return nil, storage.ErrNotFound
	}
	if user, ok := m.db.users[review.UserID]; ok {
		user.ReviewIDs = removeID(user.ReviewIDs, id)
	}
	return review, nil
}

// deleteReview removes the review and pulls it from its movie. Callers hold the write lock.
func (db *DB) deleteReview(id string) (*models.Review, bool) {
	review, ok := db.reviews[id]
	if !ok {
		return nil, false
	}
	delete(db.reviews, id)
	db.reviewOrder = removeID(db.reviewOrder, id)
	if movie, ok := db.movies[review.MovieID]; ok {
		movie.ReviewIDs = removeID(movie.ReviewIDs, id)
	}
	return review, true
}

func (m *ReviewModel) ListForMovie(_ context.Context, movieID string) ([]models.Review, error) {
	return m.list(func(r *models.Review) bool { return r.MovieID == movieID }), nil
}

func (m *ReviewModel) ListForUser(_ context.Context, userID string) ([]models.Review, error) {
	return m.list(func(r *models.Review) bool { return r.UserID == userID }), nil
}

func (m *ReviewModel) list(match func(*models.Review) bool) []models.Review {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()
	reviews := []models.Review{}
	for _, id := range m.db.reviewOrder {
		if r := m.db.reviews[id]; match(r) {
			reviews = append(reviews, *copyReview(r))
		}
	}
	return reviews
}

func (m *ReviewModel) RebuildBackReferences(_ context.Context) (int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	movieRefs := make(map[string][]string)
	userRefs := make(map[string][]string)
	for _, id := range m.db.reviewOrder {
		r := m.db.reviews[id]
		movieRefs[r.MovieID] = append(movieRefs[r.MovieID], id)
		userRefs[r.UserID] = append(userRefs[r.UserID], id)
	}
	var fixed int64
	for id, movie := range m.db.movies {
		if want := cloneIDs(movieRefs[id]); !slices.Equal(movie.ReviewIDs, want) {
			movie.ReviewIDs = want
			fixed++
		}
	}
	for id, user := range m.db.users {
		if want := cloneIDs(userRefs[id]); !slices.Equal(user.ReviewIDs, want) {
			user.ReviewIDs = want
			fixed++
		}
	}
	return fixed, nil
}

// CorruptBackReferences overwrites a movie's review list. Tests use it to
// simulate a back-reference that drifted from the reviews.
func (m *ReviewModel) CorruptBackReferences(movieID string, ids []string) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if movie, ok := m.db.movies[movieID]; ok {
		movie.ReviewIDs = cloneIDs(ids)
	}
}
