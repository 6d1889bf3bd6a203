// Package memory is a process-local implementation of the entity store with the
// same contracts as the Postgres models. It backs the test suites and the
// `db.driver: memory` mode used for local development without a database.
package memory

import (
	"slices"
	"sync"

	"amdb/proj/internal/domain/models"

	"github.com/google/uuid"
)

type DB struct {
	mu sync.RWMutex

	movies  map[string]*models.Movie
	users   map[string]*models.User
	reviews map[string]*models.Review

	// insertion order, the "natural" order of the store
	movieOrder  []string
	reviewOrder []string
}

type Models struct {
	Movie  *MovieModel
	Review *ReviewModel
	User   *UserModel
}

func New() *Models {
	db := &DB{
		movies:  make(map[string]*models.Movie),
		users:   make(map[string]*models.User),
		reviews: make(map[string]*models.Review),
	}
	return &Models{
		Movie:  &MovieModel{db: db},
		Review: &ReviewModel{db: db},
		User:   &UserModel{db: db},
	}
}

func newID() string {
	return uuid.NewString()
}

func copyMovie(m *models.Movie) *models.Movie {
	c := *m
	c.Genre = cloneIDs(m.Genre)
	c.ReviewIDs = cloneIDs(m.ReviewIDs)
	return &c
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.ReviewIDs = cloneIDs(u.ReviewIDs)
	return &c
}

func copyReview(r *models.Review) *models.Review {
	c := *r
	if r.Rating != nil {
		rating := *r.Rating
		c.Rating = &rating
	}
	if r.Text != nil {
		text := *r.Text
		c.Text = &text
	}
	return &c
}

func removeID(ids []string, id string) []string {
	return slices.DeleteFunc(ids, func(s string) bool { return s == id })
}

// cloneIDs never returns nil so that empty lists serialize as [].
func cloneIDs(ids []string) []string {
	c := make([]string, len(ids))
	copy(c, ids)
	return c
}
