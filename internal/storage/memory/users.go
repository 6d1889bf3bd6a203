package memory

import (
	"context"

	"amdb/proj/internal/domain/models"
	"amdb/proj/internal/storage"
)

type UserModel struct {
	db *DB
}

func (m *UserModel) Get(_ context.Context, id string) (*models.User, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()
	user, ok := m.db.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyUser(user), nil
}

func (m *UserModel) GetByUsername(_ context.Context, username string) (*models.User, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()
	if user := m.db.userByName(username); user != nil {
		return copyUser(user), nil
	}
	return nil, storage.ErrNotFound
}

func (db *DB) userByName(username string) *models.User {
	for _, u := range db.users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

func (m *UserModel) ExistsByUsername(_ context.Context, username string) (bool, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()
	return m.db.userByName(username) != nil, nil
}

func (m *UserModel) Insert(_ context.Context, user *models.User) (*models.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if m.db.userByName(user.Username) != nil {
		return nil, storage.ErrConflict
	}
	stored := copyUser(user)
	if stored.ID == "" {
		stored.ID = newID()
	}
	stored.ReviewIDs = []string{}
	m.db.users[stored.ID] = stored
	return copyUser(stored), nil
}

func (m *UserModel) Delete(_ context.Context, id string) (*models.User, []models.Review, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	user, ok := m.db.users[id]
	if !ok {
		return nil, nil, storage.ErrNotFound
	}
	var owned []string
	for _, rid := range m.db.reviewOrder {
		if m.db.reviews[rid].UserID == id {
			owned = append(owned, rid)
		}
	}
	reviews := make([]models.Review, 0, len(owned))
	for _, rid := range owned {
		if r, ok := m.db.deleteReview(rid); ok {
			reviews = append(reviews, *r)
		}
	}
	delete(m.db.users, id)
	return user, reviews, nil
}
