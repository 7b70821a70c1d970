package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"pickem-app/database"
	"pickem-app/models"
)

// UserRepository keeps users in memory keyed by subject
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*models.User)}
}

func (r *UserRepository) UpsertLogin(ctx context.Context, identity models.Identity, at time.Time) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for subject, other := range r.users {
		if subject != identity.Subject && other.Username == identity.Username {
			return nil, fmt.Errorf("username %s: %w", identity.Username, database.ErrDuplicate)
		}
	}

	user, ok := r.users[identity.Subject]
	if !ok {
		user = &models.User{UserID: identity.Subject, CreatedAt: at}
		r.users[identity.Subject] = user
	}
	user.Name = identity.Name
	user.Username = identity.Username
	user.UpdatedAt = at
	user.LastLoginAt = at

	c := *user
	return &c, nil
}

func (r *UserRepository) FindByID(ctx context.Context, userID string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, database.ErrNotFound)
	}
	c := *user
	return &c, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Username == username {
			c := *user
			return &c, nil
		}
	}
	return nil, fmt.Errorf("username %s: %w", username, database.ErrNotFound)
}

func (r *UserRepository) FindAll(ctx context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*models.User, 0, len(r.users))
	for _, user := range r.users {
		c := *user
		users = append(users, &c)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserID < users[j].UserID })
	return users, nil
}

func (r *UserRepository) SetDisplayName(ctx context.Context, userID, displayName string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, database.ErrNotFound)
	}
	user.DisplayName = displayName
	user.UpdatedAt = time.Now().UTC()
	c := *user
	return &c, nil
}
