package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/awap-platform/internal/domain/user"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]user.User
}

func NewUserRepository(users []user.User) *UserRepository {
	byName := make(map[string]user.User, len(users))
	for _, item := range users {
		byName[item.Username] = item
	}

	return &UserRepository{users: byName}
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.users[username]
	return item, ok, nil
}

func (r *UserRepository) Create(_ context.Context, item user.User) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("invalid user: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[item.Username]; exists {
		return fmt.Errorf("%w: %s", user.ErrAlreadyExists, item.Username)
	}
	r.users[item.Username] = item
	return nil
}

func (r *UserRepository) SetTeam(_ context.Context, username, team string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.users[username]
	if !ok {
		return fmt.Errorf("%w: %s", user.ErrNotFound, username)
	}
	item.Team = team
	r.users[username] = item
	return nil
}
