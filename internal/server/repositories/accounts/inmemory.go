package accounts

import (
	"context"
	"sync"

	"github.com/manishrnl/authservice/internal/common"
	"github.com/manishrnl/authservice/internal/server/models"
)

// InMemoryRepository is a map-backed Repository for tests and local runs.
type InMemoryRepository struct {
	mu         sync.RWMutex
	byUsername map[string]*models.Account
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byUsername: make(map[string]*models.Account)}
}

func (r *InMemoryRepository) Save(ctx context.Context, account *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUsername[account.Username]; ok {
		return nil, common.ErrUsernameTaken
	}
	stored := *account
	r.byUsername[account.Username] = &stored
	return account, nil
}

func (r *InMemoryRepository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byUsername[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	account := *stored
	return &account, nil
}

func (r *InMemoryRepository) Exists(ctx context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byUsername[username]
	return ok, nil
}
