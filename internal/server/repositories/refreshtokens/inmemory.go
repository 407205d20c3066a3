package refreshtokens

import (
	"context"
	"sync"

	"github.com/manishrnl/authservice/internal/common"
	"github.com/manishrnl/authservice/internal/server/models"
)

// InMemoryRepository is a map-backed Repository for tests and local runs.
// The mutex makes check-then-act sequences on the same token value atomic.
type InMemoryRepository struct {
	mu      sync.Mutex
	byToken map[string]*models.RefreshToken
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byToken: make(map[string]*models.RefreshToken)}
}

func (r *InMemoryRepository) Save(ctx context.Context, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byToken[token.Token]; ok {
		return ErrDuplicateToken
	}
	stored := *token
	r.byToken[token.Token] = &stored
	return nil
}

func (r *InMemoryRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byToken[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	record := *stored
	return &record, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byToken[token]; !ok {
		return false, nil
	}
	delete(r.byToken, token)
	return true, nil
}

// Replace rotates oldToken to token under the repository mutex, so the
// delete-then-save pair is atomic with respect to other operations.
func (r *InMemoryRepository) Replace(ctx context.Context, oldToken string, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byToken[oldToken]; !ok {
		return common.ErrorNotFound
	}
	if _, ok := r.byToken[token.Token]; ok && token.Token != oldToken {
		return ErrDuplicateToken
	}
	delete(r.byToken, oldToken)
	stored := *token
	r.byToken[token.Token] = &stored
	return nil
}

// Len reports the number of stored records. Test helper.
func (r *InMemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byToken)
}
