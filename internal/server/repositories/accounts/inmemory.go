package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkit/internal/common"
	"github.com/dmitrijs2005/authkit/internal/server/models"
	"github.com/google/uuid"
)

// InMemoryRepository keeps accounts in process memory. It backs tests and
// DSN-less development runs. A single mutex spans the uniqueness check and
// the insert, so concurrent conflicting creates resolve to exactly one
// success.
type InMemoryRepository struct {
	mu        sync.Mutex
	byID      map[string]*models.Account
	idByEmail map[string]string
	idByName  map[string]string
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:      make(map[string]*models.Account),
		idByEmail: make(map[string]string),
		idByName:  make(map[string]string),
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.idByName[account.Username]; ok {
		return nil, common.ErrorAlreadyExists
	}
	if _, ok := r.idByEmail[account.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}

	stored := *account
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC()

	r.byID[stored.ID] = &stored
	r.idByName[stored.Username] = stored.ID
	r.idByEmail[stored.Email] = stored.ID

	result := stored
	return &result, nil
}

func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.idByEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}

	result := *r.byID[id]
	return &result, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}

	result := *account
	return &result, nil
}
