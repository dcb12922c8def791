// Package accounts persists account records behind a backend-agnostic
// repository interface.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/authkit/internal/server/models"
)

// Repository is the storage contract for account records.
//
// Create assigns ID and CreatedAt atomically with the insert and must enforce
// username and email uniqueness at the write boundary: of two concurrent
// conflicting creates exactly one succeeds and the other observes
// common.ErrorAlreadyExists. Lookups return common.ErrorNotFound when no
// record matches.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
}
