// Package accounts declares the repository contract for identity records.
package accounts

import (
	"context"

	"github.com/manishrnl/authservice/internal/server/models"
)

// Repository defines persistence operations for accounts.
type Repository interface {
	// Save persists a new account. If the username is already taken it
	// returns common.ErrUsernameTaken.
	Save(ctx context.Context, account *models.Account) (*models.Account, error)

	// FindByUsername returns the account with the given username, or
	// common.ErrorNotFound when absent.
	FindByUsername(ctx context.Context, username string) (*models.Account, error)

	// Exists reports whether an account with the given username exists.
	Exists(ctx context.Context, username string) (bool, error)
}
