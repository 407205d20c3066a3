// Package refreshtokens declares the repository contract for persisted
// refresh tokens.
package refreshtokens

import (
	"context"
	"errors"

	"github.com/manishrnl/authservice/internal/server/models"
)

// ErrDuplicateToken is returned by Save when the token value collides with
// an existing record. Callers regenerate the value and retry.
var ErrDuplicateToken = errors.New("duplicate refresh token value")

// Repository defines operations for storing, retrieving, and revoking
// refresh tokens. Rotation is a conditional delete plus a save of a fresh
// record, made atomic by Replace.
type Repository interface {
	// Save persists a new refresh token record. A colliding token value
	// yields ErrDuplicateToken.
	Save(ctx context.Context, token *models.RefreshToken) error

	// FindByToken looks up a record by its opaque token value, without
	// checking expiry. Absent records yield common.ErrorNotFound.
	FindByToken(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes the record with the given token value and reports
	// whether a record was actually removed. The conditional result lets
	// concurrent consumers of the same token serialize: only one caller
	// observes deleted=true.
	Delete(ctx context.Context, token string) (bool, error)

	// Replace atomically deletes the record with oldToken and saves record
	// in its place. When oldToken is already gone (consumed by a concurrent
	// rotation) it returns common.ErrorNotFound and stores nothing; two
	// concurrent rotations of the same token can therefore never both
	// succeed.
	Replace(ctx context.Context, oldToken string, record *models.RefreshToken) error
}
