// Package services contains server-side business logic: the refresh-token
// lifecycle and the signup/login/refresh orchestration built on top of it.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/manishrnl/authservice/internal/common"
	"github.com/manishrnl/authservice/internal/server/config"
	"github.com/manishrnl/authservice/internal/server/models"
	"github.com/manishrnl/authservice/internal/server/repositories/accounts"
	"github.com/manishrnl/authservice/internal/server/repositories/refreshtokens"
)

// collisionRetries bounds how many times a colliding random token value is
// regenerated. UUIDv4 collisions are negligible by construction, so hitting
// the bound means something is broken rather than unlucky.
const collisionRetries = 3

// RefreshTokenService manages the life cycle of persisted refresh tokens:
// creation on login/signup, lookup, destructive expiry checks, and rotation
// on refresh.
type RefreshTokenService struct {
	accounts accounts.Repository
	tokens   refreshtokens.Repository
	validity time.Duration
}

// NewRefreshTokenService constructs the service using repositories and
// server config.
func NewRefreshTokenService(accountRepo accounts.Repository, tokenRepo refreshtokens.Repository, cfg *config.Config) *RefreshTokenService {
	return &RefreshTokenService{
		accounts: accountRepo,
		tokens:   tokenRepo,
		validity: cfg.RefreshTokenValidityDuration,
	}
}

// Create resolves the account for username, generates a random unique token
// value, and persists a record expiring validity from now. An unknown
// username yields common.ErrAccountNotFound.
func (s *RefreshTokenService) Create(ctx context.Context, username string) (*models.RefreshToken, error) {
	account, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAccountNotFound
		}
		return nil, fmt.Errorf("error resolving account: %w", err)
	}

	var record *models.RefreshToken
	err = retry.Do(ctx, retry.WithMaxRetries(collisionRetries, retry.NewConstant(time.Millisecond)), func(ctx context.Context) error {
		record = s.newRecord(account.ID, account.Username)
		if err := s.tokens.Save(ctx, record); err != nil {
			if errors.Is(err, refreshtokens.ErrDuplicateToken) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}
	return record, nil
}

// FindByToken looks the record up by its opaque value. It does not check
// expiry: that is a separate, destructive step so callers can distinguish
// "not found" from "found but expired".
func (s *RefreshTokenService) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	record, err := s.tokens.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	return record, nil
}

// VerifyExpiration returns the record unchanged while it is still valid.
// An expired record is deleted before the error is returned, so a consumed
// token never survives to serve a second lookup.
func (s *RefreshTokenService) VerifyExpiration(ctx context.Context, record *models.RefreshToken) (*models.RefreshToken, error) {
	if !record.Expired(time.Now()) {
		return record, nil
	}
	if _, err := s.tokens.Delete(ctx, record.Token); err != nil {
		return nil, fmt.Errorf("error deleting expired refresh token: %w", err)
	}
	return nil, common.ErrRefreshTokenExpired
}

// Rotate replaces old with a freshly generated record for the same owner.
// When the old token was already consumed by a concurrent rotation, the
// store reports it missing and Rotate fails with
// common.ErrRefreshTokenNotFound; the two callers can never both succeed.
func (s *RefreshTokenService) Rotate(ctx context.Context, old *models.RefreshToken) (*models.RefreshToken, error) {
	var record *models.RefreshToken
	err := retry.Do(ctx, retry.WithMaxRetries(collisionRetries, retry.NewConstant(time.Millisecond)), func(ctx context.Context) error {
		record = s.newRecord(old.AccountID, old.Username)
		if err := s.tokens.Replace(ctx, old.Token, record); err != nil {
			if errors.Is(err, refreshtokens.ErrDuplicateToken) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("error rotating refresh token: %w", err)
	}
	return record, nil
}

func (s *RefreshTokenService) newRecord(accountID, username string) *models.RefreshToken {
	return &models.RefreshToken{
		Token:     uuid.NewString(),
		AccountID: accountID,
		Username:  username,
		Expires:   time.Now().Add(s.validity),
	}
}
