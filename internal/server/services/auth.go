package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/manishrnl/authservice/internal/common"
	"github.com/manishrnl/authservice/internal/logging"
	"github.com/manishrnl/authservice/internal/server/auth"
	"github.com/manishrnl/authservice/internal/server/models"
	"github.com/manishrnl/authservice/internal/server/password"
	"github.com/manishrnl/authservice/internal/server/repositories/accounts"
	"github.com/manishrnl/authservice/internal/server/validation"
)

// TokenPair bundles a short-lived access token and a long-lived refresh
// token; it is the success payload of all three auth flows.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService orchestrates the three auth flows:
//   - Signup: validate credentials, create the account, mint tokens
//   - Login: verify credentials, mint tokens
//   - Refresh: exchange a valid refresh token for a new token pair
//
// It holds no state of its own beyond injected collaborators.
type AuthService struct {
	accounts      accounts.Repository
	refreshTokens *RefreshTokenService
	hasher        password.Hasher
	accessTokens  *auth.TokenService
	logger        logging.Logger

	// dummyDigest is verified against when the username does not exist, so
	// a login probe costs the same with and without a matching account.
	dummyDigest string
}

// NewAuthService wires the orchestrator. The dummy digest is derived from a
// random throwaway value at construction and can never match a real
// password.
func NewAuthService(accountRepo accounts.Repository, refreshTokens *RefreshTokenService, hasher password.Hasher, accessTokens *auth.TokenService, logger logging.Logger) (*AuthService, error) {
	dummyDigest, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("preparing dummy digest: %w", err)
	}
	return &AuthService{
		accounts:      accountRepo,
		refreshTokens: refreshTokens,
		hasher:        hasher,
		accessTokens:  accessTokens,
		logger:        logger.With("module", "auth_service"),
		dummyDigest:   dummyDigest,
	}, nil
}

// Signup registers a new account and returns its first token pair. Checks
// run in a fixed order: username availability, then password policy, then
// email policy. No partial state is created on any failure.
func (s *AuthService) Signup(ctx context.Context, username, email, plaintext string) (*TokenPair, error) {
	taken, err := s.accounts.Exists(ctx, username)
	if err != nil {
		s.logger.Error(ctx, "signup existence check failed", "error", err)
		return nil, common.ErrorInternal
	}
	if taken {
		return nil, common.ErrUsernameTaken
	}

	if err := validation.ValidatePassword(plaintext); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(plaintext)
	if err != nil {
		s.logger.Error(ctx, "signup password hashing failed", "error", err)
		return nil, common.ErrorInternal
	}

	account := &models.Account{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: digest,
		Authorities:  []string{},
	}
	if _, err := s.accounts.Save(ctx, account); err != nil {
		if errors.Is(err, common.ErrUsernameTaken) {
			// Lost a race with a concurrent signup for the same username.
			return nil, common.ErrUsernameTaken
		}
		s.logger.Error(ctx, "signup account save failed", "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "account created", "username", username)
	return s.issueTokenPair(ctx, username)
}

// Login verifies the credentials and returns a fresh token pair. A missing
// account and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, plaintext string) (*TokenPair, error) {
	targetDigest := s.dummyDigest
	accountExists := false

	account, err := s.accounts.FindByUsername(ctx, username)
	switch {
	case err == nil:
		targetDigest = account.PasswordHash
		accountExists = true
	case errors.Is(err, common.ErrorNotFound):
		// Keep going against the dummy digest.
	default:
		s.logger.Error(ctx, "login account lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	if !s.hasher.Verify(plaintext, targetDigest) || !accountExists {
		s.logger.Warn(ctx, "login rejected", "username", username)
		return nil, common.ErrAuthenticationFailed
	}

	return s.issueTokenPair(ctx, account.Username)
}

// Refresh exchanges a stored refresh token for a new token pair. The
// presented token is invalidated: rotation stores a replacement and returns
// its value to the caller.
func (s *AuthService) Refresh(ctx context.Context, token string) (*TokenPair, error) {
	record, err := s.refreshTokens.FindByToken(ctx, token)
	if err != nil {
		return nil, s.asTokenError(ctx, err)
	}

	record, err = s.refreshTokens.VerifyExpiration(ctx, record)
	if err != nil {
		return nil, s.asTokenError(ctx, err)
	}

	account, err := s.accounts.FindByUsername(ctx, record.Username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAccountNotFound
		}
		s.logger.Error(ctx, "refresh account lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	rotated, err := s.refreshTokens.Rotate(ctx, record)
	if err != nil {
		return nil, s.asTokenError(ctx, err)
	}

	accessToken, err := s.accessTokens.Issue(account.Username)
	if err != nil {
		s.logger.Error(ctx, "refresh access token issue failed", "error", err)
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: rotated.Token}, nil
}

func (s *AuthService) issueTokenPair(ctx context.Context, username string) (*TokenPair, error) {
	refreshToken, err := s.refreshTokens.Create(ctx, username)
	if err != nil {
		s.logger.Error(ctx, "refresh token creation failed", "error", err)
		return nil, common.ErrorInternal
	}

	accessToken, err := s.accessTokens.Issue(username)
	if err != nil {
		s.logger.Error(ctx, "access token issue failed", "error", err)
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken.Token}, nil
}

func (s *AuthService) asTokenError(ctx context.Context, err error) error {
	if errors.Is(err, common.ErrRefreshTokenNotFound) || errors.Is(err, common.ErrRefreshTokenExpired) {
		return err
	}
	s.logger.Error(ctx, "refresh flow failed", "error", err)
	return common.ErrorInternal
}
