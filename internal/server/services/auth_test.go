package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/manishrnl/authservice/internal/common"
	"github.com/manishrnl/authservice/internal/logging"
	"github.com/manishrnl/authservice/internal/server/auth"
	"github.com/manishrnl/authservice/internal/server/config"
	"github.com/manishrnl/authservice/internal/server/password"
	"github.com/manishrnl/authservice/internal/server/repositories/accounts"
	"github.com/manishrnl/authservice/internal/server/repositories/refreshtokens"
	"github.com/manishrnl/authservice/internal/server/validation"
)

const (
	testPassword = "Sup3rSecret!pass"
	testEmail    = "alice@gmail.com"
)

type authFixture struct {
	svc        *AuthService
	tokens     *auth.TokenService
	tokenRepo  *refreshtokens.InMemoryRepository
	accountsDB *accounts.InMemoryRepository
}

func newAuthFixture(t *testing.T, refreshValidity time.Duration) *authFixture {
	t.Helper()

	accountRepo := accounts.NewInMemoryRepository()
	tokenRepo := refreshtokens.NewInMemoryRepository()
	cfg := &config.Config{RefreshTokenValidityDuration: refreshValidity}

	refreshSvc := NewRefreshTokenService(accountRepo, tokenRepo, cfg)
	accessSvc := auth.NewTokenService([]byte("test-secret"), 15*time.Minute)
	hasher := password.NewBcryptHasher(bcrypt.MinCost)
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	svc, err := NewAuthService(accountRepo, refreshSvc, hasher, accessSvc, logger)
	if err != nil {
		t.Fatalf("NewAuthService error: %v", err)
	}

	return &authFixture{svc: svc, tokens: accessSvc, tokenRepo: tokenRepo, accountsDB: accountRepo}
}

func TestSignup_Success(t *testing.T) {
	f := newAuthFixture(t, time.Hour)

	pair, err := f.svc.Signup(context.Background(), "alice", testEmail, testPassword)
	if err != nil {
		t.Fatalf("Signup error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("both tokens must be issued: %+v", pair)
	}

	subject, err := f.tokens.Verify(pair.AccessToken)
	if err != nil {
		t.Fatalf("issued access token must verify: %v", err)
	}
	if subject != "alice" {
		t.Fatalf("access token subject = %q, want alice", subject)
	}

	account, err := f.accountsDB.FindByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("account must be persisted: %v", err)
	}
	if account.PasswordHash == testPassword {
		t.Fatalf("password must be stored hashed, not in clear")
	}
}

func TestSignup_UsernameTaken(t *testing.T) {
	f := newAuthFixture(t, time.Hour)

	if _, err := f.svc.Signup(context.Background(), "alice", testEmail, testPassword); err != nil {
		t.Fatalf("first Signup error: %v", err)
	}

	_, err := f.svc.Signup(context.Background(), "alice", "bob@gmail.com", testPassword)
	if !errors.Is(err, common.ErrUsernameTaken) {
		t.Fatalf("want common.ErrUsernameTaken, got %v", err)
	}
}

func TestSignup_TakenUsernameReportedBeforeBadCredentials(t *testing.T) {
	f := newAuthFixture(t, time.Hour)

	if _, err := f.svc.Signup(context.Background(), "alice", testEmail, testPassword); err != nil {
		t.Fatalf("first Signup error: %v", err)
	}

	// Even with an invalid password and email, an occupied username wins.
	_, err := f.svc.Signup(context.Background(), "alice", "bad-email", "short")
	if !errors.Is(err, common.ErrUsernameTaken) {
		t.Fatalf("want common.ErrUsernameTaken, got %v", err)
	}
}

func TestSignup_InvalidPassword(t *testing.T) {
	f := newAuthFixture(t, time.Hour)

	_, err := f.svc.Signup(context.Background(), "alice", testEmail, "short")
	if !errors.Is(err, validation.ErrInvalidPassword) {
		t.Fatalf("want validation.ErrInvalidPassword, got %v", err)
	}
}

func TestSignup_InvalidEmail(t *testing.T) {
	f := newAuthFixture(t, time.Hour)

	_, err := f.svc.Signup(context.Background(), "alice", "alice@evil.example", testPassword)
	if !errors.Is(err, validation.ErrInvalidEmail) {
		t.Fatalf("want validation.ErrInvalidEmail, got %v", err)
	}
}

func TestSignup_PasswordCheckedBeforeEmail(t *testing.T) {
	f := newAuthFixture(t, time.Hour)

	_, err := f.svc.Signup(context.Background(), "alice", "bad-email", "short")
	if !errors.Is(err, validation.ErrInvalidPassword) {
		t.Fatalf("want validation.ErrInvalidPassword first, got %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture(t, time.Hour)

	if _, err := f.svc.Signup(context.Background(), "alice", testEmail, testPassword); err != nil {
		t.Fatalf("Signup error: %v", err)
	}

	pair, err := f.svc.Login(context.Background(), "alice", testPassword)
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	subject, err := f.tokens.Verify(pair.AccessToken)
	if err != nil || subject != "alice" {
		t.Fatalf("access token subject = %q (err %v), want alice", subject, err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newAuthFixture(t, time.Hour)

	if _, err := f.svc.Signup(context.Background(), "alice", testEmail, testPassword); err != nil {
		t.Fatalf("Signup error: %v", err)
	}

	_, err := f.svc.Login(context.Background(), "alice", "Wr0ngSecret!pass")
	if !errors.Is(err, common.ErrAuthenticationFailed) {
		t.Fatalf("want common.ErrAuthenticationFailed, got %v", err)
	}
}

func TestLogin_UnknownUsername(t *testing.T) {
	f := newAuthFixture(t, time.Hour)

	// Must be indistinguishable from a wrong password.
	_, err := f.svc.Login(context.Background(), "nobody", testPassword)
	if !errors.Is(err, common.ErrAuthenticationFailed) {
		t.Fatalf("want common.ErrAuthenticationFailed, got %v", err)
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	f := newAuthFixture(t, time.Hour)

	signupPair, err := f.svc.Signup(context.Background(), "alice", testEmail, testPassword)
	if err != nil {
		t.Fatalf("Signup error: %v", err)
	}

	refreshed, err := f.svc.Refresh(context.Background(), signupPair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Fatalf("a fresh access token must be issued")
	}
	if refreshed.RefreshToken == signupPair.RefreshToken {
		t.Fatalf("refresh must rotate the refresh token")
	}

	subject, err := f.tokens.Verify(refreshed.AccessToken)
	if err != nil || subject != "alice" {
		t.Fatalf("access token subject = %q (err %v), want alice", subject, err)
	}

	// The rotated-out value is dead.
	_, err = f.svc.Refresh(context.Background(), signupPair.RefreshToken)
	if !errors.Is(err, common.ErrRefreshTokenNotFound) {
		t.Fatalf("want common.ErrRefreshTokenNotFound for the old token, got %v", err)
	}

	// The replacement still works.
	if _, err := f.svc.Refresh(context.Background(), refreshed.RefreshToken); err != nil {
		t.Fatalf("Refresh with rotated token error: %v", err)
	}
}

func TestRefresh_UnknownToken(t *testing.T) {
	f := newAuthFixture(t, time.Hour)

	_, err := f.svc.Refresh(context.Background(), "not-a-real-token")
	if !errors.Is(err, common.ErrRefreshTokenNotFound) {
		t.Fatalf("want common.ErrRefreshTokenNotFound, got %v", err)
	}
}

func TestRefresh_ExpiredTokenIsConsumed(t *testing.T) {
	f := newAuthFixture(t, -time.Minute)

	pair, err := f.svc.Signup(context.Background(), "alice", testEmail, testPassword)
	if err != nil {
		t.Fatalf("Signup error: %v", err)
	}

	_, err = f.svc.Refresh(context.Background(), pair.RefreshToken)
	if !errors.Is(err, common.ErrRefreshTokenExpired) {
		t.Fatalf("want common.ErrRefreshTokenExpired, got %v", err)
	}

	// Expired tokens are removed on sight, so a retry reports absence.
	_, err = f.svc.Refresh(context.Background(), pair.RefreshToken)
	if !errors.Is(err, common.ErrRefreshTokenNotFound) {
		t.Fatalf("want common.ErrRefreshTokenNotFound after consumption, got %v", err)
	}
}
