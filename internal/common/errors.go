// Package common defines shared constants and sentinel errors used across
// the auth service layers. Callers should use errors.Is to match these
// values; the HTTP layer maps them to transport status codes.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Signup conflicts.
	ErrUsernameTaken   = errors.New("username already taken")
	ErrAccountNotFound = errors.New("account not found")

	// Login errors. Deliberately a single value for both unknown-user and
	// wrong-password so callers cannot enumerate accounts.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// Access token errors.
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenMalformed   = errors.New("malformed token")
	ErrTokenExpired     = errors.New("token expired")

	// Refresh token lifecycle errors.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenExpired  = errors.New("refresh token expired")
)
