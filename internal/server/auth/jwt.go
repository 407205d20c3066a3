// Package auth implements the stateless access-token service: HS256-signed
// JWTs carrying the subject username, issued-at, and a short expiry.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/manishrnl/authservice/internal/common"
)

// TokenService issues and verifies access tokens. The signing key is
// injected once at construction and held for the process lifetime; rotating
// it invalidates every outstanding token.
type TokenService struct {
	secretKey []byte
	validity  time.Duration
}

// NewTokenService constructs a TokenService with the given HMAC secret and
// token lifetime.
func NewTokenService(secretKey []byte, validity time.Duration) *TokenService {
	return &TokenService{secretKey: secretKey, validity: validity}
}

// Issue signs a token for subject expiring validity from now. Each token
// carries a random ID, so two tokens for the same subject issued at the same
// instant are distinct yet both verify until their own expiry.
func (s *TokenService) Issue(subject string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.validity)),
		ID:        uuid.NewString(),
	})

	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of tokenString and returns the
// subject. Failures map onto the common sentinels: ErrTokenExpired,
// ErrTokenMalformed, ErrInvalidSignature.
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", common.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", common.ErrInvalidSignature
		default:
			return "", common.ErrTokenMalformed
		}
	}

	if !token.Valid {
		return "", common.ErrInvalidSignature
	}

	return claims.Subject, nil
}
