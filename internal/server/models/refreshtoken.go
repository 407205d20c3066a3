package models

import "time"

// RefreshToken is a long-lived, persisted grant owned by exactly one
// account. Records are never updated in place: rotation deletes the old row
// and inserts a new one.
type RefreshToken struct {
	Token     string
	AccountID string
	Username  string
	Expires   time.Time
}

// Expired reports whether the token's expiry lies before now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return t.Expires.Before(now)
}
