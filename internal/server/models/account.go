// Package models defines the persisted entities of the auth service.
package models

// Account is an identity record. ID is assigned once at signup and never
// changes; PasswordHash is only ever replaced by a password-change flow.
type Account struct {
	ID           string
	Username     string
	PasswordHash string
	Authorities  []string
}
