// Package validation implements the credential acceptance policy: email
// format plus domain/TLD allow-lists, and password strength rules.
//
// The domain and TLD allow-lists are intentionally restrictive. They reject
// plenty of addresses that are valid per RFC 5322; downstream consumers rely
// on that restriction, so do not loosen them to generic email validation.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidEmail and ErrInvalidPassword are umbrella errors. Every rule
// violation below wraps one of them, so callers can match either the broad
// kind or the specific rule with errors.Is.
var (
	ErrInvalidEmail    = errors.New("invalid email")
	ErrInvalidPassword = errors.New("invalid password")
)

var (
	ErrEmailEmpty    = fmt.Errorf("%w: email must not be empty", ErrInvalidEmail)
	ErrEmailTooShort = fmt.Errorf("%w: email must be at least %d characters long", ErrInvalidEmail, emailMinLength)
	ErrEmailTooLong  = fmt.Errorf("%w: email must be at most %d characters long", ErrInvalidEmail, emailMaxLength)
	ErrEmailFormat   = fmt.Errorf("%w: email must look like \"abc@gmail.com\"", ErrInvalidEmail)
	ErrEmailDomain   = fmt.Errorf("%w: email domain is not in the accepted list", ErrInvalidEmail)
	ErrEmailTLD      = fmt.Errorf("%w: email top-level domain is not in the accepted list", ErrInvalidEmail)

	ErrPasswordTooShort  = fmt.Errorf("%w: password must be at least %d characters long", ErrInvalidPassword, passwordMinLength)
	ErrPasswordLowercase = fmt.Errorf("%w: password must contain at least one lowercase letter", ErrInvalidPassword)
	ErrPasswordUppercase = fmt.Errorf("%w: password must contain at least one uppercase letter", ErrInvalidPassword)
	ErrPasswordDigit     = fmt.Errorf("%w: password must contain at least one digit", ErrInvalidPassword)
	ErrPasswordSpecial   = fmt.Errorf("%w: password must contain at least one of %q", ErrInvalidPassword, specialCharacters)
)

const (
	emailMinLength    = 10
	emailMaxLength    = 50
	passwordMinLength = 12
	specialCharacters = "@$!%*?&"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

var acceptedDomains = map[string]struct{}{
	"gmail": {}, "yahoo": {}, "outlook": {}, "hotmail": {},
	"edu": {}, "gov": {}, "company": {}, "university": {}, "business": {},
}

var acceptedTLDs = map[string]struct{}{
	"com": {}, "org": {}, "net": {}, "edu": {}, "gov": {}, "mil": {},
	"co": {}, "ac": {}, "in": {}, "uk": {}, "us": {}, "au": {}, "ca": {},
	"de": {}, "fr": {}, "jp": {}, "cn": {}, "it": {}, "nl": {}, "ru": {},
}

// ValidateEmail checks the email against the policy rules in order and
// returns the first violation. A nil result means the email is accepted.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmailEmpty
	}
	if len(email) < emailMinLength {
		return ErrEmailTooShort
	}
	if len(email) > emailMaxLength {
		return ErrEmailTooLong
	}
	if !emailPattern.MatchString(email) {
		return ErrEmailFormat
	}

	// The pattern above guarantees an '@' and at least one dot after it.
	domainPart := email[strings.Index(email, "@")+1:]
	labels := strings.Split(domainPart, ".")
	if len(labels) < 2 {
		return ErrEmailFormat
	}

	if _, ok := acceptedDomains[labels[0]]; !ok {
		return ErrEmailDomain
	}
	if _, ok := acceptedTLDs[labels[1]]; !ok {
		return ErrEmailTLD
	}

	return nil
}

// ValidatePassword checks the password strength rules and returns the first
// violation. Checks are byte-wise on purpose: the policy is ASCII-only.
func ValidatePassword(password string) error {
	if len(password) < passwordMinLength {
		return ErrPasswordTooShort
	}
	if !containsFunc(password, func(c byte) bool { return c >= 'a' && c <= 'z' }) {
		return ErrPasswordLowercase
	}
	if !containsFunc(password, func(c byte) bool { return c >= 'A' && c <= 'Z' }) {
		return ErrPasswordUppercase
	}
	if !containsFunc(password, func(c byte) bool { return c >= '0' && c <= '9' }) {
		return ErrPasswordDigit
	}
	if !strings.ContainsAny(password, specialCharacters) {
		return ErrPasswordSpecial
	}
	return nil
}

func containsFunc(s string, match func(byte) bool) bool {
	for i := 0; i < len(s); i++ {
		if match(s[i]) {
			return true
		}
	}
	return false
}
