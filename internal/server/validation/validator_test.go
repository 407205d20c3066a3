package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  error
	}{
		{"empty", "", ErrEmailEmpty},
		{"too short", "a@b.com", ErrEmailTooShort},
		{"too long", strings.Repeat("a", 45) + "@gmail.com", ErrEmailTooLong},
		{"no at sign", "user.gmail.com", ErrEmailFormat},
		{"no tld", "user@gmailcom", ErrEmailFormat},
		{"single letter tld", "longuser@gmail.x", ErrEmailFormat},
		{"bad local chars", "us er@gmail.com", ErrEmailFormat},
		{"unknown domain", "user@unknownhost.com", ErrEmailDomain},
		{"unknown tld", "user@gmail.zzz", ErrEmailTLD},
		{"unknown domain and tld", "user@unknownhost.zzz", ErrEmailDomain},
		{"ok gmail com", "user@gmail.com", nil},
		{"ok yahoo co subdomain", "someone@yahoo.co.in", nil},
		{"ok university edu", "student@university.edu", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateEmail(tc.email)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
			if !errors.Is(err, ErrInvalidEmail) {
				t.Fatalf("rule error must wrap ErrInvalidEmail, got %v", err)
			}
		})
	}
}

func TestValidateEmail_FirstFailureWins(t *testing.T) {
	// Too short AND structurally broken: length is checked first.
	if err := ValidateEmail("a@b"); !errors.Is(err, ErrEmailTooShort) {
		t.Fatalf("want ErrEmailTooShort, got %v", err)
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     error
	}{
		{"empty", "", ErrPasswordTooShort},
		{"short", "Sh0rt!pw", ErrPasswordTooShort},
		{"no lowercase", "UPPERCASE0NLY!", ErrPasswordLowercase},
		{"no uppercase", "lowercase0nly!", ErrPasswordUppercase},
		{"no digit", "NoDigitsHere!!", ErrPasswordDigit},
		{"no special", "NoSpecials123ABC", ErrPasswordSpecial},
		{"hash is not in the special set", "Password123#abc", ErrPasswordSpecial},
		{"ok", "Str0ng!Passw0rd", nil},
		{"ok every special char", "Abcdefgh1@$!%*?&", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePassword(tc.password)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
			if !errors.Is(err, ErrInvalidPassword) {
				t.Fatalf("rule error must wrap ErrInvalidPassword, got %v", err)
			}
		})
	}
}
