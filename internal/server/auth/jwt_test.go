package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/manishrnl/authservice/internal/common"
)

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	svc := NewTokenService([]byte("super-secret"), time.Hour)

	tok, err := svc.Issue("alice")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	subject, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if subject != "alice" {
		t.Fatalf("subject mismatch: got %q want %q", subject, "alice")
	}
}

func TestIssue_SameSubjectDistinctTokens(t *testing.T) {
	t.Parallel()

	svc := NewTokenService([]byte("super-secret"), time.Hour)

	t1, err := svc.Issue("alice")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	t2, err := svc.Issue("alice")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if t1 == t2 {
		t.Fatalf("tokens for the same subject must be distinct")
	}
	for _, tok := range []string{t1, t2} {
		if _, err := svc.Verify(tok); err != nil {
			t.Fatalf("both tokens must verify, got %v", err)
		}
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	svc := NewTokenService([]byte("secret"), -1*time.Second)

	tok, err := svc.Issue("bob")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = svc.Verify(tok)
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("want common.ErrTokenExpired, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenService([]byte("right-secret"), time.Hour).Issue("carol")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = NewTokenService([]byte("wrong-secret"), time.Hour).Verify(tok)
	if !errors.Is(err, common.ErrInvalidSignature) {
		t.Fatalf("want common.ErrInvalidSignature, got %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	svc := NewTokenService([]byte("k"), time.Hour)

	for _, tok := range []string{"", "not.a.jwt", "garbage"} {
		if _, err := svc.Verify(tok); !errors.Is(err, common.ErrTokenMalformed) {
			t.Fatalf("want common.ErrTokenMalformed for %q, got %v", tok, err)
		}
	}
}
