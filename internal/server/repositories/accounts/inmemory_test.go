package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/manishrnl/authservice/internal/common"
	"github.com/manishrnl/authservice/internal/server/models"
)

func TestInMemory_SaveAndFind(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	account := &models.Account{ID: "id-1", Username: "alice", PasswordHash: "h"}
	if _, err := repo.Save(ctx, account); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	ok, err := repo.Exists(ctx, "alice")
	if err != nil || !ok {
		t.Fatalf("Exists = (%v, %v), want (true, nil)", ok, err)
	}

	got, err := repo.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("FindByUsername error: %v", err)
	}
	if got.ID != "id-1" {
		t.Fatalf("unexpected account: %+v", got)
	}
}

func TestInMemory_DuplicateUsername(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	if _, err := repo.Save(ctx, &models.Account{ID: "id-1", Username: "alice"}); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	_, err := repo.Save(ctx, &models.Account{ID: "id-2", Username: "alice"})
	if !errors.Is(err, common.ErrUsernameTaken) {
		t.Fatalf("want common.ErrUsernameTaken, got %v", err)
	}
}

func TestInMemory_FindMissing(t *testing.T) {
	repo := NewInMemoryRepository()

	_, err := repo.FindByUsername(context.Background(), "nobody")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}
