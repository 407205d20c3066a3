package accounts

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/manishrnl/authservice/internal/common"
	"github.com/manishrnl/authservice/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestSave_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+accounts\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*$`

	mock.ExpectExec(q).
		WithArgs("id-1", "alice", "$2a$10$digest", []byte("[]")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	account := &models.Account{ID: "id-1", Username: "alice", PasswordHash: "$2a$10$digest", Authorities: []string{}}
	if _, err := repo.Save(context.Background(), account); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSave_DuplicateUsername(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+accounts\b`

	mock.ExpectExec(q).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	account := &models.Account{ID: "id-1", Username: "alice", PasswordHash: "h"}
	_, err := repo.Save(context.Background(), account)
	if !errors.Is(err, common.ErrUsernameTaken) {
		t.Fatalf("want common.ErrUsernameTaken, got %v", err)
	}
}

func TestFindByUsername_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+id,\s*username,\s*password_hash,\s*authorities\s+FROM\s+accounts\s+WHERE\s+username\s*=\s*\$1\s*$`

	rows := sqlmock.NewRows([]string{"id", "username", "password_hash", "authorities"}).
		AddRow("id-1", "alice", "$2a$10$digest", []byte(`["ROLE_USER"]`))

	mock.ExpectQuery(q).WithArgs("alice").WillReturnRows(rows)

	got, err := repo.FindByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "id-1" || got.Username != "alice" || got.PasswordHash != "$2a$10$digest" {
		t.Fatalf("unexpected row: %+v", got)
	}
	if len(got.Authorities) != 1 || got.Authorities[0] != "ROLE_USER" {
		t.Fatalf("unexpected authorities: %+v", got.Authorities)
	}
}

func TestFindByUsername_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+id,\s*username`

	mock.ExpectQuery(q).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByUsername(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestExists(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+EXISTS\b`

	mock.ExpectQuery(q).WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.Exists(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected exists=true")
	}
}

func TestExists_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+EXISTS\b`

	mock.ExpectQuery(q).WithArgs("alice").WillReturnError(errors.New("db down"))

	if _, err := repo.Exists(context.Background(), "alice"); err == nil {
		t.Fatalf("expected wrapped db error")
	}
}
