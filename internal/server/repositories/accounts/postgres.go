// Package accounts provides a PostgreSQL-backed repository for identity
// records.
package accounts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/manishrnl/authservice/internal/common"
	"github.com/manishrnl/authservice/internal/dbx"
	"github.com/manishrnl/authservice/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by both
// *sql.DB and *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Save(ctx context.Context, account *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (id, username, password_hash, authorities)
		VALUES ($1, $2, $3, $4)
	`
	authorities, err := json.Marshal(account.Authorities)
	if err != nil {
		return nil, fmt.Errorf("encoding authorities: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, account.ID, account.Username, account.PasswordHash, authorities); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, common.ErrUsernameTaken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return account, nil
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `
		SELECT id, username, password_hash, authorities
		FROM accounts
		WHERE username = $1
	`
	account := &models.Account{}
	var authorities []byte
	err := r.db.QueryRowContext(ctx, query, username).
		Scan(&account.ID, &account.Username, &account.PasswordHash, &authorities)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if len(authorities) > 0 {
		if err := json.Unmarshal(authorities, &account.Authorities); err != nil {
			return nil, fmt.Errorf("decoding authorities: %w", err)
		}
	}
	return account, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, username string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM accounts WHERE username = $1)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}
