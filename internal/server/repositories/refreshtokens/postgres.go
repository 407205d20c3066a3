// Package refreshtokens provides a PostgreSQL-backed repository for the
// refresh tokens used by the login and refresh flows.
package refreshtokens

import (
	"context"
	"database/sql"
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

func (r *PostgresRepository) Save(ctx context.Context, token *models.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (token, account_id, username, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, token.Token, token.AccountID, token.Username, token.Expires); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrDuplicateToken
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `
		SELECT token, account_id, username, expires_at
		FROM refresh_tokens
		WHERE token = $1
	`
	record := &models.RefreshToken{}
	err := r.db.QueryRowContext(ctx, query, token).
		Scan(&record.Token, &record.AccountID, &record.Username, &record.Expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return record, nil
}

// Replace rotates oldToken to record inside a transaction when the
// repository is bound to a *sql.DB. The conditional delete guarantees that
// of two concurrent rotations only the one that removed the old row commits
// an insert; the loser gets common.ErrorNotFound.
func (r *PostgresRepository) Replace(ctx context.Context, oldToken string, record *models.RefreshToken) error {
	db, ok := r.db.(*sql.DB)
	if !ok {
		// Already inside a caller-managed transaction.
		return r.replace(ctx, r.db, oldToken, record)
	}
	return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return r.replace(ctx, tx, oldToken, record)
	})
}

func (r *PostgresRepository) replace(ctx context.Context, db dbx.DBTX, oldToken string, record *models.RefreshToken) error {
	res, err := db.ExecContext(ctx, `
		DELETE FROM refresh_tokens
		WHERE token = $1
	`, oldToken)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	if _, err := db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (token, account_id, username, expires_at)
		VALUES ($1, $2, $3, $4)
	`, record.Token, record.AccountID, record.Username, record.Expires); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrDuplicateToken
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes the row for token. The row count makes the delete a
// conditional operation: under concurrent refreshes of the same token only
// one caller sees deleted=true.
func (r *PostgresRepository) Delete(ctx context.Context, token string) (bool, error) {
	query := `
		DELETE FROM refresh_tokens
		WHERE token = $1
	`
	res, err := r.db.ExecContext(ctx, query, token)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected > 0, nil
}
