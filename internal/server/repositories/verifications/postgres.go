// Package verifications provides a PostgreSQL-backed repository for
// short-lived phone verification codes.
package verifications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/echosphere/echosphere/internal/common"
	"github.com/echosphere/echosphere/internal/dbx"
	"github.com/echosphere/echosphere/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, v *models.PhoneVerification) error {
	query := `
		INSERT INTO phone_verifications (id, user_id, phone, code, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query, v.ID, v.UserID, v.Phone, v.Code, v.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// FindLatest returns the most recently issued code for the user and phone.
// If none exists, it returns common.ErrorNotFound.
func (r *PostgresRepository) FindLatest(ctx context.Context, userID string, phone string) (*models.PhoneVerification, error) {
	query := `
		SELECT id, user_id, phone, code, expires_at, created_at
		FROM phone_verifications
		WHERE user_id = $1 AND phone = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	v := &models.PhoneVerification{}
	err := r.db.QueryRowContext(ctx, query, userID, phone).
		Scan(&v.ID, &v.UserID, &v.Phone, &v.Code, &v.ExpiresAt, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM phone_verifications WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteExpired removes every code whose expires_at is before now and
// returns the number of deleted rows.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM phone_verifications WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
