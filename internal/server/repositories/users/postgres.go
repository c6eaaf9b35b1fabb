// Package users provides a PostgreSQL-backed repository for account rows.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query := `
		INSERT INTO users (id, username, hashed_password, is_anonymous)
		VALUES ($1, $2, $3, $4)
		RETURNING reputation_score, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.PasswordHash, user.IsAnonymous).
		Scan(&user.ReputationScore, &user.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, "id", id)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, "username", username)
}

func (r *PostgresRepository) getOne(ctx context.Context, column string, value string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, username, hashed_password, COALESCE(phone, ''), phone_verified,
		       is_anonymous, reputation_score, avatar_url, created_at
		FROM users
		WHERE %s = $1
	`, column)

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Phone, &user.PhoneVerified,
		&user.IsAnonymous, &user.ReputationScore, &user.AvatarURL, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// AddReputation adjusts reputation_score by delta for every listed user.
func (r *PostgresRepository) AddReputation(ctx context.Context, delta int, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	query := `
		UPDATE users SET reputation_score = reputation_score + $1
		WHERE id = ANY($2)
	`
	if _, err := r.db.ExecContext(ctx, query, delta, userIDs); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// SetPhoneVerified records a confirmed phone number on the account.
func (r *PostgresRepository) SetPhoneVerified(ctx context.Context, userID string, phone string) error {
	query := `
		UPDATE users SET phone = $2, phone_verified = TRUE
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID, phone); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
