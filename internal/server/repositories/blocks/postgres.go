// Package blocks provides a PostgreSQL-backed repository for one-directional
// user blocks.
package blocks

import (
	"context"
	"fmt"

	"github.com/echosphere/echosphere/internal/dbx"
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

// Create inserts a block row; inserting a block that already exists is a
// no-op.
func (r *PostgresRepository) Create(ctx context.Context, blockerID, blockedID string) error {
	query := `
		INSERT INTO blocks (blocker_id, blocked_id)
		VALUES ($1, $2)
		ON CONFLICT (blocker_id, blocked_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, blockerID, blockedID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, blockerID, blockedID string) error {
	query := `
		DELETE FROM blocks
		WHERE blocker_id = $1 AND blocked_id = $2
	`
	if _, err := r.db.ExecContext(ctx, query, blockerID, blockedID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Exists reports whether blockerID has blocked blockedID.
func (r *PostgresRepository) Exists(ctx context.Context, blockerID, blockedID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM blocks WHERE blocker_id = $1 AND blocked_id = $2
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, blockerID, blockedID).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// ExistsBetween reports whether either user has blocked the other.
func (r *PostgresRepository) ExistsBetween(ctx context.Context, a, b string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM blocks
			WHERE (blocker_id = $1 AND blocked_id = $2)
			   OR (blocker_id = $2 AND blocked_id = $1)
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, a, b).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}
