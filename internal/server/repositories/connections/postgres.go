// Package connections provides a PostgreSQL-backed repository for gated
// connection requests.
package connections

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

func (r *PostgresRepository) Create(ctx context.Context, req *models.ConnectionRequest) (*models.ConnectionRequest, error) {
	query := `
		INSERT INTO connection_requests (sender_id, receiver_id, status, audio_intro_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		req.SenderID, req.ReceiverID, req.Status, req.AudioIntroURL).
		Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return req, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.ConnectionRequest, error) {
	query := `
		SELECT id, sender_id, receiver_id, status, audio_intro_url, created_at
		FROM connection_requests
		WHERE id = $1
	`
	req := &models.ConnectionRequest{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&req.ID, &req.SenderID, &req.ReceiverID, &req.Status, &req.AudioIntroURL, &req.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return req, nil
}

// CountSentSince returns how many requests senderID created after since.
// Used for rate limiting.
func (r *PostgresRepository) CountSentSince(ctx context.Context, senderID string, since time.Time) (int, error) {
	query := `
		SELECT count(*) FROM connection_requests
		WHERE sender_id = $1 AND created_at > $2
	`
	var n int
	if err := r.db.QueryRowContext(ctx, query, senderID, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// ExistsBetween reports whether any request exists between the two users,
// in either direction and in any status.
func (r *PostgresRepository) ExistsBetween(ctx context.Context, a, b string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM connection_requests
			WHERE (sender_id = $1 AND receiver_id = $2)
			   OR (sender_id = $2 AND receiver_id = $1)
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, a, b).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// SelectIncoming returns pending requests addressed to receiverID joined
// with each sender's public profile, oldest first.
func (r *PostgresRepository) SelectIncoming(ctx context.Context, receiverID string) ([]*models.IncomingRequest, error) {
	query := `
		SELECT cr.id, cr.status, cr.audio_intro_url, cr.created_at,
		       u.id, COALESCE(u.username, ''), u.avatar_url, u.reputation_score
		FROM connection_requests cr
		JOIN users u ON u.id = cr.sender_id
		WHERE cr.receiver_id = $1 AND cr.status = $2
		ORDER BY cr.created_at
	`
	rows, err := r.db.QueryContext(ctx, query, receiverID, models.RequestPending)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.IncomingRequest
	for rows.Next() {
		var item models.IncomingRequest
		if err := rows.Scan(
			&item.ID, &item.Status, &item.AudioIntroURL, &item.CreatedAt,
			&item.Sender.ID, &item.Sender.Username, &item.Sender.AvatarURL, &item.Sender.ReputationScore,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateStatus sets the request status and returns the updated row.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int64, status string) (*models.ConnectionRequest, error) {
	query := `
		UPDATE connection_requests SET status = $2
		WHERE id = $1
		RETURNING id, sender_id, receiver_id, status, audio_intro_url, created_at
	`
	req := &models.ConnectionRequest{}
	err := r.db.QueryRowContext(ctx, query, id, status).Scan(
		&req.ID, &req.SenderID, &req.ReceiverID, &req.Status, &req.AudioIntroURL, &req.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return req, nil
}
