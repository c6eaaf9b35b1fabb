// Package pins provides a PostgreSQL-backed repository for voice pins,
// including nearby discovery and the expiry sweep used by the janitor.
package pins

import (
	"context"
	"fmt"
	"time"

	"github.com/echosphere/echosphere/internal/dbx"
	"github.com/echosphere/echosphere/internal/geo"
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

func (r *PostgresRepository) Create(ctx context.Context, pin *models.Pin) (*models.Pin, error) {
	query := `
		INSERT INTO voice_pins
			(creator_id, title, audio_url, lat, lng, fuzzy_lat, fuzzy_lng,
			 location_name, is_anonymous_post, voice_masking_enabled, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		pin.CreatorID, pin.Title, pin.AudioURL, pin.Lat, pin.Lng, pin.FuzzyLat, pin.FuzzyLng,
		pin.LocationName, pin.IsAnonymousPost, pin.VoiceMaskingEnabled, pin.ExpiresAt).
		Scan(&pin.ID, &pin.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return pin, nil
}

// SelectNearby returns up to limit unexpired, visible pins within
// radiusMeters of center, newest first. The SQL side prefilters with a
// bounding box over the indexed fuzzy coordinate; the exact great-circle
// check happens here, so the query stays portable across SQL dialects.
func (r *PostgresRepository) SelectNearby(ctx context.Context, center geo.Point, radiusMeters float64, limit int) ([]*models.Pin, error) {
	minLat, maxLat, minLng, maxLng := geo.BoundingBox(center, radiusMeters)

	query := `
		SELECT id, COALESCE(creator_id, ''), title, audio_url, fuzzy_lat, fuzzy_lng,
		       location_name, is_anonymous_post, voice_masking_enabled, expires_at, created_at
		FROM voice_pins
		WHERE fuzzy_lat BETWEEN $1 AND $2
		  AND fuzzy_lng BETWEEN $3 AND $4
		  AND expires_at > now()
		  AND NOT is_hidden
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, minLat, maxLat, minLng, maxLng)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Pin
	for rows.Next() {
		var item models.Pin
		if err := rows.Scan(
			&item.ID, &item.CreatorID, &item.Title, &item.AudioURL, &item.FuzzyLat, &item.FuzzyLng,
			&item.LocationName, &item.IsAnonymousPost, &item.VoiceMaskingEnabled, &item.ExpiresAt, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		if geo.DistanceMeters(center, geo.Point{Lat: item.FuzzyLat, Lng: item.FuzzyLng}) > radiusMeters {
			continue
		}
		result = append(result, &item)
		if len(result) == limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteExpired removes every pin whose expires_at is before now and
// returns the number of deleted rows.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM voice_pins WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
