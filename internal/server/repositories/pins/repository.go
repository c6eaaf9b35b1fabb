package pins

import (
	"context"
	"time"

	"github.com/echosphere/echosphere/internal/geo"
	"github.com/echosphere/echosphere/internal/server/models"
)

// Repository defines the persistence operations for voice pins.
type Repository interface {
	Create(ctx context.Context, pin *models.Pin) (*models.Pin, error)
	SelectNearby(ctx context.Context, center geo.Point, radiusMeters float64, limit int) ([]*models.Pin, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
