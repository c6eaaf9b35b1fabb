package verifications

import (
	"context"
	"time"

	"github.com/echosphere/echosphere/internal/server/models"
)

// Repository defines the persistence operations for phone verification codes.
type Repository interface {
	Create(ctx context.Context, v *models.PhoneVerification) error
	FindLatest(ctx context.Context, userID string, phone string) (*models.PhoneVerification, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
