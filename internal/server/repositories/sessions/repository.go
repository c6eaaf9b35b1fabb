package sessions

import (
	"context"
	"time"

	"github.com/echosphere/echosphere/internal/server/models"
)

// Repository defines the persistence operations for login sessions.
type Repository interface {
	Create(ctx context.Context, userID string, token string, validity time.Duration) error
	Find(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
	Extend(ctx context.Context, token string, validity time.Duration) error
}
