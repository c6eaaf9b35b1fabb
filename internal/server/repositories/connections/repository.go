package connections

import (
	"context"
	"time"

	"github.com/echosphere/echosphere/internal/server/models"
)

// Repository defines the persistence operations for connection requests.
type Repository interface {
	Create(ctx context.Context, req *models.ConnectionRequest) (*models.ConnectionRequest, error)
	GetByID(ctx context.Context, id int64) (*models.ConnectionRequest, error)
	CountSentSince(ctx context.Context, senderID string, since time.Time) (int, error)
	ExistsBetween(ctx context.Context, a, b string) (bool, error)
	SelectIncoming(ctx context.Context, receiverID string) ([]*models.IncomingRequest, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*models.ConnectionRequest, error)
}
