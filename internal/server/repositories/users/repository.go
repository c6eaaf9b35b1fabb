package users

import (
	"context"

	"github.com/echosphere/echosphere/internal/server/models"
)

// Repository defines the persistence operations the user service needs.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	AddReputation(ctx context.Context, delta int, userIDs ...string) error
	SetPhoneVerified(ctx context.Context, userID string, phone string) error
}
