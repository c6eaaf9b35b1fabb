package blocks

import "context"

// Repository defines the persistence operations for user blocks.
type Repository interface {
	Create(ctx context.Context, blockerID, blockedID string) error
	Delete(ctx context.Context, blockerID, blockedID string) error
	Exists(ctx context.Context, blockerID, blockedID string) (bool, error)
	ExistsBetween(ctx context.Context, a, b string) (bool, error)
}
