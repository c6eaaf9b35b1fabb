package reports

import (
	"context"

	"github.com/echosphere/echosphere/internal/server/models"
)

// Repository defines the persistence operations for content reports.
type Repository interface {
	Create(ctx context.Context, report *models.Report) (*models.Report, error)
}
