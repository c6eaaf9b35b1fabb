package services

import (
	"context"
	"database/sql"

	"github.com/echosphere/echosphere/internal/common"
	"github.com/echosphere/echosphere/internal/logging"
	"github.com/echosphere/echosphere/internal/server/models"
	"github.com/echosphere/echosphere/internal/server/repositories/repomanager"
)

// SafetyService owns user blocks and content reports.
type SafetyService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	log   logging.Logger
}

func NewSafetyService(db *sql.DB, repos repomanager.RepositoryManager, log logging.Logger) *SafetyService {
	return &SafetyService{
		db:    db,
		repos: repos,
		log:   log.With("module", "safety_service"),
	}
}

// Block records a one-directional block. Blocking twice is a no-op.
func (s *SafetyService) Block(ctx context.Context, blockerID, blockedID string) error {
	if blockedID == "" {
		return common.ErrorValidation
	}
	if blockerID == blockedID {
		return common.ErrorSelfTarget
	}
	if err := s.repos.Blocks(s.db).Create(ctx, blockerID, blockedID); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// Unblock removes a block. Removing a block that does not exist is a no-op.
func (s *SafetyService) Unblock(ctx context.Context, blockerID, blockedID string) error {
	if blockedID == "" {
		return common.ErrorValidation
	}
	if err := s.repos.Blocks(s.db).Delete(ctx, blockerID, blockedID); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// Report files a report against a pin or a user.
func (s *SafetyService) Report(ctx context.Context, reporterID, targetType, targetID, reason string) (*models.Report, error) {
	if targetID == "" || reason == "" {
		return nil, common.ErrorValidation
	}
	if targetType != models.ReportTargetPin && targetType != models.ReportTargetUser {
		return nil, common.ErrorValidation
	}

	report := &models.Report{
		ReporterID: reporterID,
		TargetType: targetType,
		TargetID:   targetID,
		Reason:     reason,
	}
	report, err := s.repos.Reports(s.db).Create(ctx, report)
	if err != nil {
		return nil, common.ErrorInternal
	}

	s.log.Info(ctx, "report filed", "target_type", targetType, "target_id", targetID)
	return report, nil
}
