package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/echosphere/echosphere/internal/common"
	"github.com/echosphere/echosphere/internal/dbx"
	"github.com/echosphere/echosphere/internal/logging"
	"github.com/echosphere/echosphere/internal/server/models"
	"github.com/echosphere/echosphere/internal/server/realtime"
	"github.com/echosphere/echosphere/internal/server/repositories/repomanager"
)

const (
	// maxRequestsPerHour limits how many connection requests one user may
	// send in a sliding hour.
	maxRequestsPerHour = 5

	// acceptReputationBonus is granted to both sides of an accepted
	// connection.
	acceptReputationBonus = 10
)

// Valid respond actions.
const (
	ActionAccept = "accept"
	ActionIgnore = "ignore"
	ActionBlock  = "block"
)

// ConnectionService owns the gated voice-intro request flow.
type ConnectionService struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	notifier Notifier
	log      logging.Logger
}

func NewConnectionService(db *sql.DB, repos repomanager.RepositoryManager, notifier Notifier, log logging.Logger) *ConnectionService {
	return &ConnectionService{
		db:       db,
		repos:    repos,
		notifier: notifier,
		log:      log.With("module", "connection_service"),
	}
}

// Request creates a pending connection request and notifies the receiver in
// real time once the row is committed.
//
// Rejections, in order: self-target, rate limit, block in either direction,
// duplicate request in either direction.
func (s *ConnectionService) Request(ctx context.Context, sender *models.User, receiverID string, audioIntroURL string) (*models.ConnectionRequest, error) {
	if receiverID == "" {
		return nil, common.ErrorValidation
	}
	if sender.ID == receiverID {
		return nil, common.ErrorSelfTarget
	}

	connRepo := s.repos.Connections(s.db)

	sent, err := connRepo.CountSentSince(ctx, sender.ID, time.Now().Add(-time.Hour))
	if err != nil {
		return nil, common.ErrorInternal
	}
	if sent >= maxRequestsPerHour {
		return nil, common.ErrorRateLimited
	}

	blocked, err := s.repos.Blocks(s.db).ExistsBetween(ctx, sender.ID, receiverID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if blocked {
		return nil, common.ErrorBlocked
	}

	exists, err := connRepo.ExistsBetween(ctx, sender.ID, receiverID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if exists {
		return nil, common.ErrorAlreadyExists
	}

	req := &models.ConnectionRequest{
		SenderID:      sender.ID,
		ReceiverID:    receiverID,
		Status:        models.RequestPending,
		AudioIntroURL: audioIntroURL,
	}
	req, err = connRepo.Create(ctx, req)
	if err != nil {
		return nil, common.ErrorInternal
	}

	profile := sender.Public()
	s.notifier.Send(ctx, receiverID, realtime.Notification{
		Kind:      realtime.NotifyConnectionRequest,
		Sender:    &profile,
		RequestID: req.ID,
	})

	return req, nil
}

// Incoming returns the pending requests addressed to userID.
func (s *ConnectionService) Incoming(ctx context.Context, userID string) ([]*models.IncomingRequest, error) {
	reqs, err := s.repos.Connections(s.db).SelectIncoming(ctx, userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return reqs, nil
}

// Respond applies the receiver's decision. Only the receiver of a request
// may respond. Blocking also records a block row; accepting bumps both
// reputations and notifies the sender, after the transaction commits.
func (s *ConnectionService) Respond(ctx context.Context, user *models.User, requestID int64, action string) (string, error) {
	var status string
	switch action {
	case ActionAccept:
		status = models.RequestAccepted
	case ActionIgnore:
		status = models.RequestIgnored
	case ActionBlock:
		status = models.RequestBlocked
	default:
		return "", common.ErrorValidation
	}

	req, err := s.repos.Connections(s.db).GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotFound
		}
		return "", common.ErrorInternal
	}
	if req.ReceiverID != user.ID {
		return "", common.ErrorNotFound
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repos.Connections(tx).UpdateStatus(ctx, requestID, status); err != nil {
			return err
		}
		if status == models.RequestBlocked {
			if err := s.repos.Blocks(tx).Create(ctx, user.ID, req.SenderID); err != nil {
				return err
			}
		}
		if status == models.RequestAccepted {
			if err := s.repos.Users(tx).AddReputation(ctx, acceptReputationBonus, user.ID, req.SenderID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", common.ErrorInternal
	}

	if status == models.RequestAccepted {
		s.notifier.Send(ctx, req.SenderID, realtime.Notification{
			Kind:     realtime.NotifyConnectionAccepted,
			UserID:   user.ID,
			Username: user.Username,
		})
	}

	return status, nil
}
