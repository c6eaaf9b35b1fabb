package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/echosphere/echosphere/internal/common"
	"github.com/echosphere/echosphere/internal/dbx"
	"github.com/echosphere/echosphere/internal/geo"
	"github.com/echosphere/echosphere/internal/logging"
	"github.com/echosphere/echosphere/internal/server/models"
	"github.com/echosphere/echosphere/internal/server/realtime"
	blocksrepo "github.com/echosphere/echosphere/internal/server/repositories/blocks"
	connectionsrepo "github.com/echosphere/echosphere/internal/server/repositories/connections"
	pinsrepo "github.com/echosphere/echosphere/internal/server/repositories/pins"
	reportsrepo "github.com/echosphere/echosphere/internal/server/repositories/reports"
	sessionsrepo "github.com/echosphere/echosphere/internal/server/repositories/sessions"
	usersrepo "github.com/echosphere/echosphere/internal/server/repositories/users"
	verificationsrepo "github.com/echosphere/echosphere/internal/server/repositories/verifications"
)

// --- shared helpers ---

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

// fakeNotifier records what services pushed into the realtime layer.
type fakeNotifier struct {
	mu         sync.Mutex
	sent       []sentMsg
	broadcasts []realtime.Outbound
}

type sentMsg struct {
	identity string
	msg      realtime.Outbound
}

func (f *fakeNotifier) Send(_ context.Context, identity string, msg realtime.Outbound) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMsg{identity: identity, msg: msg})
}

func (f *fakeNotifier) Broadcast(_ context.Context, msg realtime.Outbound) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, msg)
}

// --- repository fakes ---

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	byID    map[string]*models.User
	byIDErr error

	byUsername    *models.User
	byUsernameErr error

	reputationCalls [][]string
	reputationErr   error

	verifiedUser  string
	verifiedPhone string
	verifiedErr   error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.byUsernameErr != nil {
		return nil, f.byUsernameErr
	}
	return f.byUsername, nil
}

func (f *fakeUsersRepo) AddReputation(ctx context.Context, delta int, userIDs ...string) error {
	f.reputationCalls = append(f.reputationCalls, userIDs)
	return f.reputationErr
}

func (f *fakeUsersRepo) SetPhoneVerified(ctx context.Context, userID string, phone string) error {
	f.verifiedUser = userID
	f.verifiedPhone = phone
	return f.verifiedErr
}

type fakeSessionsRepo struct {
	createErr error
	created   []string

	findOut *models.Session
	findErr error

	deleted   []string
	deleteErr error

	extended  []string
	extendErr error
}

func (f *fakeSessionsRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	f.created = append(f.created, token)
	return f.createErr
}

func (f *fakeSessionsRepo) Find(ctx context.Context, token string) (*models.Session, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeSessionsRepo) Delete(ctx context.Context, token string) error {
	f.deleted = append(f.deleted, token)
	return f.deleteErr
}

func (f *fakeSessionsRepo) Extend(ctx context.Context, token string, validity time.Duration) error {
	f.extended = append(f.extended, token)
	return f.extendErr
}

type fakePinsRepo struct {
	createOut *models.Pin
	createErr error

	nearbyOut []*models.Pin
	nearbyErr error

	lastCenter geo.Point
	lastRadius float64
	lastLimit  int
}

func (f *fakePinsRepo) Create(ctx context.Context, pin *models.Pin) (*models.Pin, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	pin.ID = 1
	return pin, nil
}

func (f *fakePinsRepo) SelectNearby(ctx context.Context, center geo.Point, radiusMeters float64, limit int) ([]*models.Pin, error) {
	f.lastCenter = center
	f.lastRadius = radiusMeters
	f.lastLimit = limit
	if f.nearbyErr != nil {
		return nil, f.nearbyErr
	}
	return f.nearbyOut, nil
}

func (f *fakePinsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type fakeVerificationsRepo struct {
	created   *models.PhoneVerification
	createErr error

	latestOut *models.PhoneVerification
	latestErr error

	deleted []string
}

func (f *fakeVerificationsRepo) Create(ctx context.Context, v *models.PhoneVerification) error {
	f.created = v
	return f.createErr
}

func (f *fakeVerificationsRepo) FindLatest(ctx context.Context, userID string, phone string) (*models.PhoneVerification, error) {
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	return f.latestOut, nil
}

func (f *fakeVerificationsRepo) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeVerificationsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type fakeConnectionsRepo struct {
	createOut *models.ConnectionRequest
	createErr error

	getOut *models.ConnectionRequest
	getErr error

	countOut int
	countErr error

	existsOut bool
	existsErr error

	incomingOut []*models.IncomingRequest
	incomingErr error

	updatedStatus string
	updateErr     error
}

func (f *fakeConnectionsRepo) Create(ctx context.Context, req *models.ConnectionRequest) (*models.ConnectionRequest, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	req.ID = 7
	return req, nil
}

func (f *fakeConnectionsRepo) GetByID(ctx context.Context, id int64) (*models.ConnectionRequest, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeConnectionsRepo) CountSentSince(ctx context.Context, senderID string, since time.Time) (int, error) {
	return f.countOut, f.countErr
}

func (f *fakeConnectionsRepo) ExistsBetween(ctx context.Context, a, b string) (bool, error) {
	return f.existsOut, f.existsErr
}

func (f *fakeConnectionsRepo) SelectIncoming(ctx context.Context, receiverID string) ([]*models.IncomingRequest, error) {
	if f.incomingErr != nil {
		return nil, f.incomingErr
	}
	return f.incomingOut, nil
}

func (f *fakeConnectionsRepo) UpdateStatus(ctx context.Context, id int64, status string) (*models.ConnectionRequest, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updatedStatus = status
	out := *f.getOut
	out.Status = status
	return &out, nil
}

type fakeBlocksRepo struct {
	created   [][2]string
	createErr error

	deleted   [][2]string
	deleteErr error

	existsOut bool
	existsErr error

	betweenOut bool
	betweenErr error
}

func (f *fakeBlocksRepo) Create(ctx context.Context, blockerID, blockedID string) error {
	f.created = append(f.created, [2]string{blockerID, blockedID})
	return f.createErr
}

func (f *fakeBlocksRepo) Delete(ctx context.Context, blockerID, blockedID string) error {
	f.deleted = append(f.deleted, [2]string{blockerID, blockedID})
	return f.deleteErr
}

func (f *fakeBlocksRepo) Exists(ctx context.Context, blockerID, blockedID string) (bool, error) {
	return f.existsOut, f.existsErr
}

func (f *fakeBlocksRepo) ExistsBetween(ctx context.Context, a, b string) (bool, error) {
	return f.betweenOut, f.betweenErr
}

type fakeReportsRepo struct {
	createOut *models.Report
	createErr error
}

func (f *fakeReportsRepo) Create(ctx context.Context, report *models.Report) (*models.Report, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	report.ID = 1
	return report, nil
}

type fakeRepoManager struct {
	users         *fakeUsersRepo
	sessions      *fakeSessionsRepo
	pins          *fakePinsRepo
	verifications *fakeVerificationsRepo
	connections   *fakeConnectionsRepo
	blocks        *fakeBlocksRepo
	reports       *fakeReportsRepo
}

func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.users }
func (m *fakeRepoManager) Sessions(db dbx.DBTX) sessionsrepo.Repository { return m.sessions }
func (m *fakeRepoManager) Pins(db dbx.DBTX) pinsrepo.Repository         { return m.pins }
func (m *fakeRepoManager) Verifications(db dbx.DBTX) verificationsrepo.Repository {
	return m.verifications
}
func (m *fakeRepoManager) Connections(db dbx.DBTX) connectionsrepo.Repository {
	return m.connections
}
func (m *fakeRepoManager) Blocks(db dbx.DBTX) blocksrepo.Repository   { return m.blocks }
func (m *fakeRepoManager) Reports(db dbx.DBTX) reportsrepo.Repository { return m.reports }
func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}
