package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/echosphere/echosphere/internal/common"
	"github.com/echosphere/echosphere/internal/logging"
	"github.com/echosphere/echosphere/internal/server/config"
	"github.com/echosphere/echosphere/internal/server/models"
	"github.com/echosphere/echosphere/internal/server/repositories/repomanager"
	"github.com/oklog/ulid/v2"
)

const otpDigits = 6

// AuthService owns accounts, login sessions, and phone verification.
type AuthService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	config *config.Config
	sms    SMSSender
	log    logging.Logger
}

func NewAuthService(db *sql.DB, repos repomanager.RepositoryManager, cfg *config.Config, sms SMSSender, log logging.Logger) *AuthService {
	return &AuthService{
		db:     db,
		repos:  repos,
		config: cfg,
		sms:    sms,
		log:    log.With("module", "auth_service"),
	}
}

// Signup creates an account and an initial session. The returned token is
// what the session cookie carries.
func (s *AuthService) Signup(ctx context.Context, username, password string) (*models.User, string, error) {
	if username == "" || password == "" {
		return nil, "", common.ErrorValidation
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	user := &models.User{
		ID:           ulid.Make().String(),
		Username:     username,
		PasswordHash: hash,
	}

	user, err = s.repos.Users(s.db).Create(ctx, user)
	if err != nil {
		// unique_violation on username surfaces here
		return nil, "", common.ErrorAlreadyExists
	}

	token, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Login verifies the password and opens a new session.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	if username == "" || password == "" {
		return nil, "", common.ErrorValidation
	}

	user, err := s.repos.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrInvalidLoginPair
		}
		return nil, "", common.ErrorInternal
	}

	if user.PasswordHash == "" {
		return nil, "", common.ErrInvalidAccountState
	}

	if !verifyPassword(user.PasswordHash, password) {
		return nil, "", common.ErrInvalidLoginPair
	}

	token, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Logout invalidates the session token. Unknown tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.repos.Sessions(s.db).Delete(ctx, token)
}

// ValidateSession resolves a cookie token to the current user. The fresh
// result is true when the session was in the second half of its lifetime and
// has been extended; callers should then re-set the cookie.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*models.User, bool, error) {
	if token == "" {
		return nil, false, common.ErrorUnauthorized
	}

	sessionRepo := s.repos.Sessions(s.db)

	session, err := sessionRepo.Find(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, false, common.ErrorUnauthorized
		}
		return nil, false, common.ErrorInternal
	}

	now := time.Now()
	if session.Expired(now) {
		_ = sessionRepo.Delete(ctx, token)
		return nil, false, common.ErrSessionExpired
	}

	fresh := false
	if session.ExpiresAt.Sub(now) < s.config.SessionValidityDuration/2 {
		if err := sessionRepo.Extend(ctx, token, s.config.SessionValidityDuration); err == nil {
			fresh = true
		}
	}

	user, err := s.repos.Users(s.db).GetByID(ctx, session.UserID)
	if err != nil {
		return nil, false, common.ErrorUnauthorized
	}

	return user, fresh, nil
}

func (s *AuthService) createSession(ctx context.Context, userID string) (string, error) {
	token, err := common.MakeRandHexString(32)
	if err != nil {
		return "", common.ErrorInternal
	}
	if err := s.repos.Sessions(s.db).Create(ctx, userID, token, s.config.SessionValidityDuration); err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

// StartPhoneVerification issues a one-time code for the phone number and
// hands it to the SMS sender. The row expires on its own; the janitor reaps
// leftovers.
func (s *AuthService) StartPhoneVerification(ctx context.Context, userID string, phone string) error {
	if phone == "" {
		return common.ErrorValidation
	}

	code, err := common.MakeOTPCode(otpDigits)
	if err != nil {
		return common.ErrorInternal
	}

	v := &models.PhoneVerification{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Phone:     phone,
		Code:      code,
		ExpiresAt: time.Now().Add(s.config.OTPValidityDuration),
	}

	if err := s.repos.Verifications(s.db).Create(ctx, v); err != nil {
		return common.ErrorInternal
	}

	if err := s.sms.SendSMS(ctx, phone, fmt.Sprintf("Your EchoSphere code is %s", code)); err != nil {
		s.log.Error(ctx, "sms delivery failed", "error", err)
		return common.ErrorInternal
	}

	return nil
}

// ConfirmPhoneVerification checks the submitted code against the latest
// issued one and, on success, marks the phone verified and burns the code.
func (s *AuthService) ConfirmPhoneVerification(ctx context.Context, userID string, phone string, code string) error {
	repo := s.repos.Verifications(s.db)

	v, err := repo.FindLatest(ctx, userID, phone)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidCode
		}
		return common.ErrorInternal
	}

	if !v.ExpiresAt.After(time.Now()) || v.Code != code {
		return common.ErrInvalidCode
	}

	if err := s.repos.Users(s.db).SetPhoneVerified(ctx, userID, phone); err != nil {
		return common.ErrorInternal
	}

	_ = repo.Delete(ctx, v.ID)

	return nil
}
