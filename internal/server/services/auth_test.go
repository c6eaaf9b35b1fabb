package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/echosphere/echosphere/internal/common"
	"github.com/echosphere/echosphere/internal/server/config"
	"github.com/echosphere/echosphere/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T, rm *fakeRepoManager) *AuthService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	t.Cleanup(func() { db.Close() })
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return NewAuthService(db, rm, cfg, NewLogSMSSender(nopLogger{}), nopLogger{})
}

func TestSignup_CreatesUserAndSession(t *testing.T) {
	rm := &fakeRepoManager{
		users:    &fakeUsersRepo{},
		sessions: &fakeSessionsRepo{},
	}
	s := newAuthService(t, rm)

	user, token, err := s.Signup(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, user.ID)
	assert.NotEmpty(t, user.PasswordHash)
	assert.Len(t, token, 64)
	assert.Equal(t, []string{token}, rm.sessions.created)
}

func TestSignup_DuplicateUsername(t *testing.T) {
	rm := &fakeRepoManager{
		users:    &fakeUsersRepo{createErr: errBoom{}},
		sessions: &fakeSessionsRepo{},
	}
	s := newAuthService(t, rm)

	_, _, err := s.Signup(context.Background(), "alice", "pw")
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestSignup_EmptyFields(t *testing.T) {
	s := newAuthService(t, &fakeRepoManager{})
	_, _, err := s.Signup(context.Background(), "", "pw")
	assert.ErrorIs(t, err, common.ErrorValidation)
	_, _, err = s.Signup(context.Background(), "alice", "")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestLogin_Flows(t *testing.T) {
	hash, err := hashPassword("pw")
	require.NoError(t, err)

	// unknown username and wrong password collapse to the same error
	rmNF := &fakeRepoManager{
		users:    &fakeUsersRepo{byUsernameErr: common.ErrorNotFound},
		sessions: &fakeSessionsRepo{},
	}
	sNF := newAuthService(t, rmNF)
	_, _, err = sNF.Login(context.Background(), "ghost", "pw")
	assert.ErrorIs(t, err, common.ErrInvalidLoginPair)

	rmWrong := &fakeRepoManager{
		users:    &fakeUsersRepo{byUsername: &models.User{ID: "u1", Username: "alice", PasswordHash: hash}},
		sessions: &fakeSessionsRepo{},
	}
	sWrong := newAuthService(t, rmWrong)
	_, _, err = sWrong.Login(context.Background(), "alice", "nope")
	assert.ErrorIs(t, err, common.ErrInvalidLoginPair)

	rmOK := &fakeRepoManager{
		users:    &fakeUsersRepo{byUsername: &models.User{ID: "u1", Username: "alice", PasswordHash: hash}},
		sessions: &fakeSessionsRepo{},
	}
	sOK := newAuthService(t, rmOK)
	user, token, err := sOK.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.NotEmpty(t, token)
}

func TestLogin_PasswordlessAccount(t *testing.T) {
	rm := &fakeRepoManager{
		users:    &fakeUsersRepo{byUsername: &models.User{ID: "u1", Username: "guest"}},
		sessions: &fakeSessionsRepo{},
	}
	s := newAuthService(t, rm)
	_, _, err := s.Login(context.Background(), "guest", "pw")
	assert.ErrorIs(t, err, common.ErrInvalidAccountState)
}

func TestValidateSession_Expired(t *testing.T) {
	rm := &fakeRepoManager{
		users: &fakeUsersRepo{},
		sessions: &fakeSessionsRepo{
			findOut: &models.Session{Token: "tok", UserID: "u1", ExpiresAt: time.Now().Add(-time.Minute)},
		},
	}
	s := newAuthService(t, rm)

	_, _, err := s.ValidateSession(context.Background(), "tok")
	assert.ErrorIs(t, err, common.ErrSessionExpired)
	assert.Equal(t, []string{"tok"}, rm.sessions.deleted)
}

func TestValidateSession_ExtendsWhenStale(t *testing.T) {
	rm := &fakeRepoManager{
		users: &fakeUsersRepo{byID: map[string]*models.User{"u1": {ID: "u1", Username: "alice"}}},
		sessions: &fakeSessionsRepo{
			// past the halfway point of a 720h validity
			findOut: &models.Session{Token: "tok", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)},
		},
	}
	s := newAuthService(t, rm)

	user, fresh, err := s.ValidateSession(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.True(t, fresh)
	assert.Equal(t, []string{"tok"}, rm.sessions.extended)
}

func TestValidateSession_NoExtendWhenYoung(t *testing.T) {
	rm := &fakeRepoManager{
		users: &fakeUsersRepo{byID: map[string]*models.User{"u1": {ID: "u1"}}},
		sessions: &fakeSessionsRepo{
			findOut: &models.Session{Token: "tok", UserID: "u1", ExpiresAt: time.Now().Add(700 * time.Hour)},
		},
	}
	s := newAuthService(t, rm)

	_, fresh, err := s.ValidateSession(context.Background(), "tok")
	require.NoError(t, err)
	assert.False(t, fresh)
	assert.Empty(t, rm.sessions.extended)
}

func TestValidateSession_UnknownToken(t *testing.T) {
	rm := &fakeRepoManager{
		users:    &fakeUsersRepo{},
		sessions: &fakeSessionsRepo{findErr: common.ErrorNotFound},
	}
	s := newAuthService(t, rm)

	_, _, err := s.ValidateSession(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, _, err = s.ValidateSession(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestStartPhoneVerification_IssuesCode(t *testing.T) {
	rm := &fakeRepoManager{
		users:         &fakeUsersRepo{},
		verifications: &fakeVerificationsRepo{},
	}
	s := newAuthService(t, rm)

	err := s.StartPhoneVerification(context.Background(), "u1", "+15550001111")
	require.NoError(t, err)
	require.NotNil(t, rm.verifications.created)
	assert.Len(t, rm.verifications.created.Code, otpDigits)
	assert.Equal(t, "+15550001111", rm.verifications.created.Phone)
	assert.True(t, rm.verifications.created.ExpiresAt.After(time.Now()))
}

func TestConfirmPhoneVerification(t *testing.T) {
	valid := &models.PhoneVerification{
		ID:        "v1",
		UserID:    "u1",
		Phone:     "+15550001111",
		Code:      "123456",
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}

	t.Run("success", func(t *testing.T) {
		rm := &fakeRepoManager{
			users:         &fakeUsersRepo{},
			verifications: &fakeVerificationsRepo{latestOut: valid},
		}
		s := newAuthService(t, rm)

		err := s.ConfirmPhoneVerification(context.Background(), "u1", "+15550001111", "123456")
		require.NoError(t, err)
		assert.Equal(t, "u1", rm.users.verifiedUser)
		assert.Equal(t, "+15550001111", rm.users.verifiedPhone)
		assert.Equal(t, []string{"v1"}, rm.verifications.deleted)
	})

	t.Run("wrong code", func(t *testing.T) {
		rm := &fakeRepoManager{
			users:         &fakeUsersRepo{},
			verifications: &fakeVerificationsRepo{latestOut: valid},
		}
		s := newAuthService(t, rm)
		err := s.ConfirmPhoneVerification(context.Background(), "u1", "+15550001111", "000000")
		assert.ErrorIs(t, err, common.ErrInvalidCode)
		assert.Empty(t, rm.users.verifiedUser)
	})

	t.Run("expired code", func(t *testing.T) {
		expired := *valid
		expired.ExpiresAt = time.Now().Add(-time.Minute)
		rm := &fakeRepoManager{
			users:         &fakeUsersRepo{},
			verifications: &fakeVerificationsRepo{latestOut: &expired},
		}
		s := newAuthService(t, rm)
		err := s.ConfirmPhoneVerification(context.Background(), "u1", "+15550001111", "123456")
		assert.ErrorIs(t, err, common.ErrInvalidCode)
	})

	t.Run("no code issued", func(t *testing.T) {
		rm := &fakeRepoManager{
			users:         &fakeUsersRepo{},
			verifications: &fakeVerificationsRepo{latestErr: common.ErrorNotFound},
		}
		s := newAuthService(t, rm)
		err := s.ConfirmPhoneVerification(context.Background(), "u1", "+15550001111", "123456")
		assert.ErrorIs(t, err, common.ErrInvalidCode)
	})

	t.Run("lookup failure", func(t *testing.T) {
		rm := &fakeRepoManager{
			users:         &fakeUsersRepo{},
			verifications: &fakeVerificationsRepo{latestErr: errors.New("db down")},
		}
		s := newAuthService(t, rm)
		err := s.ConfirmPhoneVerification(context.Background(), "u1", "+15550001111", "123456")
		assert.ErrorIs(t, err, common.ErrorInternal)
	})
}
