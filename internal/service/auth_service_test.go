package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/diwan-hq/diwan-api/internal/models"
	appErrors "github.com/diwan-hq/diwan-api/pkg/errors"
)

type stubAuthRepo struct {
	user            *models.User
	updatedPassword string
}

func (s *stubAuthRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.user == nil || s.user.Username != username {
		return nil, sql.ErrNoRows
	}
	return s.user, nil
}

func (s *stubAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return s.user, nil
}

func (s *stubAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	s.updatedPassword = passwordHash
	return nil
}

func newAuthService(repo *stubAuthRepo, audit *stubAudit) *AuthService {
	if audit == nil {
		audit = &stubAudit{}
	}
	return NewAuthService(repo, audit, validator.New(), zap.NewNop(), AuthConfig{
		TokenSecret: "secret",
		TokenExpiry: time.Hour,
		Issuer:      "diwan-api",
	})
}

func activeUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "u1",
		Username:     "sara",
		PasswordHash: string(hash),
		FullName:     "Sara Ali",
		Role:         models.RoleEmployee,
		Active:       true,
	}
}

func TestAuthLoginSuccess(t *testing.T) {
	repo := &stubAuthRepo{user: activeUser(t, "password")}
	audit := &stubAudit{}
	svc := newAuthService(repo, audit)

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "sara", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "sara", res.User.Username)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionLogin, audit.entries[0].Action)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleEmployee, claims.Role)
}

func TestAuthLoginWrongPasswordLogsNothing(t *testing.T) {
	repo := &stubAuthRepo{user: activeUser(t, "password")}
	audit := &stubAudit{}
	svc := newAuthService(repo, audit)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "sara", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
	assert.Empty(t, audit.entries)
}

func TestAuthLoginUnknownUser(t *testing.T) {
	svc := newAuthService(&stubAuthRepo{}, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginInactiveAccount(t *testing.T) {
	user := activeUser(t, "password")
	user.Active = false
	svc := newAuthService(&stubAuthRepo{user: user}, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "sara", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthVerifyCredentialsNoAudit(t *testing.T) {
	repo := &stubAuthRepo{user: activeUser(t, "password")}
	audit := &stubAudit{}
	svc := newAuthService(repo, audit)

	user, err := svc.VerifyCredentials(context.Background(), "sara", "password")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Empty(t, audit.entries)

	_, err = svc.VerifyCredentials(context.Background(), "sara", "wrong")
	require.Error(t, err)
	assert.Empty(t, audit.entries)
}

func TestAuthLogoutRecordsAudit(t *testing.T) {
	audit := &stubAudit{}
	svc := newAuthService(&stubAuthRepo{}, audit)

	err := svc.Logout(context.Background(), &models.Claims{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionLogout, audit.entries[0].Action)
}

func TestAuthChangePassword(t *testing.T) {
	repo := &stubAuthRepo{user: activeUser(t, "old-password")}
	audit := &stubAudit{}
	svc := newAuthService(repo, audit)

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{OldPassword: "old-password", NewPassword: "new-password"})
	require.NoError(t, err)
	require.NotEmpty(t, repo.updatedPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.updatedPassword), []byte("new-password")))
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionPasswordChange, audit.entries[0].Action)
}

func TestAuthChangePasswordWrongOld(t *testing.T) {
	repo := &stubAuthRepo{user: activeUser(t, "old-password")}
	audit := &stubAudit{}
	svc := newAuthService(repo, audit)

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{OldPassword: "bad", NewPassword: "new-password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.updatedPassword)
	assert.Empty(t, audit.entries)
}

func TestAuthValidateTokenRejectsTampered(t *testing.T) {
	svc := newAuthService(&stubAuthRepo{}, nil)

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)

	other := NewAuthService(&stubAuthRepo{}, &stubAudit{}, validator.New(), zap.NewNop(), AuthConfig{TokenSecret: "different", TokenExpiry: time.Hour})
	token, err := other.generateToken(&models.User{ID: "u1", Username: "sara", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
