package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/diwan-hq/diwan-api/internal/dto"
	"github.com/diwan-hq/diwan-api/internal/models"
	appErrors "github.com/diwan-hq/diwan-api/pkg/errors"
)

type stubUserStore struct {
	users       map[string]*models.User
	deactivated []string
	patches     []models.UserPatch
}

func (s *stubUserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *stubUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (s *stubUserStore) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var out []models.User
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (s *stubUserStore) Count(ctx context.Context) (int, error) {
	return len(s.users), nil
}

func (s *stubUserStore) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "new-id"
	}
	if s.users == nil {
		s.users = map[string]*models.User{}
	}
	s.users[user.ID] = user
	return nil
}

func (s *stubUserStore) Update(ctx context.Context, id string, patch models.UserPatch) error {
	s.patches = append(s.patches, patch)
	return nil
}

func (s *stubUserStore) Deactivate(ctx context.Context, id string) error {
	s.deactivated = append(s.deactivated, id)
	return nil
}

func (s *stubUserStore) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	return nil
}

func adminClaims() *models.Claims {
	return &models.Claims{UserID: "admin-1", Username: "admin", Role: models.RoleAdmin}
}

func newUserService(store *stubUserStore, audit *stubAudit) *UserService {
	if store == nil {
		store = &stubUserStore{users: map[string]*models.User{}}
	}
	if audit == nil {
		audit = &stubAudit{}
	}
	return NewUserService(store, audit, nil, zap.NewNop())
}

func TestUserCreateHashesPassword(t *testing.T) {
	store := &stubUserStore{users: map[string]*models.User{}}
	audit := &stubAudit{}
	svc := newUserService(store, audit)

	user, err := svc.Create(context.Background(), dto.CreateUserRequest{
		Username: "sara",
		Password: "secret1",
		FullName: "Sara Ali",
		Role:     "employee",
	}, adminClaims())

	require.NoError(t, err)
	assert.True(t, user.Active)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))
	require.Len(t, audit.entries, 1)
	assert.Contains(t, audit.entries[0].Action, "created")
}

func TestUserCreateDuplicateUsername(t *testing.T) {
	store := &stubUserStore{users: map[string]*models.User{
		"u1": {ID: "u1", Username: "sara"},
	}}
	audit := &stubAudit{}
	svc := newUserService(store, audit)

	_, err := svc.Create(context.Background(), dto.CreateUserRequest{
		Username: "sara",
		Password: "secret1",
		FullName: "Other Sara",
		Role:     "viewer",
	}, adminClaims())

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Len(t, store.users, 1)
	assert.Empty(t, audit.entries)
}

func TestUserCreateInvalidRole(t *testing.T) {
	svc := newUserService(nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateUserRequest{
		Username: "sara",
		Password: "secret1",
		FullName: "Sara",
		Role:     "superuser",
	}, adminClaims())

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUserUpdateUsernameTaken(t *testing.T) {
	store := &stubUserStore{users: map[string]*models.User{
		"u1": {ID: "u1", Username: "sara"},
		"u2": {ID: "u2", Username: "omar"},
	}}
	svc := newUserService(store, nil)

	taken := "omar"
	_, err := svc.Update(context.Background(), "u1", dto.UpdateUserRequest{Username: &taken}, adminClaims())

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.patches)
}

func TestUserUpdateFields(t *testing.T) {
	store := &stubUserStore{users: map[string]*models.User{
		"u1": {ID: "u1", Username: "sara", FullName: "Sara", Role: models.RoleViewer},
	}}
	audit := &stubAudit{}
	svc := newUserService(store, audit)

	role := "employee"
	user, err := svc.Update(context.Background(), "u1", dto.UpdateUserRequest{Role: &role}, adminClaims())

	require.NoError(t, err)
	assert.Equal(t, models.RoleEmployee, user.Role)
	require.Len(t, store.patches, 1)
	require.Len(t, audit.entries, 1)
}

func TestUserDeactivate(t *testing.T) {
	store := &stubUserStore{users: map[string]*models.User{
		"u1": {ID: "u1", Username: "sara", Active: true},
	}}
	audit := &stubAudit{}
	svc := newUserService(store, audit)

	err := svc.Deactivate(context.Background(), "u1", adminClaims())
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, store.deactivated)
	require.Len(t, audit.entries, 1)
	assert.Contains(t, audit.entries[0].Action, "deactivated")
}

func TestUserDeactivateSelfRejected(t *testing.T) {
	store := &stubUserStore{users: map[string]*models.User{
		"admin-1": {ID: "admin-1", Username: "admin", Active: true},
	}}
	svc := newUserService(store, nil)

	err := svc.Deactivate(context.Background(), "admin-1", adminClaims())
	require.Error(t, err)
	assert.Empty(t, store.deactivated)
}

func TestUserBootstrapSeedsAdminOnce(t *testing.T) {
	store := &stubUserStore{users: map[string]*models.User{}}
	svc := newUserService(store, nil)

	require.NoError(t, svc.Bootstrap(context.Background(), "admin", "admin123"))
	require.Len(t, store.users, 1)
	for _, u := range store.users {
		assert.Equal(t, models.RoleAdmin, u.Role)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("admin123")))
	}

	require.NoError(t, svc.Bootstrap(context.Background(), "admin", "admin123"))
	assert.Len(t, store.users, 1, "second bootstrap is a no-op")
}
