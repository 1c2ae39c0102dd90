package auth

import (
	"context"
	"testing"
	"time"

	"go-inventory-agent/internal/models"
	"go-inventory-agent/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

func newService(t *testing.T) (*Service, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return NewService(testutil.NewDB(t), zap.New(core), WithBcryptCost(bcrypt.MinCost)), logs
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	s, _ := newService(t)

	u, err := s.CreateUser(ctx, "alice", "Alice@Example.com", "s3cret", models.RoleManager)
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEqual(t, "s3cret", u.PasswordHash)
	assert.Nil(t, u.LastLogin)

	_, err = s.CreateUser(ctx, "alice", "other@example.com", "x", models.RoleStaff)
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = s.CreateUser(ctx, "bob", "alice@example.com", "x", models.RoleStaff)
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = s.CreateUser(ctx, "carol", "carol@example.com", "x", "root")
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = s.CreateUser(ctx, "dave", "", "x", models.RoleStaff)
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	s, _ := newService(t)

	_, err := s.CreateUser(ctx, "alice", "alice@example.com", "s3cret", models.RoleAdmin)
	require.NoError(t, err)

	u, err := s.Authenticate(ctx, "alice", "s3cret")
	require.NoError(t, err)
	require.NotNil(t, u.LastLogin)

	byEmail, err := s.Authenticate(ctx, "ALICE@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	stored, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)

	_, err = s.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Authenticate(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_IncompleteRecordIsLogged(t *testing.T) {
	ctx := context.Background()
	s, logs := newService(t)

	require.NoError(t, s.db.Create(&models.User{Username: "legacy", Email: "legacy@example.com", Role: models.RoleStaff}).Error)

	_, err := s.Authenticate(ctx, "legacy", "anything")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	entries := logs.FilterMessage("user record missing fields").All()
	require.Len(t, entries, 1)
	assert.Equal(t, []interface{}{"password_hash"}, entries[0].ContextMap()["fields"])
}

func TestUpdateAndDeleteUser(t *testing.T) {
	ctx := context.Background()
	s, _ := newService(t)

	u, err := s.CreateUser(ctx, "alice", "alice@example.com", "old", models.RoleStaff)
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, "bob", "bob@example.com", "pw", models.RoleStaff)
	require.NoError(t, err)

	role, pw := models.RoleManager, "new"
	updated, err := s.UpdateUser(ctx, u.ID, UserUpdate{Role: &role, Password: &pw})
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, updated.Role)

	_, err = s.Authenticate(ctx, "alice", "new")
	assert.NoError(t, err)

	bad := "owner"
	_, err = s.UpdateUser(ctx, u.ID, UserUpdate{Role: &bad})
	assert.ErrorIs(t, err, ErrInvalidRole)

	taken := "bob@example.com"
	_, err = s.UpdateUser(ctx, u.ID, UserUpdate{Email: &taken})
	assert.ErrorIs(t, err, ErrUserExists)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	assert.ErrorIs(t, s.DeleteUser(ctx, u.ID), ErrUserNotFound)
	_, err = s.GetUser(ctx, u.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestTokenRoundTrip(t *testing.T) {
	ti := NewTokenIssuer("test-secret", time.Hour)

	token, err := ti.GenerateToken(42, models.RoleManager)
	require.NoError(t, err)

	claims, err := ti.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, models.RoleManager, claims.Role)

	_, err = NewTokenIssuer("other-secret", time.Hour).ValidateToken(token)
	assert.Error(t, err)

	expired, err := NewTokenIssuer("test-secret", -time.Minute).GenerateToken(1, models.RoleStaff)
	require.NoError(t, err)
	_, err = ti.ValidateToken(expired)
	assert.Error(t, err)
}
