package users

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nomadexpress/backoffice/internal/platform/httpx"
)

type fakeUserStore struct {
	users map[string]*User
}

func (f *fakeUserStore) GetByUsername(_ context.Context, username string) (*User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) ListDrivers(context.Context) ([]Driver, error) {
	return []Driver{{ID: 7, Username: "bataa"}}, nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	store := &fakeUserStore{users: map[string]*User{
		"admin": {ID: 1, Username: "admin", PasswordHash: string(hash), RoleID: 1, RoleName: "admin"},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(logger, store, "test-secret", time.Hour)
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.Login(context.Background(), LoginRequest{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	assert.Equal(t, "admin", result.User.Username)

	claims, err := svc.VerifyToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims["name"])
	assert.Equal(t, "admin", claims["role"])
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Login(context.Background(), LoginRequest{Username: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Login(context.Background(), LoginRequest{Username: "ghost", Password: "s3cret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyTokenRejectsForeignSignature(t *testing.T) {
	svc := newTestService(t)
	other := newTestService(t)
	other.jwtSecret = []byte("another-secret")

	result, err := other.Login(context.Background(), LoginRequest{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)

	_, err = svc.VerifyToken(result.Token)
	assert.Error(t, err)
}
