package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/converselab/converse-api/internal/config"
	"github.com/converselab/converse-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserServiceFixture(t *testing.T) (UserService, *fakeUserStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "0123456789abcdef0123456789abcdef",
		TokenLifetimeMinutes: 30,
	})
	require.NoError(t, err)

	users := newFakeUserStore()
	svc := NewUserService(users, jwtService, auth.NewBcryptHasher(), db, testLogger())
	return svc, users, mock
}

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("creates user with hashed password", func(t *testing.T) {
		svc, users, mock := newUserServiceFixture(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		user, err := svc.Register(context.Background(), "alice", "alice@example.com", "hunter2hunter2")
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.NotEqual(t, "hunter2hunter2", user.HashedPassword)

		stored, err := users.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", stored.Username)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		svc, _, mock := newUserServiceFixture(t)
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectBegin()
		mock.ExpectRollback()

		_, err := svc.Register(context.Background(), "bob", "bob@example.com", "hunter2hunter2")
		require.NoError(t, err)

		_, err = svc.Register(context.Background(), "bob", "other@example.com", "hunter2hunter2")
		assert.Error(t, err)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	register := func(t *testing.T, svc UserService, mock sqlmock.Sqlmock) {
		t.Helper()
		mock.ExpectBegin()
		mock.ExpectCommit()
		_, err := svc.Register(context.Background(), "carol", "carol@example.com", "correct horse")
		require.NoError(t, err)
	}

	t.Run("issues token for username login", func(t *testing.T) {
		svc, _, mock := newUserServiceFixture(t)
		register(t, svc, mock)

		token, user, err := svc.Login(context.Background(), "carol", "correct horse")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "carol", user.Username)
	})

	t.Run("issues token for email login", func(t *testing.T) {
		svc, _, mock := newUserServiceFixture(t)
		register(t, svc, mock)

		token, _, err := svc.Login(context.Background(), "carol@example.com", "correct horse")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password and unknown user are indistinguishable", func(t *testing.T) {
		svc, _, mock := newUserServiceFixture(t)
		register(t, svc, mock)

		_, _, errWrongPassword := svc.Login(context.Background(), "carol", "wrong")
		_, _, errUnknownUser := svc.Login(context.Background(), "mallory", "wrong")

		assert.ErrorIs(t, errWrongPassword, ErrInvalidCredentials)
		assert.ErrorIs(t, errUnknownUser, ErrInvalidCredentials)
	})
}
