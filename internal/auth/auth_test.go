package auth

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gojo5t5/papertrade/internal/models"
)

type memoryStore struct {
	users  map[int]*models.User
	nextID int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: map[int]*models.User{}, nextID: 1}
}

func (m *memoryStore) CreateUser(ctx context.Context, u *models.User) error {
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return models.ErrUsernameTaken
		}
	}
	u.ID = m.nextID
	m.nextID++
	copied := *u
	m.users[u.ID] = &copied
	return nil
}

func (m *memoryStore) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *memoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (m *memoryStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := m.GetUserByUsername(ctx, username)
	return err == nil, nil
}

func (m *memoryStore) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	u, ok := m.users[userID]
	if !ok {
		return models.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func newTestService() (*Service, *memoryStore) {
	store := newMemoryStore()
	return NewService(store, decimal.NewFromInt(10000)), store
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a user with the starting cash", func(t *testing.T) {
		svc, _ := newTestService()

		user, err := svc.Register(ctx, "alice", "hunter2", "hunter2")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.True(t, decimal.NewFromInt(10000).Equal(user.Cash))
		assert.NotEqual(t, "hunter2", user.PasswordHash, "password must be stored hashed")
	})

	t.Run("rejects a taken username", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.Register(ctx, "alice", "hunter2", "hunter2")
		require.NoError(t, err)
		_, err = svc.Register(ctx, "alice", "other", "other")
		assert.ErrorIs(t, err, models.ErrUsernameTaken)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.Register(ctx, "  ", "pw", "pw")
		assert.ErrorIs(t, err, ErrMissingUsername)

		_, err = svc.Register(ctx, "alice", "", "")
		assert.ErrorIs(t, err, ErrMissingPassword)

		_, err = svc.Register(ctx, "alice", "pw", "other")
		assert.ErrorIs(t, err, ErrPasswordMismatch)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	registered, err := svc.Register(ctx, "alice", "hunter2", "hunter2")
	require.NoError(t, err)

	t.Run("accepts the right password", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, "alice", "hunter2")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "alice", "wrong")
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	})

	t.Run("rejects an unknown user with the same error", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "nobody", "hunter2")
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	user, err := svc.Register(ctx, "alice", "hunter2", "hunter2")
	require.NoError(t, err)

	t.Run("requires the current password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, user.ID, "wrong", "next", "next")
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	})

	t.Run("requires matching confirmation", func(t *testing.T) {
		err := svc.ChangePassword(ctx, user.ID, "hunter2", "next", "other")
		assert.ErrorIs(t, err, ErrPasswordMismatch)
	})

	t.Run("updates the stored hash", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(ctx, user.ID, "hunter2", "next", "next"))

		_, err := svc.Authenticate(ctx, "alice", "hunter2")
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)

		authed, err := svc.Authenticate(ctx, "alice", "next")
		require.NoError(t, err)
		assert.Equal(t, user.ID, authed.ID)
	})
}
