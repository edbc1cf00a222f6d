// Package storagetest holds the behaviour every storage backend must share,
// run from each backend's own tests.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/usuaris/internal/db/storage"
	"github.com/patric-chuzhbe/usuaris/internal/models"
)

// Factory returns an empty backend. Cleanup is the caller's job via t.Cleanup.
type Factory func(t *testing.T) storage.Storage

func ptr[T any](v T) *T {
	return &v
}

// Run executes the shared backend checks, each against a fresh storage.
func Run(t *testing.T, newStorage Factory) {
	t.Run("insert keeps order", func(t *testing.T) {
		ctx := context.Background()
		theStorage := newStorage(t)

		for _, usr := range models.SeedUsers() {
			require.NoError(t, theStorage.InsertUser(ctx, usr))
		}
		require.NoError(t, theStorage.InsertUser(ctx, models.User{ID: 3}))

		users, err := theStorage.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 3)
		assert.Equal(t, models.SeedUsers(), users[:2])
		assert.Equal(t, models.User{ID: 3}, users[2])

		count, err := theStorage.CountUsers(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("empty list", func(t *testing.T) {
		users, err := newStorage(t).ListUsers(context.Background())
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("find resolves first match", func(t *testing.T) {
		ctx := context.Background()
		theStorage := newStorage(t)

		require.NoError(t, theStorage.InsertUser(ctx, models.NewUser(2, "Maria", 25)))
		require.NoError(t, theStorage.InsertUser(ctx, models.NewUser(2, "Ramon", 50)))

		usr, found, err := theStorage.FindUserByID(ctx, 2)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "Maria", *usr.Nom)

		_, found, err = theStorage.FindUserByID(ctx, 9)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("replace overwrites both fields", func(t *testing.T) {
		ctx := context.Background()
		theStorage := newStorage(t)

		require.NoError(t, theStorage.InsertUser(ctx, models.NewUser(1, "Joan", 30)))

		usr, found, err := theStorage.ReplaceUser(ctx, 1, models.UserPayload{Nom: ptr("Pere")})
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, models.User{ID: 1, Nom: ptr("Pere")}, usr)

		stored, found, err := theStorage.FindUserByID(ctx, 1)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, usr, stored)

		_, found, err = theStorage.ReplaceUser(ctx, 7, models.UserPayload{})
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("delete removes first match only", func(t *testing.T) {
		ctx := context.Background()
		theStorage := newStorage(t)

		require.NoError(t, theStorage.InsertUser(ctx, models.NewUser(1, "Joan", 30)))
		require.NoError(t, theStorage.InsertUser(ctx, models.NewUser(2, "Maria", 25)))
		require.NoError(t, theStorage.InsertUser(ctx, models.NewUser(2, "Ramon", 50)))
		require.NoError(t, theStorage.InsertUser(ctx, models.NewUser(4, "Anna", 19)))

		deleted, err := theStorage.DeleteUserByID(ctx, 2)
		require.NoError(t, err)
		assert.True(t, deleted)

		users, err := theStorage.ListUsers(ctx)
		require.NoError(t, err)
		assert.Equal(
			t,
			[]models.User{
				models.NewUser(1, "Joan", 30),
				models.NewUser(2, "Ramon", 50),
				models.NewUser(4, "Anna", 19),
			},
			users,
		)

		deleted, err = theStorage.DeleteUserByID(ctx, 9)
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("sequence never goes back", func(t *testing.T) {
		ctx := context.Background()
		theStorage := newStorage(t)

		require.NoError(t, theStorage.InsertUser(ctx, models.NewUser(1, "Joan", 30)))
		require.NoError(t, theStorage.InsertUser(ctx, models.NewUser(2, "Maria", 25)))

		next, err := theStorage.NextSequenceID(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), next)

		_, err = theStorage.DeleteUserByID(ctx, 2)
		require.NoError(t, err)

		next, err = theStorage.NextSequenceID(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), next)
	})

	t.Run("sequence skips ids that were deleted", func(t *testing.T) {
		ctx := context.Background()
		theStorage := newStorage(t)

		require.NoError(t, theStorage.InsertUser(ctx, models.NewUser(1, "Joan", 30)))
		require.NoError(t, theStorage.InsertUser(ctx, models.NewUser(2, "Maria", 25)))

		_, err := theStorage.DeleteUserByID(ctx, 2)
		require.NoError(t, err)

		next, err := theStorage.NextSequenceID(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), next)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, newStorage(t).Ping(context.Background()))
	})
}
