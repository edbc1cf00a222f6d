package jsondb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/usuaris/internal/db/storage"
	"github.com/patric-chuzhbe/usuaris/internal/db/storagetest"
	"github.com/patric-chuzhbe/usuaris/internal/models"
)

const testDBFileName = "db_test.json"

func TestStorageBehaviour(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		theStorage, err := New(filepath.Join(t.TempDir(), testDBFileName))
		require.NoError(t, err)
		t.Cleanup(func() {
			require.NoError(t, theStorage.Close())
		})
		return theStorage
	})
}

func TestPersistsOnClose(t *testing.T) {
	ctx := context.Background()
	fileName := filepath.Join(t.TempDir(), testDBFileName)

	theStorage, err := New(fileName)
	require.NoError(t, err)

	for _, usr := range models.SeedUsers() {
		require.NoError(t, theStorage.InsertUser(ctx, usr))
	}
	_, err = theStorage.NextSequenceID(ctx)
	require.NoError(t, err)
	require.NoError(t, theStorage.Close())

	reopened, err := New(fileName)
	require.NoError(t, err)

	users, err := reopened.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SeedUsers(), users)
	assert.Equal(t, int64(3), reopened.Cache.LastSeqID)
}

func TestNewRejectsCorruptedFile(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), testDBFileName)
	require.NoError(t, os.WriteFile(fileName, []byte("{not json"), 0644))

	_, err := New(fileName)
	assert.Error(t, err)
}
