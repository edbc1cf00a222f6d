// Package mockstorage provides a testify-based mock implementation
// of the record storage. It is used to drive the service and the
// transports into their failure paths.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/usuaris/internal/models"
)

// StorageMock is a testify mock that implements storage.Storage.
type StorageMock struct {
	mock.Mock
}

// Ping mocks the health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks releasing the storage.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

// ListUsers mocks reading the whole collection.
func (m *StorageMock) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

// CountUsers mocks counting the collection.
func (m *StorageMock) CountUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	count, _ := args.Get(0).(int64)
	return count, args.Error(1)
}

// InsertUser mocks appending a record.
func (m *StorageMock) InsertUser(ctx context.Context, usr models.User) error {
	args := m.Called(ctx, usr)
	return args.Error(0)
}

// FindUserByID mocks a lookup by id.
func (m *StorageMock) FindUserByID(ctx context.Context, id int64) (models.User, bool, error) {
	args := m.Called(ctx, id)
	usr, _ := args.Get(0).(models.User)
	return usr, args.Bool(1), args.Error(2)
}

// ReplaceUser mocks a full-replace update.
func (m *StorageMock) ReplaceUser(
	ctx context.Context,
	id int64,
	payload models.UserPayload,
) (models.User, bool, error) {
	args := m.Called(ctx, id, payload)
	usr, _ := args.Get(0).(models.User)
	return usr, args.Bool(1), args.Error(2)
}

// DeleteUserByID mocks removing a record.
func (m *StorageMock) DeleteUserByID(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// NextSequenceID mocks the monotonic id counter.
func (m *StorageMock) NextSequenceID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	next, _ := args.Get(0).(int64)
	return next, args.Error(1)
}
