package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/usuaris/internal/db/memorystorage"
	"github.com/patric-chuzhbe/usuaris/internal/mockstorage"
	"github.com/patric-chuzhbe/usuaris/internal/models"
)

func ptr[T any](v T) *T {
	return &v
}

func newSeededService(t *testing.T, idPolicy string) *Service {
	t.Helper()

	db, err := memorystorage.New()
	require.NoError(t, err)

	s, err := New(db, idPolicy)
	require.NoError(t, err)

	seeded, err := s.Seed(context.Background(), models.SeedUsers())
	require.NoError(t, err)
	require.True(t, seeded)

	return s
}

func newEmptyService(t *testing.T) *Service {
	t.Helper()

	db, err := memorystorage.New()
	require.NoError(t, err)

	s, err := New(db, models.IDPolicyLength)
	require.NoError(t, err)

	return s
}

func TestNewRejectsUnknownPolicy(t *testing.T) {
	db, err := memorystorage.New()
	require.NoError(t, err)

	_, err = New(db, "random")
	assert.ErrorIs(t, err, ErrUnknownIDPolicy)
}

func TestListAll(t *testing.T) {
	ctx := context.Background()

	users, err := newEmptyService(t).ListAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	users, err = newSeededService(t, models.IDPolicyLength).ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SeedUsers(), users)
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name    string
		filter  models.Filter
		want    []models.User
		wantErr error
	}{
		{
			name:   "no criteria",
			filter: models.Filter{},
			want:   models.SeedUsers(),
		},
		{
			name:   "empty criteria are absent",
			filter: models.Filter{Nom: ptr(""), Attr: ptr("")},
			want:   models.SeedUsers(),
		},
		{
			name:   "name and attribute",
			filter: models.Filter{Nom: ptr("Maria"), Attr: ptr("25")},
			want:   []models.User{models.NewUser(2, "Maria", 25)},
		},
		{
			name:   "attribute only",
			filter: models.Filter{Attr: ptr("30")},
			want:   []models.User{models.NewUser(1, "Joan", 30)},
		},
		{
			name:   "attribute with trailing text",
			filter: models.Filter{Attr: ptr("30anys")},
			want:   []models.User{models.NewUser(1, "Joan", 30)},
		},
		{
			name:    "name is case sensitive",
			filter:  models.Filter{Nom: ptr("maria")},
			wantErr: ErrNoUsersMatched,
		},
		{
			name:    "criteria disagree",
			filter:  models.Filter{Nom: ptr("Maria"), Attr: ptr("30")},
			wantErr: ErrNoUsersMatched,
		},
		{
			name:    "unparseable attribute matches nothing",
			filter:  models.Filter{Attr: ptr("abc")},
			wantErr: ErrNoUsersMatched,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSeededService(t, models.IDPolicyLength)

			users, err := s.Filter(context.Background(), tt.filter)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, users)
		})
	}
}

func TestFilterOnEmptyCollection(t *testing.T) {
	s := newEmptyService(t)

	users, err := s.Filter(context.Background(), models.Filter{})
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = s.Filter(context.Background(), models.Filter{Nom: ptr("Joan")})
	assert.ErrorIs(t, err, ErrNoUsersMatched)
}

func TestCreateAssignsLengthPlusOne(t *testing.T) {
	ctx := context.Background()
	s := newEmptyService(t)

	for i := 1; i <= 4; i++ {
		usr, err := s.Create(ctx, models.UserPayload{Nom: ptr("nom"), Attr: ptr(int64(i))})
		require.NoError(t, err)
		assert.Equal(t, int64(i), usr.ID)
	}
}

func TestCreateWithoutFields(t *testing.T) {
	s := newSeededService(t, models.IDPolicyLength)

	usr, err := s.Create(context.Background(), models.UserPayload{})
	require.NoError(t, err)
	assert.Equal(t, models.User{ID: 3}, usr)
}

func TestCreateAfterDeleteReusesIDWithLengthPolicy(t *testing.T) {
	ctx := context.Background()
	s := newSeededService(t, models.IDPolicyLength)

	require.NoError(t, s.Delete(ctx, 1))

	usr, err := s.Create(ctx, models.UserPayload{Nom: ptr("Ramon"), Attr: ptr(int64(50))})
	require.NoError(t, err)
	assert.Equal(t, int64(2), usr.ID)

	found, err := s.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Maria", *found.Nom, "the first record with a duplicated id wins")
}

func TestCreateAfterDeleteWithMonotonicPolicy(t *testing.T) {
	ctx := context.Background()
	s := newSeededService(t, models.IDPolicyMonotonic)

	require.NoError(t, s.Delete(ctx, 2))

	usr, err := s.Create(ctx, models.UserPayload{Nom: ptr("Ramon")})
	require.NoError(t, err)
	assert.Equal(t, int64(3), usr.ID)

	require.NoError(t, s.Delete(ctx, 3))

	usr, err = s.Create(ctx, models.UserPayload{Nom: ptr("Anna")})
	require.NoError(t, err)
	assert.Equal(t, int64(4), usr.ID)
}

func TestFindByID(t *testing.T) {
	ctx := context.Background()
	s := newSeededService(t, models.IDPolicyLength)

	usr, err := s.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, models.NewUser(2, "Maria", 25), usr)

	_, err = s.FindByID(ctx, 42)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateReplacesBothFields(t *testing.T) {
	ctx := context.Background()
	s := newSeededService(t, models.IDPolicyLength)

	usr, err := s.Update(ctx, 1, models.UserPayload{Nom: ptr("Joan Pere")})
	require.NoError(t, err)
	assert.Equal(t, models.User{ID: 1, Nom: ptr("Joan Pere")}, usr)

	stored, err := s.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, stored.Attr)

	_, err = s.Update(ctx, 9, models.UserPayload{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeletePreservesOrder(t *testing.T) {
	ctx := context.Background()
	s := newSeededService(t, models.IDPolicyLength)

	_, err := s.Create(ctx, models.UserPayload{Nom: ptr("Ramon"), Attr: ptr(int64(50))})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, 2))

	users, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(
		t,
		[]models.User{models.NewUser(1, "Joan", 30), models.NewUser(3, "Ramon", 50)},
		users,
	)

	assert.ErrorIs(t, s.Delete(ctx, 2), ErrUserNotFound)
}

func TestSeedOnlyWhenEmpty(t *testing.T) {
	s := newSeededService(t, models.IDPolicyLength)

	seeded, err := s.Seed(context.Background(), models.SeedUsers())
	require.NoError(t, err)
	assert.False(t, seeded)

	count, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestStorageErrorsArePropagated(t *testing.T) {
	ctx := context.Background()
	errBroken := errors.New("connection refused")

	db := &mockstorage.StorageMock{}
	db.On("ListUsers", mock.Anything).Return(nil, errBroken)
	db.On("CountUsers", mock.Anything).Return(int64(0), errBroken)
	db.On("FindUserByID", mock.Anything, int64(1)).Return(models.User{}, false, errBroken)
	db.On("ReplaceUser", mock.Anything, int64(1), mock.Anything).Return(models.User{}, false, errBroken)
	db.On("DeleteUserByID", mock.Anything, int64(1)).Return(false, errBroken)
	db.On("NextSequenceID", mock.Anything).Return(int64(0), errBroken)

	s, err := New(db, models.IDPolicyLength)
	require.NoError(t, err)

	_, err = s.ListAll(ctx)
	assert.ErrorIs(t, err, errBroken)

	_, err = s.Filter(ctx, models.Filter{Nom: ptr("Joan")})
	assert.ErrorIs(t, err, errBroken)

	_, err = s.FindByID(ctx, 1)
	assert.ErrorIs(t, err, errBroken)
	assert.NotErrorIs(t, err, ErrUserNotFound)

	_, err = s.Create(ctx, models.UserPayload{})
	assert.ErrorIs(t, err, errBroken)

	_, err = s.Update(ctx, 1, models.UserPayload{})
	assert.ErrorIs(t, err, errBroken)

	assert.ErrorIs(t, s.Delete(ctx, 1), errBroken)

	monotonic, err := New(db, models.IDPolicyMonotonic)
	require.NoError(t, err)
	_, err = monotonic.Create(ctx, models.UserPayload{})
	assert.ErrorIs(t, err, errBroken)

	db.AssertExpectations(t)
}
