// Package service implements the record store semantics on top of a
// storage backend: filter matching, id assignment, full-replace updates
// and first-match deletes.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/usuaris/internal/models"
)

type usersReader interface {
	ListUsers(ctx context.Context) ([]models.User, error)

	CountUsers(ctx context.Context) (int64, error)

	FindUserByID(ctx context.Context, id int64) (models.User, bool, error)
}

type usersWriter interface {
	InsertUser(ctx context.Context, usr models.User) error

	ReplaceUser(
		ctx context.Context,
		id int64,
		payload models.UserPayload,
	) (models.User, bool, error)

	DeleteUserByID(ctx context.Context, id int64) (bool, error)
}

type sequencer interface {
	NextSequenceID(ctx context.Context) (int64, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type storage interface {
	usersReader
	usersWriter
	sequencer
	pinger
}

// ErrUserNotFound is returned when no record carries the requested id.
var ErrUserNotFound = models.ErrUserNotFound

// ErrNoUsersMatched is returned by Filter when criteria were supplied and
// nothing matched them.
var ErrNoUsersMatched = errors.New("no user matches the filter")

// ErrUnknownIDPolicy is returned by New for an unsupported id policy.
var ErrUnknownIDPolicy = errors.New("unknown id policy")

// Service is the record store. Every operation runs under one mutex, so
// reading the collection length and appending on Create is atomic.
type Service struct {
	mu       sync.Mutex
	db       storage
	idPolicy string
}

func New(db storage, idPolicy string) (*Service, error) {
	if idPolicy == "" {
		idPolicy = models.IDPolicyLength
	}
	if idPolicy != models.IDPolicyLength && idPolicy != models.IDPolicyMonotonic {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIDPolicy, idPolicy)
	}

	return &Service{
		db:       db,
		idPolicy: idPolicy,
	}, nil
}

// ListAll returns the whole collection in insertion order.
func (s *Service) ListAll(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.listAll(ctx)
}

func (s *Service) listAll(ctx context.Context) ([]models.User, error) {
	users, err := s.db.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("error while `s.db.ListUsers()` calling: %w", err)
	}
	if users == nil {
		users = []models.User{}
	}

	return users, nil
}

// Filter returns the records matching every supplied criterion. Empty
// criteria count as absent; with no criterion it behaves as ListAll.
// ErrNoUsersMatched is returned when a criterion was given and nothing
// matched, even if the collection itself is empty.
func (s *Service) Filter(ctx context.Context, filter models.Filter) ([]models.User, error) {
	filter = normalizeFilter(filter)

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}

	if filter.IsEmpty() {
		return users, nil
	}

	matches := newMatcher(filter)
	result := funk.Filter(users, matches).([]models.User)
	if len(result) == 0 {
		return nil, ErrNoUsersMatched
	}

	return result, nil
}

func normalizeFilter(filter models.Filter) models.Filter {
	if filter.Nom != nil && *filter.Nom == "" {
		filter.Nom = nil
	}
	if filter.Attr != nil && *filter.Attr == "" {
		filter.Attr = nil
	}
	return filter
}

func newMatcher(filter models.Filter) func(models.User) bool {
	var (
		attr      int64
		attrValid bool
	)
	if filter.Attr != nil {
		attr, attrValid = models.ParseLeadingInt(*filter.Attr)
	}

	return func(usr models.User) bool {
		if filter.Nom != nil && (usr.Nom == nil || *usr.Nom != *filter.Nom) {
			return false
		}
		if filter.Attr != nil && (!attrValid || usr.Attr == nil || *usr.Attr != attr) {
			return false
		}
		return true
	}
}

// FindByID returns the first record carrying id.
func (s *Service) FindByID(ctx context.Context, id int64) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	usr, found, err := s.db.FindUserByID(ctx, id)
	if err != nil {
		return models.User{}, fmt.Errorf("error while `s.db.FindUserByID()` calling: %w", err)
	}
	if !found {
		return models.User{}, ErrUserNotFound
	}

	return usr, nil
}

// Create appends a new record and returns it. The id comes from the
// configured policy: collection length + 1, or the monotonic counter.
func (s *Service) Create(ctx context.Context, payload models.UserPayload) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.nextID(ctx)
	if err != nil {
		return models.User{}, err
	}

	usr := models.User{
		ID:   id,
		Nom:  payload.Nom,
		Attr: payload.Attr,
	}
	if err := s.db.InsertUser(ctx, usr); err != nil {
		return models.User{}, fmt.Errorf("error while `s.db.InsertUser()` calling: %w", err)
	}

	return usr, nil
}

func (s *Service) nextID(ctx context.Context) (int64, error) {
	if s.idPolicy == models.IDPolicyMonotonic {
		id, err := s.db.NextSequenceID(ctx)
		if err != nil {
			return 0, fmt.Errorf("error while `s.db.NextSequenceID()` calling: %w", err)
		}
		return id, nil
	}

	count, err := s.db.CountUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("error while `s.db.CountUsers()` calling: %w", err)
	}

	return count + 1, nil
}

// Update overwrites both nom and the attribute of the first record
// carrying id. Absent payload fields clear the stored value.
func (s *Service) Update(ctx context.Context, id int64, payload models.UserPayload) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	usr, found, err := s.db.ReplaceUser(ctx, id, payload)
	if err != nil {
		return models.User{}, fmt.Errorf("error while `s.db.ReplaceUser()` calling: %w", err)
	}
	if !found {
		return models.User{}, ErrUserNotFound
	}

	return usr, nil
}

// Delete removes the first record carrying id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted, err := s.db.DeleteUserByID(ctx, id)
	if err != nil {
		return fmt.Errorf("error while `s.db.DeleteUserByID()` calling: %w", err)
	}
	if !deleted {
		return ErrUserNotFound
	}

	return nil
}

// Seed inserts users when the collection is empty and reports whether it did.
func (s *Service) Seed(ctx context.Context, users []models.User) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.db.CountUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("error while `s.db.CountUsers()` calling: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	for _, usr := range users {
		if err := s.db.InsertUser(ctx, usr); err != nil {
			return false, fmt.Errorf("error while `s.db.InsertUser()` calling: %w", err)
		}
	}

	return true, nil
}

// Count returns the number of records.
func (s *Service) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.CountUsers(ctx)
}

// Ping checks the health of the storage layer.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
