// Package storage declares the primitive operations every record backend
// provides. Lookups by id resolve to the first record in insertion order.
package storage

import (
	"context"

	"github.com/patric-chuzhbe/usuaris/internal/models"
)

type Storage interface {
	ListUsers(ctx context.Context) ([]models.User, error)

	CountUsers(ctx context.Context) (int64, error)

	InsertUser(ctx context.Context, usr models.User) error

	FindUserByID(ctx context.Context, id int64) (models.User, bool, error)

	ReplaceUser(
		ctx context.Context,
		id int64,
		payload models.UserPayload,
	) (models.User, bool, error)

	DeleteUserByID(ctx context.Context, id int64) (bool, error)

	// NextSequenceID reserves and returns an id greater than every id
	// handed out by it before and every id ever inserted.
	NextSequenceID(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error

	Close() error
}
