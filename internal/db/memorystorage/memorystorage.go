// Package memorystorage is the default backend: the jsondb cache without
// a backing file, so state resets on restart.
package memorystorage

import (
	"context"

	"github.com/patric-chuzhbe/usuaris/internal/db/jsondb"
	"github.com/patric-chuzhbe/usuaris/internal/models"
)

type MemoryStorage struct {
	*jsondb.JSONDB
}

func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: &jsondb.JSONDB{
			Cache: jsondb.CacheStruct{
				Users:     []models.User{},
				LastSeqID: 0,
			},
		},
	}, nil
}

func (theStorage *MemoryStorage) Close() error {
	return nil
}

func (theStorage *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}
