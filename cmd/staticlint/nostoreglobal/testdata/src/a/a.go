package a

import "sync"

type JSONDB struct{}

type UserStore struct{}

type Storage interface {
	Close() error
}

type Counter struct{}

func (db *JSONDB) Close() error { return nil }

var theDB *JSONDB // want "package-level variable theDB holds JSONDB"

var store = &UserStore{} // want "package-level variable store holds UserStore"

var (
	backend Storage // want "package-level variable backend holds Storage"
	counter *Counter
	mu      sync.Mutex
	name    = "usuaris"
)

var _ Storage = (*JSONDB)(nil)

func use() {
	var local *JSONDB
	_ = local
	_, _, _, _ = counter, &mu, name, backend
}
