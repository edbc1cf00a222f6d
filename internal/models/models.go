// Package models holds the record types shared by the storage backends,
// the record service and the transports.
package models

import "errors"

// User is one entry of the collection. Nom and Attr are optional: a nil
// pointer means the value was never supplied.
type User struct {
	ID   int64   `json:"id"`
	Nom  *string `json:"nom,omitempty"`
	Attr *int64  `json:"attr,omitempty"`
}

// UserPayload is the client-provided part of a record on create and update.
type UserPayload struct {
	Nom  *string
	Attr *int64
}

// Filter holds the optional criteria of a list request. Attr is kept as
// received and parsed by the service.
type Filter struct {
	Nom  *string
	Attr *string
}

// IsEmpty reports whether no criterion was supplied.
func (f Filter) IsEmpty() bool {
	return f.Nom == nil && f.Attr == nil
}

type InternalStatsResponse struct {
	Users int64 `json:"usuaris"`
}

const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeMySQL
	StorageTypeFile
	StorageTypeMemory
)

const (
	IDPolicyLength    = "length"
	IDPolicyMonotonic = "monotonic"
)

const (
	DefaultAttributeName = "edat"
	AltAttributeName     = "alcada"
)

// ErrUserNotFound is returned when no record carries the requested id.
var ErrUserNotFound = errors.New("user not found")

// SeedUsers returns the two records the collection starts with.
func SeedUsers() []User {
	return []User{
		NewUser(1, "Joan", 30),
		NewUser(2, "Maria", 25),
	}
}

// NewUser builds a record with both optional fields set.
func NewUser(id int64, nom string, attr int64) User {
	return User{
		ID:   id,
		Nom:  &nom,
		Attr: &attr,
	}
}
