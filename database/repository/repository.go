// Package repository hides where users, access events and geocode answers
// are kept. Users and access events have a flat CSV backend and a gorm
// backend with the same behaviour.
package repository

import (
	"errors"

	"github.com/ctopbusca/ctop-busca/database/model"
)

// ErrStoreUnavailable is returned when a store is missing or unreadable.
// Callers must not treat it as an empty store.
var ErrStoreUnavailable = errors.New("store unavailable")

// UserRepository loads and saves the whole user list.
type UserRepository interface {
	// Exists reports whether the store has been initialized.
	Exists() (bool, error)
	// Load returns all users in store order.
	Load() ([]model.User, error)
	// Save replaces the stored users with users.
	Save(users []model.User) error
}

// AccessLogRepository is an append-only list of access events.
type AccessLogRepository interface {
	Append(event model.AccessEvent) error
	List() ([]model.AccessEvent, error)
}
