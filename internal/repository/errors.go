package repository

import "errors"

// ErrNotFound is wrapped by lookups that match no row.
var ErrNotFound = errors.New("not found")

// ErrConflict is wrapped when a write collides with an existing row.
var ErrConflict = errors.New("conflict")
