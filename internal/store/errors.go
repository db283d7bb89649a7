package store

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned when inserting a user whose email already exists.
	ErrEmailTaken = errors.New("email already taken")
)
