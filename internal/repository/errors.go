package repository

import "errors"

var (
	// ErrNotFound means the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate means an insert hit an existing unique key.
	ErrDuplicate = errors.New("duplicate")
)
