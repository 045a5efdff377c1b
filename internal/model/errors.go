package model

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when a write violates email uniqueness.
	ErrDuplicateEmail = errors.New("email already exists")
)
