package storage

import "errors"

// Storage errors shared by all store implementations.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when attempting to insert a record
	// with a key that already exists. Spin and purchase records are append-only.
	ErrDuplicateKey = errors.New("duplicate key: append-only store does not allow updates")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoSpinsRemaining is returned when a conditional decrement finds a zero balance.
	ErrNoSpinsRemaining = errors.New("no spins remaining")
)
