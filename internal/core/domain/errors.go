package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimited indicates a downstream API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrServiceUnavailable indicates a downstream data service could not
	// be reached. The poller records it and carries on; consumers keep
	// the last-known-good data.
	ErrServiceUnavailable = errors.New("service unavailable")
)
