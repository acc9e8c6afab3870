package flock

import "errors"

var (
	// ErrNotFound is returned when an operation targets an unknown sheep or owner.
	ErrNotFound = errors.New("not found")

	// ErrLimitReached is returned when today's care allowance is used up.
	ErrLimitReached = errors.New("daily prayer limit reached")

	// ErrInvalidInput is returned for malformed names, identities or configuration.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPersistence wraps record store failures. Gameplay continues locally.
	ErrPersistence = errors.New("persistence failure")
)
