// Package common defines shared sentinel errors used across the sync engine
// and the reference server. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Remote API errors.
	ErrUnavailable     = errors.New("server unavailable")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidArgument = errors.New("invalid argument")

	// Configuration / wiring errors.
	ErrInvalidConfig = errors.New("invalid config")

	// Locking errors.
	ErrAlreadyRunning = errors.New("already running")
)
