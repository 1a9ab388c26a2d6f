// Package common defines shared constants and sentinel errors used across
// the client and server layers of Gateflow. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Transient transport errors. A remote-unavailable failure triggers the
	// offline fallback and is never surfaced to the calling station as an
	// error.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// Lifecycle precondition violations. Surfaced synchronously, before any
	// cache or queue write happens.
	ErrValidationRejected     = errors.New("validation rejected")
	ErrDuplicateActiveVehicle = errors.New("duplicate active vehicle")

	// A queue entry exceeded its retry ceiling. Visible only through the
	// failed-items list, never thrown at the original caller.
	ErrSyncExhausted = errors.New("sync retries exhausted")

	ErrInternal = errors.New("internal error")
)
