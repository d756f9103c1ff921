// Package apperrors defines the sentinel errors shared across services and
// HTTP handlers. Callers should use errors.Is to match these values.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// Authentication errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("account is inactive")
	ErrInvalidSession     = errors.New("invalid session")
	ErrWrongPassword      = errors.New("incorrect current password")

	// ErrRegistrationNotAllowed is returned by signup when no matching
	// provisioned placeholder account exists.
	ErrRegistrationNotAllowed = errors.New("registration not allowed")

	// Authorization errors. ErrUnauthorized means the actor has no access
	// relationship to the record at all; ErrRoleRequired means the action
	// is reserved for admins.
	ErrUnauthorized = errors.New("no access to this object")
	ErrRoleRequired = errors.New("admin role required")

	// ErrNotFound covers missing users, objects, and images.
	ErrNotFound = errors.New("not found")

	// ErrEditForbidden means the actor may access the record but its current
	// status blocks mutation. Use NewEditForbidden to attach the reason.
	ErrEditForbidden = errors.New("object cannot be edited")

	// ErrVersionConflict is returned when an update carries a stale version.
	ErrVersionConflict = errors.New("version conflict")

	// ErrInvalidTransition is returned for a status change the state machine
	// does not permit for the given actor.
	ErrInvalidTransition = errors.New("status transition not allowed")
)

// EditReason names why a mutation was blocked, so UIs can localize the
// message without string matching.
type EditReason string

const (
	ReasonCompleted   EditReason = "completed"
	ReasonReleased    EditReason = "released-locked"
	ReasonUnderReview EditReason = "under-review-locked"
	ReasonDeleted     EditReason = "deleted"
)

// EditForbiddenError wraps ErrEditForbidden with the blocking reason.
type EditForbiddenError struct {
	Reason EditReason
}

func (e *EditForbiddenError) Error() string {
	return fmt.Sprintf("object cannot be edited: %s", e.Reason)
}

// Unwrap makes errors.Is(err, ErrEditForbidden) hold.
func (e *EditForbiddenError) Unwrap() error {
	return ErrEditForbidden
}

// NewEditForbidden returns an EditForbiddenError carrying the given reason.
func NewEditForbidden(reason EditReason) error {
	return &EditForbiddenError{Reason: reason}
}
