package service

import (
	"fmt"

	"github.com/google/uuid"
)

// Error kind labels, used in bulk results and by the HTTP layer to pick a
// status code. Domain errors are expected outcomes and are never logged as
// failures; only KindStoreUnavailable is operational.
const (
	KindNotFound          = "NotFound"
	KindForbidden         = "Forbidden"
	KindInvalidTransition = "InvalidTransition"
	KindMissingField      = "MissingField"
	KindInvalidArgument   = "InvalidArgument"
	KindConflict          = "Conflict"
	KindTooManyItems      = "TooManyItems"
	KindStoreUnavailable  = "StoreUnavailable"
)

type ErrNotFound struct {
	error
}

func NewErrNotFound(id uuid.UUID, resourceType string) *ErrNotFound {
	return &ErrNotFound{fmt.Errorf("%s %s not found", resourceType, id)}
}

func NewErrJobNotFound(id uuid.UUID) *ErrNotFound {
	return NewErrNotFound(id, "job")
}

func NewErrApplicationNotFound(id uuid.UUID) *ErrNotFound {
	return NewErrNotFound(id, "application")
}

func NewErrUserNotFound(id uuid.UUID) *ErrNotFound {
	return NewErrNotFound(id, "user")
}

type ErrForbidden struct {
	error
}

func NewErrForbidden(message string) *ErrForbidden {
	return &ErrForbidden{fmt.Errorf("forbidden: %s", message)}
}

type ErrInvalidTransition struct {
	error
	Current   string
	Requested string
}

func NewErrInvalidTransition(entityType, current, requested string) *ErrInvalidTransition {
	return &ErrInvalidTransition{
		error:     fmt.Errorf("%s cannot move from %q to %q", entityType, current, requested),
		Current:   current,
		Requested: requested,
	}
}

type ErrMissingField struct {
	error
	Field string
}

func NewErrMissingField(field, reason string) *ErrMissingField {
	return &ErrMissingField{
		error: fmt.Errorf("missing field %q: %s", field, reason),
		Field: field,
	}
}

type ErrInvalidArgument struct {
	error
}

func NewErrInvalidArgument(message string) *ErrInvalidArgument {
	return &ErrInvalidArgument{fmt.Errorf("invalid argument: %s", message)}
}

type ErrConflict struct {
	error
}

// NewErrConflict signals a lost optimistic race: the entity's status changed
// between the read and the conditional write. Retryable by the caller.
func NewErrConflict(id uuid.UUID, resourceType string) *ErrConflict {
	return &ErrConflict{fmt.Errorf("%s %s was modified concurrently", resourceType, id)}
}

func NewErrDuplicate(message string) *ErrConflict {
	return &ErrConflict{fmt.Errorf("already exists: %s", message)}
}

type ErrTooManyItems struct {
	error
	Limit int
}

func NewErrTooManyItems(count, limit int) *ErrTooManyItems {
	return &ErrTooManyItems{
		error: fmt.Errorf("bulk operation with %d items exceeds the limit of %d", count, limit),
		Limit: limit,
	}
}

type ErrStoreUnavailable struct {
	error
}

func NewErrStoreUnavailable(err error) *ErrStoreUnavailable {
	return &ErrStoreUnavailable{fmt.Errorf("store unavailable: %w", err)}
}

// ErrorKind maps a service error to its wire label. Unknown errors are
// treated as store failures.
func ErrorKind(err error) string {
	switch err.(type) {
	case *ErrNotFound:
		return KindNotFound
	case *ErrForbidden:
		return KindForbidden
	case *ErrInvalidTransition:
		return KindInvalidTransition
	case *ErrMissingField:
		return KindMissingField
	case *ErrInvalidArgument:
		return KindInvalidArgument
	case *ErrConflict:
		return KindConflict
	case *ErrTooManyItems:
		return KindTooManyItems
	default:
		return KindStoreUnavailable
	}
}
