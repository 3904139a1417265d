package docstore

import (
	"fmt"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/schema"
)

var (
	// ErrNotFound is returned when no document has the requested identity.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidIdentity matches every *InvalidIdentityError.
	ErrInvalidIdentity = errors.New("invalid document id")
	// ErrStoreUnavailable is returned when no backend is configured or the
	// backend cannot be reached.
	ErrStoreUnavailable = errors.New("document store unavailable")
)

// InvalidIdentityError reports a token that is not a well-formed identity.
type InvalidIdentityError struct {
	Token string
}

func (e *InvalidIdentityError) Error() string {
	return fmt.Sprintf("invalid document id %q", e.Token)
}

func (e *InvalidIdentityError) Is(target error) bool {
	return target == ErrInvalidIdentity
}

// UnavailableError wraps a connectivity failure reported by a backend.
type UnavailableError struct {
	Cause error
}

// Unavailable marks err as a connectivity failure.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	return &UnavailableError{Cause: err}
}

func (e *UnavailableError) Error() string {
	return "document store unavailable: " + e.Cause.Error()
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// PersistenceError is a write failure that happened after validation passed.
type PersistenceError struct {
	Collection schema.Collection
	Cause      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s document: %v", e.Collection, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// DataIntegrityError is a stored document that no longer fits its view.
type DataIntegrityError struct {
	Collection schema.Collection
	ID         string
	Cause      error
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("%s document %q does not match schema: %v", e.Collection, e.ID, e.Cause)
}

func (e *DataIntegrityError) Unwrap() error {
	return e.Cause
}
