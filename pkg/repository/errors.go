package repository

import (
	"errors"
	"fmt"

	"github.com/spezi-dev/spezi/pkg/storage"
)

var (
	// ErrInvalidArgument is returned before any storage call when input fails
	// validation (non-positive id, blank name, malformed key).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned when no row matches, including writes that
	// affected zero rows.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when the datastore rejects a write because of a
	// schema constraint (duplicate key, missing referenced row).
	ErrConflict = errors.New("constraint violation")
)

func invalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// wrapErr annotates a driver error with the operation and classifies
// constraint violations as ErrConflict.
func wrapErr(op string, err error) error {
	if storage.IsConstraintViolation(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func validateID(kind string, id int64) error {
	if id <= 0 {
		return invalidArgument("%s id must be a positive integer, got %d", kind, id)
	}
	return nil
}
