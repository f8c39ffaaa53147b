package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/vitorf997/packing-creator/internal/packing"
)

var (
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned on unique or referential conflicts.
	ErrConflict = errors.New("conflict")
	// ErrInvalid is returned when a request is semantically wrong.
	ErrInvalid = errors.New("invalid request")
	// ErrUnavailable is returned when an optional backend is not configured.
	ErrUnavailable = errors.New("unavailable")
)

// AllocationRejectedError carries the per-row messages of a refused submit.
type AllocationRejectedError struct {
	Reason string
	Rows   map[string]packing.RowErrors
}

func (e *AllocationRejectedError) Error() string { return e.Reason }

func rejected(r *packing.Rejection) *AllocationRejectedError {
	return &AllocationRejectedError{Reason: r.Reason, Rows: r.Errors}
}

func notFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalid, msg)
}

// translate maps gorm errors onto the service sentinels.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound(what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s already exists: %w", what, ErrConflict)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s is still referenced: %w", what, ErrConflict)
	}
	return err
}
