package domain

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrOutOfStock   = errors.New("no available copies")
	ErrInvalidState = errors.New("invalid state")
	ErrPersistence  = errors.New("persistence failure")
	ErrCompensation = errors.New("compensation failure")
	ErrValidation   = errors.New("validation failed")
)

// PersistenceError reports a failed write, possibly after an earlier write
// of the same operation was already undone.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrPersistence, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// CompensationError is returned when the corrective write issued after a
// failed step fails as well. Data may be inconsistent.
type CompensationError struct {
	Op       string
	Cause    error
	Rollback error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("%s: %s: cause: %v; rollback: %v", e.Op, ErrCompensation, e.Cause, e.Rollback)
}

// Unwrap exposes both the cause and the rollback error to errors.Is/As.
func (e *CompensationError) Unwrap() error {
	return multierror.Append(nil, e.Cause, e.Rollback).ErrorOrNil()
}

func (e *CompensationError) Is(target error) bool { return target == ErrCompensation }

// ActiveLoansError blocks removal of a book that still has copies out.
type ActiveLoansError struct {
	BookID string
	Count  int
}

func (e *ActiveLoansError) Error() string {
	return fmt.Sprintf("book %s still has %d active loan(s)", e.BookID, e.Count)
}

func (e *ActiveLoansError) Is(target error) bool { return target == ErrInvalidState }

func NotFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

func Invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}

// IsDomain reports whether err already carries one of the sentinels above.
func IsDomain(err error) bool {
	for _, target := range []error{ErrNotFound, ErrOutOfStock, ErrInvalidState, ErrPersistence, ErrCompensation, ErrValidation} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
