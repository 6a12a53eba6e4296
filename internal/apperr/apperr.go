// Package apperr defines the error kinds shared by the cart, checkout and
// admin operations. Callers match them with errors.Is / errors.As.
package apperr

import (
	"sort"
	"strings"

	"github.com/diewo77/gleeful/validation"
	"github.com/pkg/errors"
)

var (
	ErrNotFound  = errors.New("not_found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")
	ErrEmptyCart = errors.New("empty_cart")
	ErrStorage   = errors.New("storage_error")

	ErrInvalidCredentials = errors.New("invalid_credentials")
)

// ValidationError carries every field violation found in one pass.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f, code := range e.Violations {
		fields = append(fields, f+": "+code)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// Validation returns nil when v is empty, a *ValidationError otherwise.
func Validation(v validation.Violations) error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Violations: v}
}

// Storage wraps a persistence failure. The cause stays available for logs
// while errors.Is(err, ErrStorage) holds for callers.
func Storage(cause error, op string) error {
	return &storageError{op: op, cause: cause}
}

type storageError struct {
	op    string
	cause error
}

func (e *storageError) Error() string        { return e.op + ": " + e.cause.Error() }
func (e *storageError) Is(target error) bool { return target == ErrStorage }
func (e *storageError) Unwrap() error        { return e.cause }

// NotFound annotates ErrNotFound with the missing entity.
func NotFound(entity string) error {
	return errors.Wrap(ErrNotFound, entity)
}

// Conflict annotates ErrConflict with a reason code.
func Conflict(reason string) error {
	return errors.Wrap(ErrConflict, reason)
}

// Reason returns the annotation given to NotFound or Conflict, or the
// bare kind when there is none.
func Reason(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		return msg[:i]
	}
	return msg
}
