package git

import (
	"errors"
	"fmt"
)

// NotFoundError is the single failure kind surfaced by navigation: missing
// repository, unresolvable revision, missing path, or a path whose object
// kind does not match the requested view. Reason is diagnostic only.
type NotFoundError struct {
	Reason string
	Err    error
}

// NewNotFound creates a NotFoundError with a formatted reason.
func NewNotFound(cause error, format string, args ...any) *NotFoundError {
	return &NotFoundError{Reason: fmt.Sprintf(format, args...), Err: cause}
}

func (e *NotFoundError) Error() string {
	return e.Reason
}

// Unwrap returns the underlying cause, which may be nil.
func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrNotExist) match every NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotExist
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
