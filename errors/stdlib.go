package errors

import (
	"github.com/gostdlib/base/errors"
)

// The functions below forward to the standard errors functions so callers only import this package.

// New returns a sentinel error with the given text.
func New(text string) error {
	return errors.New(text)
}

// Unwrap returns the error err wraps, or nil.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Is reports whether target is in err's chain. The sentinel errors of this module are found
// through any Error returned by E or Schema.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain assignable to target and sets target to it.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join returns an error wrapping every non-nil error in errs.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
