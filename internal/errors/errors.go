package errors

import (
	"errors"
	"fmt"
)

// Common error types for the dashboard client
var (
	// Session errors
	ErrNoSession      = errors.New("no stored session")
	ErrSessionInvalid = errors.New("session invalid")

	// Token errors
	ErrEmptyToken    = errors.New("empty token")
	ErrMalformed     = errors.New("malformed token")
	ErrMissingExpiry = errors.New("token missing exp claim")

	// Transport errors
	ErrServerUnavailable = errors.New("server unavailable")
	ErrUnexpectedStatus  = errors.New("unexpected status")

	// Shell errors
	ErrAlreadyBooted    = errors.New("shell already booted")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidSection   = errors.New("invalid section")

	// View errors
	ErrNoReport         = errors.New("no generated report")
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrNameRequired     = errors.New("name required")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given non-nil errors
func Join(errs ...error) error {
	return errors.Join(errs...)
}
