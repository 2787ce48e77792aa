// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound   = errors.New("not found")
	ErrCacheWrite = errors.New("label cache write failed")

	// Trip log errors.
	ErrEmptyLog = errors.New("no usable trips in log")

	// Lookup provider errors.
	ErrProviderUnavailable = errors.New("lookup provider unavailable")
	ErrProviderRateLimited = errors.New("lookup provider rate limited")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsProviderFailure reports whether an error is a recoverable lookup
// provider failure. These fall through the resolver tier chain and must
// never abort a run.
func IsProviderFailure(err error) bool {
	return errors.Is(err, ErrProviderUnavailable) || errors.Is(err, ErrProviderRateLimited)
}
