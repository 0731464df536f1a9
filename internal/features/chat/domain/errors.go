package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMessages is returned when a request carries an empty conversation.
	ErrNoMessages = errors.New("chat: at least one message is required")

	// ErrUpstream marks failures reported by the completion service.
	ErrUpstream = errors.New("chat: upstream completion failure")
)

// FallbackError is returned when the generic fallback stream could not be
// started after the domain-specific path had already failed.
type FallbackError struct {
	Cause    error // failure that triggered the fallback
	Fallback error // failure of the fallback attempt itself
}

func (e *FallbackError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("chat: fallback stream failed: %v (after: %v)", e.Fallback, e.Cause)
}

func (e *FallbackError) Unwrap() []error {
	if e == nil {
		return nil
	}
	return []error{e.Fallback, e.Cause}
}
