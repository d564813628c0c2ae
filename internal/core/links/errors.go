package links

import (
	"errors"
	"fmt"
)

var (
	// ErrNotCached indicates no FeedResult is materialized for the requested key
	ErrNotCached = errors.New("feed result not cached")

	// ErrLinkNotFound indicates the link is outside the materialized window
	ErrLinkNotFound = errors.New("link not found in cached feed")

	// ErrMalformedPayload indicates a query or push payload is missing required fields
	ErrMalformedPayload = errors.New("malformed payload")
)

// IsSyncMiss reports whether err is a synchronization miss that should be tolerated silently
func IsSyncMiss(err error) bool {
	return errors.Is(err, ErrNotCached) || errors.Is(err, ErrLinkNotFound)
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
