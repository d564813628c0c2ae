package graphql

import (
	"errors"
	"fmt"
	"strings"
)

// Typed errors for GraphQL transport failures.
// These allow callers to use errors.Is() instead of matching on messages.
var (
	// ErrUnauthorized indicates the backend rejected the credential (HTTP 401/403)
	ErrUnauthorized = errors.New("unauthorized")

	// ErrBadRequest indicates the backend rejected the request as malformed (HTTP 400)
	ErrBadRequest = errors.New("bad request")

	// ErrRateLimited indicates the backend throttled the client (HTTP 429)
	ErrRateLimited = errors.New("rate limited")

	// ErrServer indicates a backend failure (HTTP 5xx or unexpected status)
	ErrServer = errors.New("server error")
)

// ResponseError carries the errors array of a GraphQL response
type ResponseError struct {
	Operation string
	Messages  []string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s: graphql errors: %s", e.Operation, strings.Join(e.Messages, "; "))
}

// IsResponseError checks if an error carries GraphQL response errors
func IsResponseError(err error) bool {
	var re *ResponseError
	return errors.As(err, &re)
}

// IsAuthError returns true if re-authenticating might help
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// wrapStatus maps an HTTP status to a typed error
func wrapStatus(status int, operation, body string) error {
	switch {
	case status == 400:
		return fmt.Errorf("%s: %w: %s", operation, ErrBadRequest, body)
	case status == 401 || status == 403:
		return fmt.Errorf("%s: %w: %s", operation, ErrUnauthorized, body)
	case status == 429:
		return fmt.Errorf("%s: %w", operation, ErrRateLimited)
	default:
		return fmt.Errorf("%s: %w: status %d: %s", operation, ErrServer, status, body)
	}
}
