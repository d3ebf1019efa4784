package models

import (
	"errors"
	"fmt"
)

// Common error types used throughout the catalog.
// These errors provide semantic meaning and enable consistent error handling
// across the API, service, and store layers. Callers match them with errors.Is.

var (
	// ErrSchemaViolation indicates a stored document is missing a required
	// top-level field (id or resourceType) or carries it with the wrong type.
	// HTTP equivalent: 500 Internal Server Error (strict record policy)
	ErrSchemaViolation = errors.New("document violates resource schema")

	// ErrTypeResolution indicates a resource payload carries neither or both of
	// the storageType/schedulerType markers.
	// HTTP equivalent: 500 Internal Server Error (strict record policy)
	ErrTypeResolution = errors.New("resource payload matches no single variant")

	// ErrStoreUnavailable indicates the document store could not be reached,
	// timed out, or the lookup was cancelled.
	// HTTP equivalent: 503 Service Unavailable
	ErrStoreUnavailable = errors.New("document store unavailable")

	// ErrInvalidRequest indicates the request parameters could not be parsed.
	// HTTP equivalent: 400 Bad Request
	ErrInvalidRequest = errors.New("invalid request")

	// ErrRateLimitExceeded indicates too many requests from this client.
	// HTTP equivalent: 429 Too Many Requests
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrInternalError indicates an unexpected server-side error.
	// HTTP equivalent: 500 Internal Server Error
	ErrInternalError = errors.New("internal server error")
)

// RecordError reports a single stored document that could not be mapped to a
// Resource. It unwraps to ErrSchemaViolation or ErrTypeResolution.
type RecordError struct {
	// Index is the position of the document in the store result.
	Index int

	// ID is the document's id, empty when the id itself is missing.
	ID string

	// Err is the underlying cause.
	Err error
}

func (e *RecordError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("record %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("record %d (id %q): %v", e.Index, e.ID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// ErrorResponse represents a standardized API error response.
type ErrorResponse struct {
	// Error is the error code (e.g., "service_unavailable", "invalid_record").
	Error string `json:"error"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// RequestID is the unique request ID for tracing.
	RequestID string `json:"request_id,omitempty"`
}
