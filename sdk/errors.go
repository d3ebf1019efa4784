package sdk

import (
	"errors"
	"fmt"
	"net/http"
)

// Common SDK errors that clients can check with errors.Is.
var (
	// ErrInvalidConfig indicates the client configuration is invalid or incomplete.
	ErrInvalidConfig = errors.New("invalid client configuration")

	// ErrNoBaseURLs indicates no catalog URLs were provided.
	ErrNoBaseURLs = errors.New("no base URLs provided")

	// ErrAllInstancesFailed indicates every catalog instance was unreachable.
	ErrAllInstancesFailed = errors.New("all catalog instances failed")

	// ErrRateLimited indicates the request was rate limited by the server.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrServiceUnavailable indicates the server could not reach its store.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrInvalidRecord indicates the server holds a record it cannot map.
	ErrInvalidRecord = errors.New("server returned invalid record")

	// ErrServerError indicates an internal server error occurred.
	ErrServerError = errors.New("internal server error")

	// ErrBadRequest indicates the request was malformed or invalid.
	ErrBadRequest = errors.New("bad request")
)

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("catalog API error %d", e.StatusCode)
	if e.Code != "" {
		msg += " (" + e.Code + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.RequestID != "" {
		msg += " [request " + e.RequestID + "]"
	}
	return msg
}

// Unwrap maps the response onto one of the SDK sentinels.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.StatusCode == http.StatusServiceUnavailable:
		return ErrServiceUnavailable
	case e.Code == "invalid_record":
		return ErrInvalidRecord
	case e.StatusCode >= 500:
		return ErrServerError
	case e.StatusCode >= 400:
		return ErrBadRequest
	}
	return nil
}
