// Package http provides the retrying JSON transport underneath the Pylon client.
package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Sentinel errors for Pylon API failures. Typed errors returned by the
// transport unwrap to one of these, so callers can match with errors.Is.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates an invalid or missing API key.
	ErrUnauthorized = errors.New("authentication failed")

	// ErrForbidden indicates the API key lacks permission for the operation.
	ErrForbidden = errors.New("permission denied")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrValidation indicates the API rejected the request payload.
	ErrValidation = errors.New("request validation failed")

	// ErrServerError indicates a server-side error occurred.
	ErrServerError = errors.New("server error")
)

// APIError represents an error response from the Pylon API.
type APIError struct {
	// StatusCode is the HTTP status code returned.
	StatusCode int

	// Message is the error message from the API.
	Message string

	// Endpoint is the API endpoint that was called.
	Endpoint string

	// RequestID is the x-request-id header value (if available).
	RequestID string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("pylon API error (%d) at %s [%s]: %s",
			e.StatusCode, e.Endpoint, e.RequestID, e.Message)
	}
	return fmt.Sprintf("pylon API error (%d) at %s: %s",
		e.StatusCode, e.Endpoint, e.Message)
}

// Unwrap returns the underlying sentinel error based on status code.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrValidation
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		if e.StatusCode >= 500 {
			return ErrServerError
		}
		return nil
	}
}

// RateLimitError represents a 429 response from the Pylon API.
type RateLimitError struct {
	// RetryAfter is how long to wait before retrying, parsed from the
	// Retry-After header. Zero when the API did not provide a hint.
	RetryAfter time.Duration

	// Endpoint is the API endpoint that was called.
	Endpoint string

	// RequestID is the x-request-id header value (if available).
	RequestID string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("pylon rate limit exceeded at %s, retry after %s", e.Endpoint, e.RetryAfter)
	}
	return fmt.Sprintf("pylon rate limit exceeded at %s", e.Endpoint)
}

// Unwrap returns ErrRateLimited.
func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// ValidationError represents a 400 or 422 response from the Pylon API.
type ValidationError struct {
	// StatusCode is the HTTP status code returned (400 or 422).
	StatusCode int

	// Message is the error message from the API.
	Message string

	// Errors lists per-field validation failures when the API provides them.
	Errors []string

	// Endpoint is the API endpoint that was called.
	Endpoint string

	// RequestID is the x-request-id header value (if available).
	RequestID string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("pylon validation error (%d) at %s: %s (%s)",
			e.StatusCode, e.Endpoint, e.Message, e.Errors[0])
	}
	return fmt.Sprintf("pylon validation error (%d) at %s: %s",
		e.StatusCode, e.Endpoint, e.Message)
}

// Unwrap returns ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// IsNotFound reports whether the error indicates a resource was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized reports whether the error indicates authentication failed.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsForbidden reports whether the error indicates permission was denied.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsRateLimited reports whether the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsValidation reports whether the error indicates a rejected request payload.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsRetryable reports whether the error is transient and should be retried.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServerError) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		// 5xx errors are retryable
		return apiErr.StatusCode >= 500 && apiErr.StatusCode < 600
	}

	return false
}
