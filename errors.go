package pylon

import (
	"errors"

	pylonhttp "github.com/randalmurphal/pylon-go/http"
)

// Configuration errors.
var (
	ErrConfigAPIKeyRequired = errors.New("pylon api key is required")
	ErrConfigBaseURLInvalid = errors.New("pylon base url must start with http:// or https://")
	ErrConfigTimeoutInvalid = errors.New("http timeout must not be negative")
	ErrConfigRetryInvalid   = errors.New("retry settings must not be negative")
)

// Request errors.
var (
	ErrIssueIDRequired         = errors.New("issue id is required")
	ErrAccountIDRequired       = errors.New("account id is required")
	ErrContactIDRequired       = errors.New("contact id is required")
	ErrUserIDRequired          = errors.New("user id is required")
	ErrKnowledgeBaseIDRequired = errors.New("knowledge base id is required")
	ErrArticleIDRequired       = errors.New("article id is required")
	ErrFieldSlugRequired       = errors.New("custom field slug is required")
	ErrEmptyUpdate             = errors.New("update called with no fields")
	ErrEmptyFilter             = errors.New("search called with an empty filter")
)

// Model errors.
var (
	// ErrDetached is returned by entity helper methods on values that were
	// not produced by a client, for example issues decoded from fixtures.
	ErrDetached = errors.New("entity is not attached to a client")
)

// IsNotFound reports whether the error indicates a resource was not found.
func IsNotFound(err error) bool {
	return pylonhttp.IsNotFound(err)
}

// IsUnauthorized reports whether the error indicates authentication failed.
func IsUnauthorized(err error) bool {
	return pylonhttp.IsUnauthorized(err)
}

// IsForbidden reports whether the error indicates permission was denied.
func IsForbidden(err error) bool {
	return pylonhttp.IsForbidden(err)
}

// IsRateLimited reports whether the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return pylonhttp.IsRateLimited(err)
}

// IsValidation reports whether the error indicates the API rejected the
// request payload.
func IsValidation(err error) bool {
	return pylonhttp.IsValidation(err)
}

// IsRetryable reports whether the error is transient and worth retrying.
func IsRetryable(err error) bool {
	return pylonhttp.IsRetryable(err)
}
