// Package upstream normalizes failures from external services (registrar,
// hosting platform) into a closed category set with explicit retryability.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Category defines the normalized failure taxonomy.
type Category string

const (
	// CategoryTimeout indicates the service took too long to respond.
	CategoryTimeout Category = "timeout"

	// CategoryAuthentication indicates credential or signing issues.
	CategoryAuthentication Category = "authentication"

	// CategoryOutage indicates the service is unavailable (network, 5xx).
	CategoryOutage Category = "outage"

	// CategoryBadRequest indicates the service rejected our request (4xx).
	CategoryBadRequest Category = "bad_request"

	// CategoryNotFound indicates the requested resource does not exist.
	CategoryNotFound Category = "not_found"

	// CategoryConflict indicates the resource is already taken or attached.
	CategoryConflict Category = "conflict"

	// CategoryBadData indicates the service returned a malformed response.
	CategoryBadData Category = "bad_data"
)

// Error wraps an external service failure with normalized categorization.
type Error struct {
	Category   Category
	Service    string
	StatusCode int
	Message    string
	Underlying error
	Retryable  bool
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", e.Service, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Service, e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// New creates a normalized upstream error. Timeouts and outages are the only
// retryable categories: everything else will fail the same way again.
func New(category Category, service, message string, underlying error) *Error {
	return &Error{
		Category:   category,
		Service:    service,
		Message:    message,
		Underlying: underlying,
		Retryable:  category == CategoryTimeout || category == CategoryOutage,
	}
}

// FromStatus maps an HTTP response status to an upstream error.
func FromStatus(service string, status int, message string) *Error {
	var category Category
	switch {
	case status == 401 || status == 403:
		category = CategoryAuthentication
	case status == 404 || status == 410:
		category = CategoryNotFound
	case status == 409:
		category = CategoryConflict
	case status >= 500:
		category = CategoryOutage
	default:
		category = CategoryBadRequest
	}
	err := New(category, service, message, nil)
	err.StatusCode = status
	return err
}

// FromTransport maps a transport-level error (network, context) to an
// upstream error.
func FromTransport(service string, err error) *Error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return New(CategoryTimeout, service, "request timed out", err)
	default:
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return New(CategoryTimeout, service, "request timed out", err)
		}
		return New(CategoryOutage, service, "request failed", err)
	}
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Retryable
	}
	return false
}

// CategoryOf extracts the category from an error, defaulting to outage for
// errors outside the taxonomy.
func CategoryOf(err error) Category {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Category
	}
	return CategoryOutage
}
