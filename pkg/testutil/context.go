package testutil

import (
	"net/http"

	"github.com/google/uuid"

	"zorgsites/pkg/requestcontext"
)

// WithUserID adds an authenticated user ID to the request context, simulating
// what the auth middleware does for authenticated requests.
func WithUserID(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}

// WithRequestID adds a request ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
