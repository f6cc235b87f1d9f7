package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"zorgsites/pkg/requestcontext"
)

// RequestID assigns every request an ID for log correlation, honoring an
// inbound X-Request-ID from a trusted proxy when present.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
