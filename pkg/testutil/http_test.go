package testutil

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadBody_DoesNotConsumeRecorder(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"conflict","error_description":"domain is no longer available"}`))
	})

	rr := DoRequest(handler, NewJSONRequest(t, http.MethodPost, "/domains/register", nil))

	// Stacked assertions read the same response twice.
	AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
	resp := UnmarshalErrorResponse(t, rr)
	assert.Equal(t, "domain is no longer available", resp["error_description"])
}
