package hosting

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zorgsites/internal/upstream"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(srv.Client(), srv.URL, "host-token", "prj_123", logger)
}

func TestAttach(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/projects/prj_123/domains", r.URL.Path)
		require.Equal(t, "Bearer host-token", r.Header.Get("Authorization"))

		var body struct {
			Name string `json:"name"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "mijnzorg.nl", body.Name)

		_, _ = w.Write([]byte(`{"name":"mijnzorg.nl","verified":false}`))
	})

	result, err := client.Attach(t.Context(), "mijnzorg.nl")
	require.NoError(t, err)
	assert.True(t, result.Attached)
	assert.False(t, result.Verified, "verification is asynchronous and starts false")
}

// Attaching a domain that is already on the project must succeed both times.
func TestAttach_AlreadyInUseIsSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":{"code":"domain_already_in_use","message":"Domain already in use by this project"}}`))
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"name":"mijnzorg.nl","verified":true}`))
		}
	})

	for range 2 {
		result, err := client.Attach(t.Context(), "mijnzorg.nl")
		require.NoError(t, err)
		assert.True(t, result.Attached)
		assert.True(t, result.Verified)
	}
}

func TestAttach_OtherConflictFails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":{"code":"domain_taken","message":"Domain in use by another project"}}`))
	})

	_, err := client.Attach(t.Context(), "mijnzorg.nl")
	require.Error(t, err)
	assert.Equal(t, upstream.CategoryConflict, upstream.CategoryOf(err))
}

func TestVerified(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/projects/prj_123/domains/mijnzorg.nl", r.URL.Path)
		_, _ = w.Write([]byte(`{"name":"mijnzorg.nl","verified":true}`))
	})

	verified, err := client.Verified(t.Context(), "mijnzorg.nl")
	require.NoError(t, err)
	assert.True(t, verified)
}

func TestVerified_NotAttached(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Verified(t.Context(), "mijnzorg.nl")
	require.Error(t, err)
	assert.Equal(t, upstream.CategoryNotFound, upstream.CategoryOf(err))
}

func TestDetach(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/projects/prj_123/domains/mijnzorg.nl", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	gone, err := client.Detach(t.Context(), "mijnzorg.nl")
	require.NoError(t, err)
	assert.True(t, gone)
}

// Detaching a domain the platform never heard of is success: already gone.
func TestDetach_NotFoundIsSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	gone, err := client.Detach(t.Context(), "onbekend.nl")
	require.NoError(t, err)
	assert.True(t, gone)
}

func TestDetach_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Detach(t.Context(), "mijnzorg.nl")
	require.Error(t, err)
	assert.True(t, upstream.IsRetryable(err))
}
