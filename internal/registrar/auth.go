package registrar

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"zorgsites/internal/upstream"
)

const (
	// Registrar tokens are valid for 30 minutes; refresh 5 minutes early so
	// in-flight requests never race the expiry.
	tokenLifetime     = 30 * time.Minute
	tokenRefreshSlack = 5 * time.Minute
)

// authRequest is the canonical auth body. Field order matters: the marshaled
// bytes are signed and must match what goes over the wire.
type authRequest struct {
	Login          string `json:"login"`
	Nonce          string `json:"nonce"`
	ReadOnly       bool   `json:"read_only"`
	ExpirationTime string `json:"expiration_time"`
	Label          string `json:"label"`
	GlobalKey      bool   `json:"global_key"`
}

type authResponse struct {
	Token string `json:"token"`
}

// CredentialBroker obtains and caches short-lived bearer tokens from the
// registrar using signed auth requests.
//
// The cache is a best-effort optimization: in a single shared process it
// avoids redundant auth calls, and a fresh process simply authenticates
// again. Correctness never depends on the cache surviving.
type CredentialBroker struct {
	httpClient *http.Client
	baseURL    string
	login      string
	label      string
	signer     *Signer
	logger     *slog.Logger

	group singleflight.Group

	mu      sync.RWMutex
	token   string
	expires time.Time
}

// NewCredentialBroker constructs a broker. The http.Client should carry the
// registrar call timeout.
func NewCredentialBroker(httpClient *http.Client, baseURL, login, label string, signer *Signer, logger *slog.Logger) *CredentialBroker {
	return &CredentialBroker{
		httpClient: httpClient,
		baseURL:    baseURL,
		login:      login,
		label:      label,
		signer:     signer,
		logger:     logger,
	}
}

// Token returns a valid bearer token, refreshing it when the cached one is
// missing or within the refresh slack of expiry. Concurrent callers on a cold
// cache share a single auth call.
func (b *CredentialBroker) Token(ctx context.Context) (string, error) {
	if token, ok := b.cached(); ok {
		return token, nil
	}

	result, err, _ := b.group.Do("token", func() (any, error) {
		// Another caller may have refreshed while we waited on the group.
		if token, ok := b.cached(); ok {
			return token, nil
		}
		return b.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// Invalidate drops the cached token so the next call re-authenticates. Used
// when the registrar rejects a token before its expected expiry.
func (b *CredentialBroker) Invalidate() {
	b.mu.Lock()
	b.token = ""
	b.expires = time.Time{}
	b.mu.Unlock()
}

func (b *CredentialBroker) cached() (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.token == "" || time.Now().After(b.expires.Add(-tokenRefreshSlack)) {
		return "", false
	}
	return b.token, true
}

func (b *CredentialBroker) refresh(ctx context.Context) (string, error) {
	nonce, err := newNonce()
	if err != nil {
		return "", upstream.New(upstream.CategoryAuthentication, "registrar", "failed to generate nonce", err)
	}

	body, err := json.Marshal(authRequest{
		Login:          b.login,
		Nonce:          nonce,
		ReadOnly:       false,
		ExpirationTime: "30 minutes",
		Label:          fmt.Sprintf("%s-%d", b.label, time.Now().Unix()),
		GlobalKey:      true,
	})
	if err != nil {
		return "", upstream.New(upstream.CategoryAuthentication, "registrar", "failed to build auth request", err)
	}

	signature, err := b.signer.Sign(body)
	if err != nil {
		return "", upstream.New(upstream.CategoryAuthentication, "registrar", "failed to sign auth request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/auth", bytes.NewReader(body))
	if err != nil {
		return "", upstream.New(upstream.CategoryAuthentication, "registrar", "failed to build auth request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Signature", signature)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", upstream.FromTransport("registrar", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// The response body may carry credentials-related detail; log it,
		// never surface it.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		b.logger.Error("registrar auth rejected",
			"status", resp.StatusCode,
			"body", string(detail),
		)
		return "", upstream.New(upstream.CategoryAuthentication, "registrar",
			fmt.Sprintf("auth rejected with status %d", resp.StatusCode), nil)
	}

	var parsed authResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", upstream.New(upstream.CategoryBadData, "registrar", "malformed auth response", err)
	}
	if parsed.Token == "" {
		return "", upstream.New(upstream.CategoryBadData, "registrar", "auth response missing token", nil)
	}

	b.mu.Lock()
	b.token = parsed.Token
	b.expires = time.Now().Add(tokenLifetime)
	b.mu.Unlock()

	b.logger.Debug("registrar token refreshed", "expires_in", tokenLifetime.String())
	return parsed.Token, nil
}

func newNonce() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
