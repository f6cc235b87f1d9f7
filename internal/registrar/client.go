// Package registrar implements the authenticated client for the third-party
// domain registrar: signed-request auth with token caching, availability
// checks, registration, and DNS entry upserts.
package registrar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

// AvailabilityStatus is the per-domain status the registrar reports.
type AvailabilityStatus string

const (
	StatusFree    AvailabilityStatus = "free"
	StatusNotFree AvailabilityStatus = "notfree"
	StatusUnknown AvailabilityStatus = "unknown"
)

// Available reports whether the status means the domain can be registered.
func (s AvailabilityStatus) Available() bool {
	return s == StatusFree
}

// DNSEntry is one record in a domain's zone at the registrar.
type DNSEntry struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
	Expire  int    `json:"expire"`
}

// Client issues authenticated registrar calls through the CredentialBroker.
type Client struct {
	httpClient *http.Client
	baseURL    string
	broker     *CredentialBroker
	logger     *slog.Logger
}

// NewClient constructs a registrar client. The http.Client should carry the
// registrar call timeout.
func NewClient(httpClient *http.Client, baseURL string, broker *CredentialBroker, logger *slog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		broker:     broker,
		logger:     logger,
	}
}

type checkRequest struct {
	Domains []string `json:"domains"`
}

type checkResponse struct {
	Results []struct {
		Domain string `json:"domain"`
		Status string `json:"status"`
	} `json:"results"`
}

// CheckDomains checks availability for a batch of candidate names in a single
// registrar call. The result is keyed by the names as given.
func (c *Client) CheckDomains(ctx context.Context, domains []string) (map[string]AvailabilityStatus, error) {
	if len(domains) == 0 {
		return map[string]AvailabilityStatus{}, nil
	}

	var parsed checkResponse
	if err := c.do(ctx, http.MethodPost, "/domains/check", checkRequest{Domains: domains}, &parsed); err != nil {
		return nil, err
	}

	results := make(map[string]AvailabilityStatus, len(domains))
	for _, r := range parsed.Results {
		results[r.Domain] = AvailabilityStatus(r.Status)
	}
	// Names the registrar did not echo back come through as unknown rather
	// than missing keys.
	for _, d := range domains {
		if _, ok := results[d]; !ok {
			results[d] = StatusUnknown
		}
	}
	return results, nil
}

// CheckDomain checks a single name.
func (c *Client) CheckDomain(ctx context.Context, domain string) (AvailabilityStatus, error) {
	results, err := c.CheckDomains(ctx, []string{domain})
	if err != nil {
		return StatusUnknown, err
	}
	return results[domain], nil
}

// Register purchases the domain. This spends real money: callers re-check
// availability first and never retry blindly, since no idempotency key is
// sent and a retried call could double-purchase.
func (c *Client) Register(ctx context.Context, domain string) error {
	path := fmt.Sprintf("/domains/%s/register", url.PathEscape(domain))
	return c.do(ctx, http.MethodPost, path, struct{}{}, nil)
}

// UpsertDNS replaces the DNS entries for a registered domain.
func (c *Client) UpsertDNS(ctx context.Context, domain string, entries []DNSEntry) error {
	path := fmt.Sprintf("/domains/%s/dns", url.PathEscape(domain))
	body := struct {
		DNSEntries []DNSEntry `json:"dnsEntries"`
	}{DNSEntries: entries}
	return c.do(ctx, http.MethodPut, path, body, nil)
}

// do issues an authenticated JSON call. On a 401 it force-refreshes the token
// once and retries: the cached token may have been revoked upstream.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal registrar request: %w", err)
	}

	resp, err := c.send(ctx, method, path, payload)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		c.broker.Invalidate()
		resp, err = c.send(ctx, method, path, payload)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.Warn("registrar call failed",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"body", string(detail),
		)
		return errorFromResponse(resp.StatusCode, detail)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errorBadData(err)
		}
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	token, err := c.broker.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build registrar request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	return resp, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 2048))
	_ = resp.Body.Close()
}
