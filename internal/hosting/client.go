// Package hosting implements the client for the hosting platform's project
// domain API: attach, detach and verification status.
package hosting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"zorgsites/internal/upstream"
)

const serviceName = "hosting"

// AttachResult reports the outcome of adding a domain to the project.
// Verification is asynchronous on the platform side: Verified is often false
// immediately after a successful attach.
type AttachResult struct {
	Attached bool
	Verified bool
}

// Client talks to the hosting platform for a single project.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	projectID  string
	logger     *slog.Logger
}

// NewClient constructs a hosting client. The http.Client should carry the
// hosting call timeout.
func NewClient(httpClient *http.Client, baseURL, token, projectID string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      token,
		projectID:  projectID,
		logger:     logger,
	}
}

type domainResponse struct {
	Name     string `json:"name"`
	Verified bool   `json:"verified"`
	Error    struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Attach adds the domain to the project. "Already in use by this project" is
// success: attach is idempotent by contract.
func (c *Client) Attach(ctx context.Context, domain string) (AttachResult, error) {
	body, _ := json.Marshal(struct {
		Name string `json:"name"`
	}{Name: domain})

	path := fmt.Sprintf("/projects/%s/domains", url.PathEscape(c.projectID))
	resp, err := c.send(ctx, http.MethodPost, path, body)
	if err != nil {
		return AttachResult{}, err
	}
	defer resp.Body.Close()

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var parsed domainResponse
		_ = json.Unmarshal(detail, &parsed)
		return AttachResult{Attached: true, Verified: parsed.Verified}, nil
	}

	if alreadyAttached(resp.StatusCode, detail) {
		c.logger.Debug("domain already attached to project", "domain", domain)
		verified, err := c.Verified(ctx, domain)
		if err != nil {
			// The attach itself is fine; report unverified and let the
			// caller poll later.
			return AttachResult{Attached: true, Verified: false}, nil
		}
		return AttachResult{Attached: true, Verified: verified}, nil
	}

	c.logger.Warn("hosting attach failed",
		"domain", domain,
		"status", resp.StatusCode,
		"body", string(detail),
	)
	return AttachResult{}, upstream.FromStatus(serviceName, resp.StatusCode, "failed to attach domain")
}

// Verified reports whether the platform has verified DNS for the domain.
// A domain the platform does not know about reports a not-found error.
func (c *Client) Verified(ctx context.Context, domain string) (bool, error) {
	path := fmt.Sprintf("/projects/%s/domains/%s", url.PathEscape(c.projectID), url.PathEscape(domain))
	resp, err := c.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, upstream.FromStatus(serviceName, resp.StatusCode, "domain not attached")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, upstream.FromStatus(serviceName, resp.StatusCode, "failed to get domain status")
	}

	var parsed domainResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return false, upstream.New(upstream.CategoryBadData, serviceName, "malformed domain status response", err)
	}
	return parsed.Verified, nil
}

// Detach removes the domain from the project. Not-found and gone responses
// are success from the caller's perspective: the domain is already detached.
func (c *Client) Detach(ctx context.Context, domain string) (bool, error) {
	path := fmt.Sprintf("/projects/%s/domains/%s", url.PathEscape(c.projectID), url.PathEscape(domain))
	resp, err := c.send(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 2048))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return true, nil
	default:
		return false, upstream.FromStatus(serviceName, resp.StatusCode, "failed to detach domain")
	}
}

func (c *Client) send(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build hosting request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, upstream.FromTransport(serviceName, err)
	}
	return resp, nil
}

func alreadyAttached(status int, detail []byte) bool {
	if status != http.StatusConflict && status != http.StatusBadRequest {
		return false
	}
	var parsed domainResponse
	if err := json.Unmarshal(detail, &parsed); err != nil {
		return false
	}
	return parsed.Error.Code == "domain_already_in_use" ||
		strings.Contains(strings.ToLower(parsed.Error.Message), "already in use by this project")
}
