// Package executor applies approved administrative actions against the
// external management API. Actions execute in order with per-action retry
// and failure isolation: one action failing never aborts its siblings.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Response is the management API's answer to a single action call.
type Response struct {
	StatusCode int
	Message    string
}

// Client invokes the external management API. Implemented by httpClient;
// test doubles implement it directly.
type Client interface {
	Do(ctx context.Context, tenantID, endpoint, verb string, body []byte) (Response, error)
}

// ErrTransient marks a failure worth retrying: rate limiting or upstream
// availability. Everything else is recorded as a failed result immediately.
var ErrTransient = errors.New("management api transient failure")

type httpClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates a management API client with a bounded per-call timeout.
func NewClient(baseURL, token string, timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &httpClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *httpClient) Do(ctx context.Context, tenantID, endpoint, verb string, body []byte) (Response, error) {
	url := c.baseURL + "/" + strings.TrimPrefix(endpoint, "/")

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, verb, url, reader)
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", tenantID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Response{}, fmt.Errorf("%w: %w", ErrTransient, err)
		}
		return Response{}, fmt.Errorf("call management api: %w", err)
	}
	defer resp.Body.Close()

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	response := Response{
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(msg)),
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return response, fmt.Errorf("%w: status %d", ErrTransient, resp.StatusCode)
	}

	if resp.StatusCode >= 400 {
		return response, fmt.Errorf("management api rejected action: status %d", resp.StatusCode)
	}

	return response, nil
}

// IsTransient reports whether an error is a retryable management API failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
