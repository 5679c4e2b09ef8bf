package prisma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prismanotify/prismanotify/internal/version"
	"github.com/rs/zerolog"
)

const (
	authHeader   = "x-redlock-auth"
	contentType  = "application/json; charset=UTF-8"
	maxErrorBody = 4 << 10
)

// Client sends JSON requests to one Prisma Cloud API endpoint
type Client struct {
	endpoint string
	http     *http.Client
	logger   zerolog.Logger
}

// NewClient creates a client for endpoint (e.g. https://api.prismacloud.io).
// A zero timeout leaves requests unbounded.
func NewClient(endpoint string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With().Str("component", "prisma-client").Logger(),
	}
}

// Endpoint returns the base URL requests are sent to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// do sends a single request. A non-nil body is JSON encoded; a non-nil out
// receives the decoded body of a 2xx response. Transport failures come back as
// *TransportError and non-2xx responses as *StatusError.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, token Token, body, out any) error {
	target := c.endpoint + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentType)
	req.Header.Set("User-Agent", version.UserAgent())
	if token != "" {
		req.Header.Set(authHeader, string(token))
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("API request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}
