// Bookscout - Personalized Book Recommendations with Recombee
// Copyright 2026 Andrei Catrinei (acatrinei)
// SPDX-License-Identifier: MIT
// https://github.com/acatrinei/bookscout

/*
Package recombee is a thin client for the Recombee recommendation API.

There is no algorithmic core on this side: ranking, similarity and storage all
live in the hosted service. This package owns request construction, HMAC-SHA1
request signing, transient-failure retry with exponential backoff, and the
error classification every caller relies on.

Error classification is decided exactly once, at the transport boundary:

  - Conflict (409): entity already exists, absorbed by creation flows
  - NotFound (404): valid absence signal for profile lookups
  - Transient: the service did not respond (timeout, refused, reset); retried
  - Other: validation, auth, rate limit and the rest; surfaced immediately

Callers branch on IsConflict / IsNotFound / IsTransient instead of parsing
status codes or error strings themselves.

Usage:

	client := recombee.New(cfg.Recombee)
	raw, err := client.SendWithRetry(ctx, recombee.GetItemValues("book-42"))
	if err != nil {
	    // classified error
	}
	values, err := recombee.DecodeValues(raw)

Thread safety: the client is immutable after New and safe for concurrent use.
*/
package recombee

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // HMAC-SHA1 is the signing scheme the Recombee API mandates
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/acatrinei/bookscout/internal/config"
	"github.com/acatrinei/bookscout/internal/logging"
	"github.com/acatrinei/bookscout/internal/metrics"
)

// maxErrorBodySize limits how much of an error response body is read for
// diagnostics, preventing unbounded allocation on large error payloads.
const maxErrorBodySize = 16 * 1024 // 16KB

// regionBaseURIs maps Recombee region identifiers to their API endpoints.
var regionBaseURIs = map[string]string{
	"eu-west": "https://rapi-eu-west.recombee.com",
	"us-west": "https://rapi-us-west.recombee.com",
	"ap-se":   "https://rapi-ap-se.recombee.com",
	"ca-east": "https://rapi-ca-east.recombee.com",
}

// Sender executes one Recombee operation, retrying transient failures.
// Implemented by Client for production use and by mocks in tests.
type Sender interface {
	SendWithRetry(ctx context.Context, req Request) (json.RawMessage, error)
}

// Client communicates with the Recombee REST API.
//
// Every request is signed with HMAC-SHA1 over its full path and query string
// using the database's private token, per the Recombee secure API scheme.
//
// Retry policy: transient failures (the service did not respond) are retried
// up to MaxAttempts times with exponential backoff starting at RetryBaseDelay
// and doubling per attempt. Status-coded responses are never retried. The
// backoff wait is cancellable through the request context.
type Client struct {
	databaseID     string
	token          []byte
	baseURI        string
	httpClient     *http.Client
	maxAttempts    int
	retryBaseDelay time.Duration

	// now is stubbed in tests to produce fixed signing timestamps.
	now func() time.Time
}

// New creates a Recombee client from configuration. The regional endpoint is
// derived from cfg.Region unless cfg.BaseURI overrides it.
func New(cfg config.RecombeeConfig) *Client {
	baseURI := cfg.BaseURI
	if baseURI == "" {
		baseURI = regionBaseURIs[cfg.Region]
	}
	if baseURI == "" {
		baseURI = regionBaseURIs["eu-west"]
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &Client{
		databaseID: cfg.DatabaseID,
		token:      []byte(cfg.APIToken),
		baseURI:    baseURI,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		maxAttempts:    maxAttempts,
		retryBaseDelay: cfg.RetryBaseDelay,
		now:            time.Now,
	}
}

// SendWithRetry executes req, retrying transient failures with exponential
// backoff. On success it returns the raw JSON response body. The first
// non-transient failure is returned immediately without consuming the
// remaining attempts; exhausting all attempts returns the last transient
// error. Cancelling ctx aborts the sequence between attempts and during
// backoff waits.
func (c *Client) SendWithRetry(ctx context.Context, req Request) (json.RawMessage, error) {
	timer := time.Now()
	defer func() {
		metrics.RecombeeRequestDuration.WithLabelValues(req.Operation).Observe(time.Since(timer).Seconds())
	}()

	var lastErr error

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := c.send(ctx, req)
		if err == nil {
			metrics.RecombeeRequestsTotal.WithLabelValues(req.Operation, "ok").Inc()
			return raw, nil
		}

		if !IsTransient(err) {
			metrics.RecombeeRequestsTotal.WithLabelValues(req.Operation, "error").Inc()
			return nil, err
		}

		lastErr = err
		if attempt == c.maxAttempts-1 {
			break
		}

		// Exponential backoff: base, 2*base, 4*base, ...
		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		metrics.RecombeeRetriesTotal.WithLabelValues(req.Operation).Inc()
		logging.Warn().
			Str("operation", req.Operation).
			Int("attempt", attempt+1).
			Dur("backoff", delay).
			Err(err).
			Msg("transient failure, retrying")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	metrics.RecombeeRequestsTotal.WithLabelValues(req.Operation, "transient").Inc()
	return nil, lastErr
}

// send performs a single attempt and classifies its failure.
func (c *Client) send(ctx context.Context, req Request) (json.RawMessage, error) {
	reqURL := c.baseURI + c.signPath(req)

	var body io.Reader = http.NoBody
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request body: %w", req.Operation, err)
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", req.Operation, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Preserve context cancellation so callers see their own deadline,
		// not a retryable transport failure.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &TransportError{Operation: req.Operation, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
			Operation:  req.Operation,
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Operation: req.Operation, Err: err}
	}
	return raw, nil
}

// signPath builds the database-qualified request path with query parameters,
// signing timestamp and HMAC-SHA1 signature appended.
func (c *Client) signPath(req Request) string {
	params := url.Values{}
	for k, v := range req.Params {
		params.Set(k, v)
	}
	params.Set("hmac_timestamp", strconv.FormatInt(c.now().Unix(), 10))

	path := fmt.Sprintf("/%s%s?%s", c.databaseID, req.Path, params.Encode())

	mac := hmac.New(sha1.New, c.token)
	mac.Write([]byte(path))

	return path + "&hmac_sign=" + hex.EncodeToString(mac.Sum(nil))
}

// readErrorMessage extracts a human-readable message from an error response.
// Recombee error bodies are JSON objects with a message field; anything else
// is returned verbatim, truncated to maxErrorBodySize.
func readErrorMessage(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil || len(body) == 0 {
		return ""
	}

	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return string(bytes.TrimSpace(body))
}
