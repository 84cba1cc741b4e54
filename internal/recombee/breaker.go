// Bookscout - Personalized Book Recommendations with Recombee
// Copyright 2026 Andrei Catrinei (acatrinei)
// SPDX-License-Identifier: MIT
// https://github.com/acatrinei/bookscout

package recombee

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/acatrinei/bookscout/internal/logging"
	"github.com/acatrinei/bookscout/internal/metrics"
)

// BreakerClient wraps a Sender with a circuit breaker so that a dead or
// misconfigured remote service fails fast instead of stalling every user
// action through full retry sequences.
//
// Expected outcomes (conflict, not-found and other status-coded responses)
// count as successes: the service answered, the circuit stays closed. Only
// transport-level failures trip the breaker.
type BreakerClient struct {
	inner Sender
	cb    *gobreaker.CircuitBreaker[json.RawMessage]
	name  string
}

// NewBreakerClient wraps inner with a circuit breaker.
// The breaker opens after a 60% failure rate over at least 5 requests within
// the measurement window and probes recovery after 30 seconds.
func NewBreakerClient(inner Sender) *BreakerClient {
	cbName := "recombee-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},

		// The service responding at all keeps the circuit closed; only
		// connection-level failures count against it.
		IsSuccessful: func(err error) bool {
			return err == nil || !IsTransient(err)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &BreakerClient{inner: inner, cb: cb, name: cbName}
}

// SendWithRetry executes the request through the circuit breaker.
// When the circuit is open the request is rejected immediately as a
// transient failure, so callers classify it the same way as a timeout.
func (b *BreakerClient) SendWithRetry(ctx context.Context, req Request) (json.RawMessage, error) {
	raw, err := b.cb.Execute(func() (json.RawMessage, error) {
		return b.inner.SendWithRetry(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			return nil, &TransportError{Operation: req.Operation, Err: err}
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return raw, nil
}

func stateToString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateOpen:
		return "open"
	case gobreaker.StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}
