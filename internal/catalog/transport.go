// Hades - Personalized Media Recommendation Backend
// Copyright 2026 Hades Media
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hades-media/hades

// Package catalog implements the external catalog provider clients: a
// TMDB-style client for movies and TV and a RAWG-style client for games.
// Each client carries a client-side rate limiter and a circuit breaker; the
// Mux routes by media type and presents the engine-facing provider
// interface.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/hades-media/hades/internal/logging"
	"github.com/hades-media/hades/internal/metrics"
)

// maxErrorBodySize bounds how much of a failed response body is read for
// error reporting.
const maxErrorBodySize = 8 * 1024

// Options configures one provider client.
type Options struct {
	// BaseURL is the provider API root, without a trailing slash.
	BaseURL string

	// APIKey is sent as the provider's key query parameter.
	APIKey string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// RateLimit is the client-side request budget per second. Zero disables
	// the limiter.
	RateLimit float64
}

// transport performs guarded GET requests: limiter first, then the circuit
// breaker around the HTTP call. Safe for concurrent use.
type transport struct {
	name    string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[]byte]
}

func newTransport(name string, opts Options) *transport {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), int(opts.RateLimit)+1)
	}

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("provider", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("catalog circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	})

	return &transport{
		name:    name,
		baseURL: opts.BaseURL,
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
		cb:      cb,
	}
}

// get fetches baseURL+path with the query and returns the response body.
// Non-2xx statuses are errors.
func (t *transport) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s: rate limiter: %w", t.name, err)
		}
	}

	reqURL := t.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	body, err := t.cb.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := t.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet)
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		outcome := "failure"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "rejected"
		}
		metrics.CatalogRequests.WithLabelValues(t.name, outcome).Inc()
		return nil, fmt.Errorf("%s %s: %w", t.name, path, err)
	}
	metrics.CatalogRequests.WithLabelValues(t.name, "success").Inc()
	return body, nil
}

// breakerStateValue maps a breaker state to its gauge encoding.
func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}
