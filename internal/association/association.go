// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package association answers whether a category can be deleted without
// orphaning products. The product service owns that knowledge; this package
// wraps the remote call in a circuit breaker so a failing product service
// does not stall category deletes.
package association

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// Checker reports whether deleting a category is safe.
type Checker interface {
	SafeToDelete(ctx context.Context, categoryID int) (bool, error)
}

// BreakerConfig holds the circuit breaker settings for the remote checker.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the breaker settings used in production.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "product-associations",
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// HTTPChecker asks the product service over HTTP.
type HTTPChecker struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewHTTPChecker creates a checker for the product service at baseURL.
func NewHTTPChecker(baseURL string, timeout time.Duration, cfg BreakerConfig) *HTTPChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		// A caller that went away says nothing about the product service.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &HTTPChecker{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		breaker: breaker,
	}
}

type associationResponse struct {
	Safe bool `json:"safe"`
}

// SafeToDelete calls GET {base}/internal/categories/{id}/associations.
// A 404 means the product service has never seen the category, which is safe.
func (c *HTTPChecker) SafeToDelete(ctx context.Context, categoryID int) (bool, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, categoryID)
	})
	if err != nil {
		return false, fmt.Errorf("association check for category %d: %w", categoryID, err)
	}
	return result.(bool), nil
}

func (c *HTTPChecker) fetch(ctx context.Context, categoryID int) (bool, error) {
	url := c.baseURL + "/internal/categories/" + strconv.Itoa(categoryID) + "/associations"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("association request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("association http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return false, fmt.Errorf("association read body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return true, nil
	default:
		return false, fmt.Errorf("product service error (status %d): %s", resp.StatusCode, string(body))
	}

	var result associationResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return false, fmt.Errorf("association unmarshal: %w", err)
	}
	return result.Safe, nil
}

// State returns the breaker state, for health reporting.
func (c *HTTPChecker) State() gobreaker.State {
	return c.breaker.State()
}

// StaticChecker returns a fixed answer. It is used when no product service is
// configured and in tests.
type StaticChecker struct {
	Safe bool
}

// SafeToDelete returns the configured answer.
func (c StaticChecker) SafeToDelete(context.Context, int) (bool, error) {
	return c.Safe, nil
}
