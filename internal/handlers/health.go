// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"time"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

// Health reports whether the service and its dependencies are reachable.
type Health struct {
	checks map[string]Check
}

// NewHealth creates a health handler over the named checks.
func NewHealth(checks map[string]Check) *Health {
	return &Health{checks: checks}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// ServeHTTP answers 200 when every check passes and 503 otherwise.
func (h *Health) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok"}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			if resp.Checks == nil {
				resp.Checks = make(map[string]string)
			}
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
