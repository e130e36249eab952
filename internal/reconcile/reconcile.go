// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package reconcile repairs the category cache from fallback events. The
// store is the source of truth: every event is answered by re-reading the
// category, so stale or out-of-order events converge on the current row.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"productcatalog/internal/events"
	"productcatalog/internal/models"
)

// ErrCacheUnavailable is returned when the repair write did not reach the
// cache; the event must be retried.
var ErrCacheUnavailable = errors.New("category cache unavailable")

// Finder reads the current category row.
type Finder interface {
	FindByID(ctx context.Context, id int) (*models.Category, error)
}

// Mirror is the part of the category cache the reconciler writes to.
type Mirror interface {
	Put(ctx context.Context, p models.Projection) bool
	Remove(ctx context.Context, p models.Projection) bool
}

// Reconciler applies fallback events to the cache.
type Reconciler struct {
	store Finder
	cache Mirror
}

// New creates a Reconciler.
func New(store Finder, cache Mirror) *Reconciler {
	return &Reconciler{store: store, cache: cache}
}

// Handle brings the cache entry of ev's category in line with the store.
// Active categories are put, inactive or vanished ones removed.
func (r *Reconciler) Handle(ctx context.Context, ev events.Event) error {
	current, err := r.store.FindByID(ctx, ev.Category.ID)
	if err != nil {
		return fmt.Errorf("load category %d: %w", ev.Category.ID, err)
	}

	var (
		ok     bool
		action string
	)
	switch {
	case current == nil:
		ok, action = r.cache.Remove(ctx, models.ProjectionOf(&ev.Category)), "remove"
	case current.IsActive:
		ok, action = r.cache.Put(ctx, models.ProjectionOf(current)), "put"
	default:
		ok, action = r.cache.Remove(ctx, models.ProjectionOf(current)), "remove"
	}
	if !ok {
		return fmt.Errorf("%s category %d: %w", action, ev.Category.ID, ErrCacheUnavailable)
	}

	slog.Info("category cache repaired",
		"event_id", ev.ID,
		"operation", ev.Operation,
		"category_id", ev.Category.ID,
		"action", action,
	)
	return nil
}

// Resync mirrors every given category into the cache: active ones are put,
// inactive ones removed. It keeps going after a failed write and reports
// the failures at the end.
func (r *Reconciler) Resync(ctx context.Context, categories []models.Category) (ResyncStats, error) {
	var stats ResyncStats
	for i := range categories {
		c := &categories[i]
		p := models.ProjectionOf(c)
		if c.IsActive {
			if r.cache.Put(ctx, p) {
				stats.Put++
				continue
			}
		} else if r.cache.Remove(ctx, p) {
			stats.Removed++
			continue
		}
		stats.Failed++
	}

	if stats.Failed > 0 {
		return stats, fmt.Errorf("resync: %d of %d categories not written: %w", stats.Failed, len(categories), ErrCacheUnavailable)
	}
	return stats, nil
}

// ResyncStats counts the outcome of a Resync.
type ResyncStats struct {
	Put     int
	Removed int
	Failed  int
}
