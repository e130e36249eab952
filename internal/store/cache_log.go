// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// cache_log.go records every cache fallback event in the database. The table
// acts as a durable outbox next to the Kafka topic: if the broker is down
// too, an operator can still see which categories need their cache repaired.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// FallbackLogStore handles cache fallback log operations.
type FallbackLogStore struct {
	db *sql.DB
}

// NewFallbackLogStore creates a new FallbackLogStore.
func NewFallbackLogStore(db *sql.DB) *FallbackLogStore {
	return &FallbackLogStore{db: db}
}

// Record stores one fallback event. Failures are logged, never returned.
func (s *FallbackLogStore) Record(ctx context.Context, eventID uuid.UUID, operation string, categoryID int) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO category_cache_fallback_log (category_id, operation, event_id)
		VALUES ($1, $2, $3)
	`, categoryID, operation, eventID)
	if err != nil {
		slog.Warn("failed to record cache fallback",
			"category_id", categoryID,
			"operation", operation,
			"event_id", eventID,
			"error", err,
		)
		return
	}
	slog.Debug("cache fallback recorded",
		"category_id", categoryID,
		"operation", operation,
		"event_id", eventID,
	)
}

// RecentEntries returns the most recent fallback events, newest first.
func (s *FallbackLogStore) RecentEntries(ctx context.Context, limit int) ([]FallbackLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category_id, operation, event_id, recorded_at
		FROM category_cache_fallback_log
		ORDER BY recorded_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query fallback log: %w", err)
	}
	defer rows.Close()

	var entries []FallbackLogEntry
	for rows.Next() {
		var e FallbackLogEntry
		if err := rows.Scan(&e.ID, &e.CategoryID, &e.Operation, &e.EventID, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan fallback log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// FallbackLogEntry is a single recorded fallback event.
type FallbackLogEntry struct {
	ID         int64
	CategoryID int
	Operation  string
	EventID    uuid.UUID
	RecordedAt time.Time
}
