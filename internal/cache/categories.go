// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// categories.go mirrors product categories into Valkey. Each category lives
// as one field of the "product:category" hash; the fully assembled tree is
// additionally stored as a JSON array under "json:product:category" so the
// whole hierarchy can be served with a single GET.
//
// The cache is an optimization, never the source of truth. Every method
// reports failure through its return value instead of an error so callers
// can compensate (the lifecycle service publishes a fallback event).
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"productcatalog/internal/hierarchy"
	"productcatalog/internal/models"
)

const (
	// CategoryCollection is the hash holding one snapshot per category id.
	CategoryCollection = "product:category"

	// HierarchySnapshotKey holds the last rendered full hierarchy.
	HierarchySnapshotKey = "json:product:category"

	// rebuildTimeout bounds a shared ReadAll rebuild.
	rebuildTimeout = 10 * time.Second
)

// Messages reported in HierarchyResult.
const (
	msgCacheUnavailable = "Unable to read product categories from the cache at this time."
	msgNoCategories     = "No product category found in the cache."
	msgNoSubtree        = "No product category is associated with the given ID."
	msgSubtreeFetched   = "Product category hierarchy fetched successfully."
	msgRootsFetched     = "Parent product categories fetched successfully."
)

// CategoryCache keeps the cache copy of the category tree consistent with
// the store.
type CategoryCache struct {
	backend Backend
	group   singleflight.Group
}

// NewCategoryCache creates a category cache over the given backend.
func NewCategoryCache(backend Backend) *CategoryCache {
	return &CategoryCache{backend: backend}
}

// Put writes or overwrites the snapshot of one category. The hierarchy
// snapshot is left untouched; it is rebuilt on the next full read.
func (c *CategoryCache) Put(ctx context.Context, p models.Projection) bool {
	data, err := json.Marshal(p)
	if err != nil {
		slog.Warn("category cache encode failed", "id", p.ID, "error", err)
		return false
	}
	if err := c.backend.Put(ctx, CategoryCollection, strconv.Itoa(p.ID), string(data)); err != nil {
		slog.Warn("category cache put failed", "id", p.ID, "error", err)
		return false
	}
	slog.Debug("category cached", "id", p.ID)
	return true
}

// Remove deletes the snapshot of one category.
func (c *CategoryCache) Remove(ctx context.Context, p models.Projection) bool {
	if err := c.backend.Delete(ctx, CategoryCollection, strconv.Itoa(p.ID)); err != nil {
		slog.Warn("category cache remove failed", "id", p.ID, "error", err)
		return false
	}
	slog.Debug("category removed from cache", "id", p.ID)
	return true
}

// ReadAll returns the flat list of cached categories and, as a side effect,
// rebuilds the full hierarchy snapshot from it. Any failure yields an empty
// list. Concurrent callers share a single rebuild, which runs detached from
// any one caller's cancellation and is bounded by rebuildTimeout.
func (c *CategoryCache) ReadAll(ctx context.Context) []models.Projection {
	ch := c.group.DoChan("rebuild", func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rebuildTimeout)
		defer cancel()

		flat, err := c.entries(rctx)
		if err != nil {
			slog.Warn("category cache read failed", "error", err)
			return []models.Projection{}, nil
		}
		if len(flat) == 0 {
			return flat, nil
		}
		c.storeSnapshot(rctx, hierarchy.Build(flat, models.RootParentID))
		return flat, nil
	})

	select {
	case <-ctx.Done():
		return []models.Projection{}
	case res := <-ch:
		return slices.Clone(res.Val.([]models.Projection))
	}
}

// storeSnapshot renders the tree and saves it under HierarchySnapshotKey.
func (c *CategoryCache) storeSnapshot(ctx context.Context, tree []models.Projection) {
	data, err := json.Marshal(tree)
	if err != nil {
		slog.Warn("hierarchy snapshot encode failed", "error", err)
		return
	}
	if err := c.backend.Set(ctx, HierarchySnapshotKey, string(data)); err != nil {
		slog.Warn("hierarchy snapshot store failed", "error", err)
		return
	}
	slog.Debug("hierarchy snapshot refreshed", "nodes", hierarchy.Count(tree))
}

// ReadCachedHierarchy returns the last stored hierarchy snapshot with every
// level sorted by id. A missing, empty or corrupt snapshot yields an empty list.
func (c *CategoryCache) ReadCachedHierarchy(ctx context.Context) []models.Projection {
	raw, err := c.backend.Get(ctx, HierarchySnapshotKey)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			slog.Warn("hierarchy snapshot read failed", "error", err)
		}
		return []models.Projection{}
	}
	if raw == "" {
		return []models.Projection{}
	}

	var tree []models.Projection
	if err := json.Unmarshal([]byte(raw), &tree); err != nil {
		slog.Warn("hierarchy snapshot decode failed", "error", err)
		return []models.Projection{}
	}
	return hierarchy.SortLevels(tree)
}

// BuildSubtree assembles the tree below rootID from the cached categories.
// OK is false only when the cache could not be read.
func (c *CategoryCache) BuildSubtree(ctx context.Context, rootID int) models.HierarchyResult {
	flat, err := c.entries(ctx)
	if err != nil {
		slog.Warn("category cache read failed", "root_id", rootID, "error", err)
		return models.HierarchyResult{OK: false, Message: msgCacheUnavailable, Categories: []models.Projection{}}
	}
	if len(flat) == 0 {
		return models.HierarchyResult{OK: true, Message: msgNoCategories, Categories: []models.Projection{}}
	}

	tree := hierarchy.Build(flat, rootID)
	if len(tree) == 0 {
		return models.HierarchyResult{OK: true, Message: msgNoSubtree, Categories: tree}
	}
	return models.HierarchyResult{OK: true, Message: msgSubtreeFetched, Categories: tree}
}

// BuildRootsOnly returns the top-level categories without descending into
// their children.
func (c *CategoryCache) BuildRootsOnly(ctx context.Context) models.HierarchyResult {
	flat, err := c.entries(ctx)
	if err != nil {
		slog.Warn("category cache read failed", "error", err)
		return models.HierarchyResult{OK: false, Message: msgCacheUnavailable, Categories: []models.Projection{}}
	}

	roots := hierarchy.Roots(flat)
	if len(roots) == 0 {
		return models.HierarchyResult{OK: true, Message: msgNoCategories, Categories: roots}
	}
	return models.HierarchyResult{OK: true, Message: msgRootsFetched, Categories: roots}
}

// entries reads and decodes every snapshot in the collection, ordered by id.
func (c *CategoryCache) entries(ctx context.Context) ([]models.Projection, error) {
	raw, err := c.backend.Entries(ctx, CategoryCollection)
	if err != nil {
		return nil, err
	}

	flat := make([]models.Projection, 0, len(raw))
	for field, value := range raw {
		var p models.Projection
		if err := json.Unmarshal([]byte(value), &p); err != nil {
			return nil, fmt.Errorf("decode category %s: %w", field, err)
		}
		p.Children = []models.Projection{}
		flat = append(flat, p)
	}
	slices.SortFunc(flat, func(a, b models.Projection) int { return a.ID - b.ID })
	return flat, nil
}
