// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"strings"
	"time"
)

// RootParentID marks a top-level category. A NULL parent in the database or
// a missing "parentid" in JSON decodes to the same value.
const RootParentID = 0

// DateLayout is the timestamp format used in cache projections.
const DateLayout = "2006-01-02 15:04:05"

// Category is the authoritative, store-owned product category.
// Categories are never physically deleted: a delete flips IsActive to false.
type Category struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ParentID    int       `json:"parentid"`
	IsActive    bool      `json:"isactive"`
	CreatedAt   time.Time `json:"createdat"`
	UpdatedAt   time.Time `json:"updatedat"`
}

// IsRoot reports whether the category sits at the top of the tree.
func (c *Category) IsRoot() bool {
	return c.ParentID == RootParentID
}

// Projection is the denormalized, cache-resident copy of a Category.
// Children is computed by the hierarchy builder and never persisted.
type Projection struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	ParentID    int          `json:"parentid"`
	IsActive    bool         `json:"isactive"`
	CreatedAt   string       `json:"createdat"`
	UpdatedAt   string       `json:"updatedat"`
	Children    []Projection `json:"children"`
}

// MarshalJSON renders a nil Children slice as [] so cached snapshots never
// carry "children":null.
func (p Projection) MarshalJSON() ([]byte, error) {
	type plain Projection
	out := plain(p)
	if out.Children == nil {
		out.Children = []Projection{}
	}
	return json.Marshal(out)
}

// ProjectionOf builds the cache projection of a persisted category.
func ProjectionOf(c *Category) Projection {
	return Projection{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ParentID:    c.ParentID,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt.Format(DateLayout),
		UpdatedAt:   c.UpdatedAt.Format(DateLayout),
		Children:    []Projection{},
	}
}

// CategoryRequest is the body accepted by create and update.
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"required,max=2000"`
	ParentID    *int   `json:"parentid" validate:"omitempty,min=0"`
}

// Normalize trims the free-text fields in place.
func (r *CategoryRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
}

// Parent returns the requested parent id, defaulting to the root.
func (r *CategoryRequest) Parent() int {
	if r.ParentID == nil {
		return RootParentID
	}
	return *r.ParentID
}

// NormalizeName lower-cases a category name for storage and comparison.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// HierarchyResult is what the cache manager reports for tree reads. OK is
// false only on cache infrastructure errors; an empty Categories with OK set
// means nothing matched.
type HierarchyResult struct {
	OK         bool         `json:"status"`
	Message    string       `json:"message"`
	Categories []Projection `json:"category"`
}
