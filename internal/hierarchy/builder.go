// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package hierarchy assembles flat category projections into a parent/child
// tree. The tree is rebuilt from scratch on every call; nodes are copies, so
// the input slice is never mutated and no reference cycles can form.
package hierarchy

import (
	"fmt"
	"log/slog"
	"sort"

	"productcatalog/internal/models"
)

// Build returns the immediate children of rootParentID, sorted by id, with
// every descendant attached transitively. Categories whose parent is not in
// the input are unreachable and silently dropped. Each id is placed at most
// once, which also stops recursion on cyclic parent chains.
//
// Build never panics: an unexpected failure is logged and yields an empty tree.
func Build(categories []models.Projection, rootParentID int) (tree []models.Projection) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("hierarchy build failed",
				"root_parent_id", rootParentID,
				"error", fmt.Sprint(rec),
			)
			tree = []models.Projection{}
		}
	}()

	grouped := groupByParent(categories)
	visited := make(map[int]bool, len(categories))
	return buildLevel(grouped, rootParentID, visited)
}

// groupByParent maps each parent id to its direct children in input order.
func groupByParent(categories []models.Projection) map[int][]models.Projection {
	grouped := make(map[int][]models.Projection)
	for _, c := range categories {
		grouped[c.ParentID] = append(grouped[c.ParentID], c)
	}
	return grouped
}

// buildLevel materializes one level of the tree and recurses into each node.
func buildLevel(grouped map[int][]models.Projection, parentID int, visited map[int]bool) []models.Projection {
	group := grouped[parentID]
	level := make([]models.Projection, 0, len(group))
	for _, c := range group {
		if visited[c.ID] {
			continue
		}
		visited[c.ID] = true
		level = append(level, c)
	}

	sort.SliceStable(level, func(i, j int) bool { return level[i].ID < level[j].ID })

	for i := range level {
		level[i].Children = buildLevel(grouped, level[i].ID, visited)
	}
	return level
}

// Roots returns only the top-level categories, sorted by id, without children.
func Roots(categories []models.Projection) []models.Projection {
	roots := make([]models.Projection, 0)
	for _, c := range categories {
		if c.ParentID != models.RootParentID {
			continue
		}
		c.Children = []models.Projection{}
		roots = append(roots, c)
	}
	sort.SliceStable(roots, func(i, j int) bool { return roots[i].ID < roots[j].ID })
	return roots
}

// SortLevels re-sorts every level of an already built tree by id. Nil
// children become empty slices.
func SortLevels(tree []models.Projection) []models.Projection {
	if tree == nil {
		return []models.Projection{}
	}
	sort.SliceStable(tree, func(i, j int) bool { return tree[i].ID < tree[j].ID })
	for i := range tree {
		tree[i].Children = SortLevels(tree[i].Children)
	}
	return tree
}

// Count returns the number of nodes in a tree.
func Count(tree []models.Projection) int {
	n := 0
	for _, c := range tree {
		n += 1 + Count(c.Children)
	}
	return n
}
