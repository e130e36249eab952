// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package service orchestrates the category lifecycle: it validates
// requests, enforces preconditions, persists through the store and mirrors
// every change into the cache. A cache write that fails never fails the
// request; it is compensated by a fallback event instead.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"productcatalog/internal/apperr"
	"productcatalog/internal/events"
	"productcatalog/internal/models"
	"productcatalog/internal/store"
)

// Client-facing messages.
const (
	MsgCreated       = "Category successfully created"
	MsgUpdated       = "Category successfully updated"
	MsgDeleted       = "Product category deleted successfully."
	MsgRebuilt       = "Category hierarchy successfully rebuilt"
	msgExists        = "Product Category already exists!"
	msgUpdateMissing = "No product category is associated"
	msgInactive      = "The product category is inactive"
	msgDeleteMissing = "No product category found with the given ID."
	msgHasProducts   = "Cannot delete product category with associated products."
	msgDeleteTwice   = "Cannot delete. The product category is inactive."
	msgNoAssociation = "Unable to confirm the product category has no associated products."
	msgSelfParent    = "Parent ID cannot be the category's own ID."
	msgSaveFailed    = "Unable to save your record at this time."
	msgDeleteFailed  = "Unable to delete your record at this time."
	msgNoRoots       = "Unable to fetch product category by ID. No product category is associated with this ID."
	msgNoHierarchy   = "No base hierarchy can be fetched, nor is the root product category found."
)

// CategoryStore is the durable record store.
type CategoryStore interface {
	FindByID(ctx context.Context, id int) (*models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
	Save(ctx context.Context, c *models.Category) (*models.Category, error)
}

// CategoryCache mirrors categories into the cache. Its methods report
// failure through their results, never through errors.
type CategoryCache interface {
	Put(ctx context.Context, p models.Projection) bool
	Remove(ctx context.Context, p models.Projection) bool
	ReadAll(ctx context.Context) []models.Projection
	ReadCachedHierarchy(ctx context.Context) []models.Projection
	BuildSubtree(ctx context.Context, rootID int) models.HierarchyResult
	BuildRootsOnly(ctx context.Context) models.HierarchyResult
}

// FallbackEmitter receives a notification whenever a cache write failed.
type FallbackEmitter interface {
	Publish(ctx context.Context, op events.Operation, c *models.Category)
}

// AssociationChecker reports whether deleting a category is safe.
type AssociationChecker interface {
	SafeToDelete(ctx context.Context, categoryID int) (bool, error)
}

// CategoryService implements create, update, soft delete and the hierarchy
// reads.
type CategoryService struct {
	store    CategoryStore
	cache    CategoryCache
	emitter  FallbackEmitter
	checker  AssociationChecker
	validate *validator.Validate
	now      func() time.Time
}

// New creates a CategoryService.
func New(store CategoryStore, cache CategoryCache, emitter FallbackEmitter, checker AssociationChecker) *CategoryService {
	return &CategoryService{
		store:    store,
		cache:    cache,
		emitter:  emitter,
		checker:  checker,
		validate: newValidator(),
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

// Create validates req, rejects duplicate names and persists a new active
// category.
func (s *CategoryService) Create(ctx context.Context, req *models.CategoryRequest) (*models.Category, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	name := models.NormalizeName(req.Name)
	existing, err := s.store.FindByName(ctx, name)
	if err != nil {
		slog.Error("category lookup failed", "name", name, "error", err)
		return nil, apperr.Persistence(msgSaveFailed, err)
	}
	if existing != nil {
		return nil, apperr.Conflict(msgExists)
	}

	now := s.now()
	saved, err := s.store.Save(ctx, &models.Category{
		Name:        name,
		Description: req.Description,
		ParentID:    req.Parent(),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, saveError("failed to create category", name, err)
	}

	s.mirror(ctx, events.OpCreate, saved)
	slog.Info("category created", "id", saved.ID, "name", saved.Name)
	return saved, nil
}

// Update overwrites the name and description of an active category. The
// parent, creation time and active flag are preserved.
func (s *CategoryService) Update(ctx context.Context, id int, req *models.CategoryRequest) error {
	if err := s.validateRequest(req); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return err
	}

	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		slog.Error("category lookup failed", "id", id, "error", err)
		return apperr.Persistence(msgSaveFailed, err)
	}
	if existing == nil {
		return apperr.Conflict(msgUpdateMissing)
	}
	if !existing.IsActive {
		return apperr.Conflict(msgInactive)
	}

	name := models.NormalizeName(req.Name)
	if name != existing.Name {
		owner, err := s.store.FindByName(ctx, name)
		if err != nil {
			slog.Error("category lookup failed", "name", name, "error", err)
			return apperr.Persistence(msgSaveFailed, err)
		}
		if owner != nil && owner.ID != id {
			return apperr.Conflict(msgExists)
		}
	}

	saved, err := s.store.Save(ctx, &models.Category{
		ID:          existing.ID,
		Name:        name,
		Description: req.Description,
		ParentID:    existing.ParentID,
		IsActive:    true,
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   s.now(),
	})
	if err != nil {
		return saveError("failed to update category", name, err)
	}

	s.mirror(ctx, events.OpUpdate, saved)
	slog.Info("category updated", "id", saved.ID, "name", saved.Name)
	return nil
}

// Delete soft-deletes a category once the product service confirms no
// product references it.
func (s *CategoryService) Delete(ctx context.Context, id int) error {
	if err := validateID(id); err != nil {
		return err
	}

	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		slog.Error("category lookup failed", "id", id, "error", err)
		return apperr.Persistence(msgDeleteFailed, err)
	}
	if existing == nil {
		return apperr.Conflict(msgDeleteMissing)
	}

	safe, err := s.checker.SafeToDelete(ctx, id)
	if err != nil {
		slog.Warn("association check failed", "id", id, "error", err)
		return apperr.Conflict(msgNoAssociation)
	}
	if !safe {
		return apperr.Conflict(msgHasProducts)
	}
	if !existing.IsActive {
		return apperr.Conflict(msgDeleteTwice)
	}

	deactivated := *existing
	deactivated.IsActive = false
	deactivated.UpdatedAt = s.now()
	saved, err := s.store.Save(ctx, &deactivated)
	if err != nil {
		slog.Error("failed to delete category", "id", id, "error", err)
		return apperr.Persistence(msgDeleteFailed, err)
	}

	s.mirror(ctx, events.OpDelete, saved)
	slog.Info("category deleted", "id", saved.ID)
	return nil
}

// saveError maps a store write failure to the client error. A category
// placed under itself is the caller's fault; anything else is logged and
// reported as a persistence failure.
func saveError(msg, name string, err error) error {
	if errors.Is(err, store.ErrSelfParent) {
		return apperr.Validation(msgSelfParent)
	}
	slog.Error(msg, "name", name, "error", err)
	return apperr.Persistence(msgSaveFailed, err)
}

// mirror applies a persisted change to the cache and falls back to an event
// when the cache write fails.
func (s *CategoryService) mirror(ctx context.Context, op events.Operation, c *models.Category) {
	p := models.ProjectionOf(c)

	var ok bool
	if op == events.OpDelete {
		ok = s.cache.Remove(ctx, p)
	} else {
		ok = s.cache.Put(ctx, p)
	}
	if ok {
		return
	}

	slog.Warn("category cache write failed, emitting fallback event", "operation", op, "id", c.ID)
	s.emitter.Publish(ctx, op, c)
}

// Roots returns the top-level categories.
func (s *CategoryService) Roots(ctx context.Context) (models.HierarchyResult, error) {
	return readResult(s.cache.BuildRootsOnly(ctx), msgNoRoots)
}

// Subtree returns the tree of categories below id.
func (s *CategoryService) Subtree(ctx context.Context, id int) (models.HierarchyResult, error) {
	if err := validateID(id); err != nil {
		return models.HierarchyResult{}, err
	}
	return readResult(s.cache.BuildSubtree(ctx, id), msgNoHierarchy)
}

// All returns the full hierarchy starting at the root.
func (s *CategoryService) All(ctx context.Context) (models.HierarchyResult, error) {
	return readResult(s.cache.BuildSubtree(ctx, models.RootParentID), msgNoHierarchy)
}

// Rebuild re-renders the whole-hierarchy snapshot from the cached
// categories and returns it.
func (s *CategoryService) Rebuild(ctx context.Context) []models.Projection {
	s.cache.ReadAll(ctx)
	return s.cache.ReadCachedHierarchy(ctx)
}

// readResult turns a cache result into the read outcome: a cache failure is
// a conflict, an empty result is not found.
func readResult(res models.HierarchyResult, notFound string) (models.HierarchyResult, error) {
	if !res.OK {
		return models.HierarchyResult{}, apperr.Conflict(res.Message)
	}
	if len(res.Categories) == 0 {
		return models.HierarchyResult{}, apperr.NotFound(notFound)
	}
	return res, nil
}
