// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"productcatalog/internal/apperr"
	"productcatalog/internal/models"
	"productcatalog/internal/service"
)

// maxBodyBytes caps create/update request bodies.
const maxBodyBytes = 1 << 20

// CategoryService is the lifecycle service the handlers drive.
type CategoryService interface {
	Create(ctx context.Context, req *models.CategoryRequest) (*models.Category, error)
	Update(ctx context.Context, id int, req *models.CategoryRequest) error
	Delete(ctx context.Context, id int) error
	Roots(ctx context.Context) (models.HierarchyResult, error)
	Subtree(ctx context.Context, id int) (models.HierarchyResult, error)
	All(ctx context.Context) (models.HierarchyResult, error)
	Rebuild(ctx context.Context) []models.Projection
}

// Categories groups the category HTTP handlers.
type Categories struct {
	svc CategoryService
}

// NewCategories creates the category handlers.
func NewCategories(svc CategoryService) *Categories {
	return &Categories{svc: svc}
}

// statusResponse is the envelope for plain outcomes and errors.
type statusResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

// categoryResponse is returned by create.
type categoryResponse struct {
	Status   bool              `json:"status"`
	Message  string            `json:"message"`
	Category models.Projection `json:"category"`
}

// hierarchyResponse is returned by the tree reads and the rebuild.
type hierarchyResponse struct {
	Status   bool                `json:"status"`
	Message  string              `json:"message"`
	Category []models.Projection `json:"category"`
}

// Create handles POST /categories.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	c, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryResponse{
		Status:   true,
		Message:  service.MsgCreated,
		Category: models.ProjectionOf(c),
	})
}

// Update handles PUT /categories/{categoryId}.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := categoryID(w, r)
	if !ok {
		return
	}
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	if err := h.svc.Update(r.Context(), id, req); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, statusResponse{Status: true, Message: service.MsgUpdated})
}

// Delete handles DELETE /categories/{categoryId}.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := categoryID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: true, Message: service.MsgDeleted})
}

// Roots handles GET /categories/parent.
func (h *Categories) Roots(w http.ResponseWriter, r *http.Request) {
	writeHierarchy(w, r, func(ctx context.Context) (models.HierarchyResult, error) {
		return h.svc.Roots(ctx)
	})
}

// Details handles GET /categories/{categoryId}/details.
func (h *Categories) Details(w http.ResponseWriter, r *http.Request) {
	id, ok := categoryID(w, r)
	if !ok {
		return
	}
	writeHierarchy(w, r, func(ctx context.Context) (models.HierarchyResult, error) {
		return h.svc.Subtree(ctx, id)
	})
}

// All handles GET /categories/all.
func (h *Categories) All(w http.ResponseWriter, r *http.Request) {
	writeHierarchy(w, r, func(ctx context.Context) (models.HierarchyResult, error) {
		return h.svc.All(ctx)
	})
}

// Rebuild handles POST /product/categories. It re-renders the cached
// hierarchy snapshot and returns it.
func (h *Categories) Rebuild(w http.ResponseWriter, r *http.Request) {
	tree := h.svc.Rebuild(r.Context())
	if tree == nil {
		tree = []models.Projection{}
	}
	writeJSON(w, http.StatusCreated, hierarchyResponse{
		Status:   true,
		Message:  service.MsgRebuilt,
		Category: tree,
	})
}

func writeHierarchy(w http.ResponseWriter, r *http.Request, read func(context.Context) (models.HierarchyResult, error)) {
	res, err := read(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if res.Categories == nil {
		res.Categories = []models.Projection{}
	}
	writeJSON(w, http.StatusOK, hierarchyResponse{
		Status:   true,
		Message:  res.Message,
		Category: res.Categories,
	})
}

// decodeRequest reads the JSON body. An empty body or a JSON null yields a
// nil request, which the service rejects with its own message.
func decodeRequest(w http.ResponseWriter, r *http.Request) (*models.CategoryRequest, bool) {
	var req *models.CategoryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: "Malformed request body."})
		return nil, false
	}
	return req, true
}

// categoryID parses the {categoryId} path parameter.
func categoryID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "categoryId"))
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: "Category ID cannot be null."})
		return 0, false
	}
	return id, true
}

// writeError maps service errors to the status envelope. Persistence causes
// are logged, never shown.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := apperr.As(err)
	if !ok {
		slog.Error("unhandled category error", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, statusResponse{Message: "Internal server error"})
		return
	}
	if e.Kind == apperr.KindPersistence {
		slog.Error("category persistence failure", "method", r.Method, "path", r.URL.Path, "error", e.Cause)
	}
	writeJSON(w, e.HTTPStatus, statusResponse{Message: e.Message})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
