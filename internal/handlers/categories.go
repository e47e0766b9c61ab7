// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"

	"annotadmin/internal/cache"
	"annotadmin/internal/models"
	"annotadmin/internal/store"
	"annotadmin/internal/taxonomy"
	"annotadmin/internal/validation"
)

// CategoryRepository is the persistence the category handlers need.
// *store.CategoryStore satisfies it.
type CategoryRepository interface {
	List() ([]models.Category, error)
	FindByID(id int64) (*models.Category, error)
	Create(name string, description *string, parentID *int64) (*models.Category, error)
	Update(id int64, name, description *string) (*models.Category, error)
	Delete(id int64) error
	Stats(id int64) (*models.CategoryStats, error)
}

// Categories serves the category service endpoints.
type Categories struct {
	repo     CategoryRepository
	cache    *cache.TaxonomyCache
	validate *validation.Validator
}

// NewCategories creates the category handler group.
func NewCategories(repo CategoryRepository, tc *cache.TaxonomyCache, v *validation.Validator) *Categories {
	return &Categories{repo: repo, cache: tc, validate: v}
}

type createCategoryRequest struct {
	Name        string  `json:"name" validate:"required,notblank,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	ParentID    *int64  `json:"parentId" validate:"omitempty,gt=0"`
}

type updateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// list returns the flat collection through the Valkey cache.
func (h *Categories) list(r *http.Request) ([]models.Category, error) {
	return h.cache.Categories(r.Context(), h.repo.List)
}

// List returns the flat category collection.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	cats, err := h.list(r)
	if err != nil {
		internalError(w, r, "list categories failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

// Tree returns the categories as a nested forest.
func (h *Categories) Tree(w http.ResponseWriter, r *http.Request) {
	cats, err := h.list(r)
	if err != nil {
		internalError(w, r, "list categories failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": taxonomy.BuildTree(cats)})
}

// Flat returns the categories in pre-order with their depth.
func (h *Categories) Flat(w http.ResponseWriter, r *http.Request) {
	cats, err := h.list(r)
	if err != nil {
		internalError(w, r, "list categories failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": taxonomy.Flatten(cats)})
}

// Get returns one category.
func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	c, err := h.repo.FindByID(id)
	if err != nil {
		internalError(w, r, "find category failed", err)
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"category": c})
}

// Create adds a category.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if !bind(w, r, h.validate, &req) {
		return
	}

	c, err := h.repo.Create(req.Name, req.Description, req.ParentID)
	if err != nil {
		h.storeError(w, r, "create", err)
		return
	}
	h.cache.Invalidate(r.Context())

	writeJSON(w, http.StatusCreated, map[string]any{"message": "category created", "category": c})
}

// Update changes a category's name and/or description.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req updateCategoryRequest
	if !bind(w, r, h.validate, &req) {
		return
	}

	c, err := h.repo.Update(id, req.Name, req.Description)
	if err != nil {
		h.storeError(w, r, "update", err)
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	h.cache.Invalidate(r.Context())

	writeJSON(w, http.StatusOK, map[string]any{"message": "category updated", "category": c})
}

// Delete removes a category without subcategories.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.repo.Delete(id); err != nil {
		h.storeError(w, r, "delete", err)
		return
	}
	h.cache.Invalidate(r.Context())

	writeJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

// Stats returns usage counts for a category.
func (h *Categories) Stats(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	st, err := h.repo.Stats(id)
	if err != nil {
		internalError(w, r, "category stats failed", err)
		return
	}
	if st == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// storeError maps store sentinels to client errors.
func (h *Categories) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "category not found")
	case errors.Is(err, store.ErrEmptyName):
		writeError(w, http.StatusBadRequest, "category name is required")
	case errors.Is(err, store.ErrDuplicateName):
		writeError(w, http.StatusBadRequest, "category name already exists")
	case errors.Is(err, store.ErrParentNotFound):
		writeError(w, http.StatusBadRequest, "parent category not found")
	case errors.Is(err, store.ErrHasChildren):
		writeError(w, http.StatusBadRequest, "cannot delete a category that has subcategories")
	default:
		internalError(w, r, op+" category failed", err)
	}
}
