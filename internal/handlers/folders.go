// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"

	"annotadmin/internal/middleware"
	"annotadmin/internal/models"
	"annotadmin/internal/store"
	"annotadmin/internal/validation"
)

// FolderRepository is the persistence the folder handlers need.
// *store.FolderStore satisfies it.
type FolderRepository interface {
	ListChildren(parentID *int64) ([]models.Folder, error)
	FindByID(id int64) (*models.Folder, error)
	Trail(id int64) (models.Trail, error)
	Create(name string, parentID *int64, createdBy *string) (*models.Folder, error)
	Rename(id int64, name string) (*models.Folder, error)
	Move(id int64, newParentID *int64) (*models.Folder, error)
	Delete(id int64) (int, *models.Folder, error)
}

// Folders serves the folder hierarchy endpoints.
type Folders struct {
	repo     FolderRepository
	validate *validation.Validator
}

// NewFolders creates the folder handler group.
func NewFolders(repo FolderRepository, v *validation.Validator) *Folders {
	return &Folders{repo: repo, validate: v}
}

type createFolderRequest struct {
	Name     string `json:"name" validate:"required,notblank,max=255,excludesall=/"`
	ParentID *int64 `json:"parentId" validate:"omitempty,gt=0"`
}

type renameFolderRequest struct {
	Name string `json:"name" validate:"required,notblank,max=255,excludesall=/"`
}

type moveFolderRequest struct {
	ParentID *int64 `json:"parentId" validate:"omitempty,gt=0"`
}

// List returns the children of ?parentId (the top level when absent).
func (h *Folders) List(w http.ResponseWriter, r *http.Request) {
	parentID, ok := optionalID(w, r, "parentId")
	if !ok {
		return
	}
	folders, err := h.repo.ListChildren(parentID)
	if err != nil {
		internalError(w, r, "list folders failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"folders": folders})
}

// Get returns one folder.
func (h *Folders) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	f, err := h.repo.FindByID(id)
	if err != nil {
		internalError(w, r, "find folder failed", err)
		return
	}
	if f == nil {
		writeError(w, http.StatusNotFound, "folder not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"folder": f})
}

// Trail returns the breadcrumb trail of a folder.
func (h *Folders) Trail(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	trail, err := h.repo.Trail(id)
	if err != nil {
		internalError(w, r, "folder trail failed", err)
		return
	}
	if len(trail) == 0 {
		writeError(w, http.StatusNotFound, "folder not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trail": trail, "path": trail.String()})
}

// Create makes a folder.
func (h *Folders) Create(w http.ResponseWriter, r *http.Request) {
	var req createFolderRequest
	if !bind(w, r, h.validate, &req) {
		return
	}

	var createdBy *string
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		createdBy = &sess.Username
	}

	f, err := h.repo.Create(req.Name, req.ParentID, createdBy)
	if err != nil {
		h.storeError(w, r, "create", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "folder created", "folder": f})
}

// Rename changes a folder's name.
func (h *Folders) Rename(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req renameFolderRequest
	if !bind(w, r, h.validate, &req) {
		return
	}

	f, err := h.repo.Rename(id, req.Name)
	if err != nil {
		h.storeError(w, r, "rename", err)
		return
	}
	if f == nil {
		writeError(w, http.StatusNotFound, "folder not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "folder renamed", "folder": f})
}

// Move re-parents a folder.
func (h *Folders) Move(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req moveFolderRequest
	if !bind(w, r, h.validate, &req) {
		return
	}

	f, err := h.repo.Move(id, req.ParentID)
	if err != nil {
		h.storeError(w, r, "move", err)
		return
	}
	if f == nil {
		writeError(w, http.StatusNotFound, "folder not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "folder moved", "folder": f})
}

// Delete removes a folder and its subtree.
func (h *Folders) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	n, f, err := h.repo.Delete(id)
	if err != nil {
		h.storeError(w, r, "delete", err)
		return
	}
	if f == nil {
		writeError(w, http.StatusNotFound, "folder not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "folder deleted",
		"deletedCount": n,
		"folderId":     f.ID,
		"folderPath":   f.Path,
	})
}

func (h *Folders) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "folder not found")
	case errors.Is(err, store.ErrEmptyName):
		writeError(w, http.StatusBadRequest, "folder name is required")
	case errors.Is(err, store.ErrInvalidName):
		writeError(w, http.StatusBadRequest, store.ErrInvalidName.Error())
	case errors.Is(err, store.ErrDuplicateName):
		writeError(w, http.StatusBadRequest, "a folder with this name already exists here")
	case errors.Is(err, store.ErrParentNotFound):
		writeError(w, http.StatusBadRequest, "parent folder not found")
	case errors.Is(err, store.ErrInvalidMove):
		writeError(w, http.StatusBadRequest, store.ErrInvalidMove.Error())
	default:
		internalError(w, r, op+" folder failed", err)
	}
}
