// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"annotadmin/internal/cache"
	"annotadmin/internal/models"
	"annotadmin/internal/validation"
)

func newCategoriesHandler(repo *fakeCategories) *Categories {
	return NewCategories(repo, cache.NewTaxonomyCache(nil, 0), validation.New())
}

func sampleCategories() *fakeCategories {
	return newFakeCategories(
		models.Category{ID: 1, Name: "Legal"},
		models.Category{ID: 2, Name: "Contracts", ParentID: models.Int64Ptr(1), StoredLevel: 1},
		models.Category{ID: 3, Name: "Medical"},
	)
}

func TestCategoriesList(t *testing.T) {
	h := newCategoriesHandler(sampleCategories())

	rr := httptest.NewRecorder()
	h.List(rr, request(http.MethodGet, "/api/categories", "", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	cats, _ := decode(t, rr)["categories"].([]any)
	if len(cats) != 3 {
		t.Fatalf("categories: got %d, want 3", len(cats))
	}
}

func TestCategoriesTree(t *testing.T) {
	h := newCategoriesHandler(sampleCategories())

	rr := httptest.NewRecorder()
	h.Tree(rr, request(http.MethodGet, "/api/categories/tree", "", nil))

	roots, _ := decode(t, rr)["categories"].([]any)
	if len(roots) != 2 {
		t.Fatalf("roots: got %d, want 2", len(roots))
	}
	legal := roots[0].(map[string]any)
	if legal["name"] != "Legal" {
		t.Errorf("first root: got %v", legal["name"])
	}
	children, _ := legal["children"].([]any)
	if len(children) != 1 || children[0].(map[string]any)["name"] != "Contracts" {
		t.Errorf("Legal children: got %v", children)
	}
}

func TestCategoriesFlat(t *testing.T) {
	h := newCategoriesHandler(sampleCategories())

	rr := httptest.NewRecorder()
	h.Flat(rr, request(http.MethodGet, "/api/categories/flat", "", nil))

	entries, _ := decode(t, rr)["categories"].([]any)
	want := []struct {
		name  string
		level float64
	}{{"Legal", 0}, {"Contracts", 1}, {"Medical", 0}}
	if len(entries) != len(want) {
		t.Fatalf("entries: got %d, want %d", len(entries), len(want))
	}
	for i, w := range want {
		e := entries[i].(map[string]any)
		if e["name"] != w.name || e["level"] != w.level {
			t.Errorf("entry %d: got (%v,%v), want (%s,%v)", i, e["name"], e["level"], w.name, w.level)
		}
	}
}

func TestCategoriesListFailure(t *testing.T) {
	repo := sampleCategories()
	repo.fail = errBoom
	h := newCategoriesHandler(repo)

	rr := httptest.NewRecorder()
	h.List(rr, request(http.MethodGet, "/api/categories", "", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rr.Code)
	}
	if msg := decode(t, rr)["message"]; msg != "internal server error" {
		t.Errorf("message: got %v", msg)
	}
}

func TestCategoriesCreate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"root", `{"name":"Finance"}`, http.StatusCreated, "category created"},
		{"child", `{"name":"NDAs","parentId":1}`, http.StatusCreated, "category created"},
		{"duplicate sibling", `{"name":"Legal"}`, http.StatusBadRequest, "category name already exists"},
		{"same name other parent", `{"name":"Legal","parentId":3}`, http.StatusCreated, "category created"},
		{"unknown parent", `{"name":"X","parentId":99}`, http.StatusBadRequest, "parent category not found"},
		{"blank name", `{"name":"  "}`, http.StatusBadRequest, "name must not be blank"},
		{"missing name", `{}`, http.StatusBadRequest, "name is required"},
		{"bad parent id", `{"name":"X","parentId":0}`, http.StatusBadRequest, "parentId must be greater than 0"},
		{"malformed", `{"name":`, http.StatusBadRequest, "invalid JSON body"},
		{"empty body", ``, http.StatusBadRequest, "request body is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newCategoriesHandler(sampleCategories())

			rr := httptest.NewRecorder()
			h.Create(rr, request(http.MethodPost, "/api/categories", tt.body, testSession(models.RoleAdmin)))

			if rr.Code != tt.status {
				t.Fatalf("status: got %d, want %d (%s)", rr.Code, tt.status, rr.Body.String())
			}
			if msg := decode(t, rr)["message"]; msg != tt.message {
				t.Errorf("message: got %v, want %q", msg, tt.message)
			}
		})
	}
}

func TestCategoriesCreateInvalidatesCache(t *testing.T) {
	repo := sampleCategories()
	h := newCategoriesHandler(repo)

	h.List(httptest.NewRecorder(), request(http.MethodGet, "/api/categories", "", nil))
	h.Create(httptest.NewRecorder(), request(http.MethodPost, "/api/categories", `{"name":"Finance"}`, nil))

	rr := httptest.NewRecorder()
	h.List(rr, request(http.MethodGet, "/api/categories", "", nil))
	cats, _ := decode(t, rr)["categories"].([]any)
	if len(cats) != 4 {
		t.Errorf("categories after create: got %d, want 4", len(cats))
	}
}

func TestCategoriesUpdate(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		body   string
		status int
	}{
		{"rename", "2", `{"name":"Agreements"}`, http.StatusOK},
		{"description only", "2", `{"description":"signed"}`, http.StatusOK},
		{"duplicate", "3", `{"name":"Legal"}`, http.StatusBadRequest},
		{"blank name", "2", `{"name":""}`, http.StatusBadRequest},
		{"unknown", "42", `{"name":"X"}`, http.StatusNotFound},
		{"bad id", "abc", `{"name":"X"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newCategoriesHandler(sampleCategories())

			rr := httptest.NewRecorder()
			h.Update(rr, request(http.MethodPut, "/api/categories/"+tt.id, tt.body, nil, "id", tt.id))

			if rr.Code != tt.status {
				t.Fatalf("status: got %d, want %d (%s)", rr.Code, tt.status, rr.Body.String())
			}
		})
	}
}

func TestCategoriesUpdateKeepsOtherFields(t *testing.T) {
	repo := sampleCategories()
	h := newCategoriesHandler(repo)

	rr := httptest.NewRecorder()
	h.Update(rr, request(http.MethodPut, "/api/categories/2", `{"description":"signed"}`, nil, "id", "2"))

	cat, _ := decode(t, rr)["category"].(map[string]any)
	if cat["name"] != "Contracts" || cat["description"] != "signed" {
		t.Errorf("category: got %v", cat)
	}
}

func TestCategoriesDelete(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		status  int
		message string
	}{
		{"leaf", "2", http.StatusOK, "category deleted"},
		{"has children", "1", http.StatusBadRequest, "cannot delete a category that has subcategories"},
		{"unknown", "42", http.StatusNotFound, "category not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newCategoriesHandler(sampleCategories())

			rr := httptest.NewRecorder()
			h.Delete(rr, request(http.MethodDelete, "/api/categories/"+tt.id, "", nil, "id", tt.id))

			if rr.Code != tt.status {
				t.Fatalf("status: got %d, want %d", rr.Code, tt.status)
			}
			if msg := decode(t, rr)["message"]; msg != tt.message {
				t.Errorf("message: got %v, want %q", msg, tt.message)
			}
		})
	}
}

func TestCategoriesGetAndStats(t *testing.T) {
	h := newCategoriesHandler(sampleCategories())

	rr := httptest.NewRecorder()
	h.Get(rr, request(http.MethodGet, "/api/categories/1", "", nil, "id", "1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("get status: got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Get(rr, request(http.MethodGet, "/api/categories/9", "", nil, "id", "9"))
	if rr.Code != http.StatusNotFound {
		t.Errorf("get unknown: got %d, want 404", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Stats(rr, request(http.MethodGet, "/api/categories/1/stats", "", nil, "id", "1"))
	body := decode(t, rr)
	if body["categoryId"] != float64(1) || body["subcategoryCount"] != float64(1) {
		t.Errorf("stats: got %v", body)
	}

	rr = httptest.NewRecorder()
	h.Stats(rr, request(http.MethodGet, "/api/categories/9/stats", "", nil, "id", "9"))
	if rr.Code != http.StatusNotFound {
		t.Errorf("stats unknown: got %d, want 404", rr.Code)
	}
}
