// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"annotadmin/internal/cache"
	"annotadmin/internal/handlers"
	"annotadmin/internal/middleware"
	"annotadmin/internal/models"
	"annotadmin/internal/session"
	"annotadmin/internal/validation"
)

// headerSessions resolves the session from an X-Test-Role header so each
// request can pick its identity.
type headerSessions struct{}

func (headerSessions) Get(_ context.Context, r *http.Request) (*session.Data, error) {
	role := r.Header.Get("X-Test-Role")
	if role == "" {
		return nil, nil
	}
	return &session.Data{
		UserID:    1,
		Username:  "tester",
		Role:      role,
		TwoFADone: r.Header.Get("X-Test-2FA") != "pending",
	}, nil
}

// emptyCategories is a CategoryRepository with no data.
type emptyCategories struct{}

func (emptyCategories) List() ([]models.Category, error)           { return []models.Category{}, nil }
func (emptyCategories) FindByID(int64) (*models.Category, error)   { return nil, nil }
func (emptyCategories) Stats(int64) (*models.CategoryStats, error) { return nil, nil }
func (emptyCategories) Delete(int64) error                         { return nil }
func (emptyCategories) Update(int64, *string, *string) (*models.Category, error) {
	return nil, nil
}
func (emptyCategories) Create(name string, _ *string, parentID *int64) (*models.Category, error) {
	return &models.Category{ID: 1, Name: name, ParentID: parentID}, nil
}

// emptyFolders is a FolderRepository with no data.
type emptyFolders struct{}

func (emptyFolders) ListChildren(*int64) ([]models.Folder, error) { return []models.Folder{}, nil }
func (emptyFolders) FindByID(int64) (*models.Folder, error)       { return nil, nil }
func (emptyFolders) Trail(int64) (models.Trail, error)            { return nil, nil }
func (emptyFolders) Rename(int64, string) (*models.Folder, error) { return nil, nil }
func (emptyFolders) Move(int64, *int64) (*models.Folder, error)   { return nil, nil }
func (emptyFolders) Delete(int64) (int, *models.Folder, error)    { return 0, nil, nil }
func (emptyFolders) Create(name string, parentID *int64, _ *string) (*models.Folder, error) {
	return &models.Folder{ID: 1, Name: name, ParentID: parentID, Path: "/" + name}, nil
}

// noUsers rejects every login.
type noUsers struct{}

func (noUsers) FindByUsername(string) (*models.User, error) { return nil, nil }
func (noUsers) FindByID(int64) (*models.User, error)        { return nil, nil }
func (noUsers) SetTOTPSecret(int64, string) error           { return nil }
func (noUsers) EnableTOTP(int64) error                      { return nil }
func (noUsers) CheckPassword(*models.User, string) bool     { return false }

type noopSessions struct{}

func (noopSessions) Create(context.Context, http.ResponseWriter, *session.Data) (string, error) {
	return "", nil
}
func (noopSessions) Update(context.Context, *http.Request, *session.Data) error        { return nil }
func (noopSessions) Destroy(context.Context, http.ResponseWriter, *http.Request) error { return nil }

func newTestRouter(t *testing.T, loginLimit int) http.Handler {
	t.Helper()
	v := validation.New()
	limiter := middleware.NewRateLimiter(loginLimit, time.Minute)
	t.Cleanup(limiter.Stop)

	return New(
		headerSessions{},
		false,
		limiter,
		handlers.NewAuth(noUsers{}, noopSessions{}, v, true),
		handlers.NewCategories(emptyCategories{}, cache.NewTaxonomyCache(nil, 0), v),
		handlers.NewFolders(emptyFolders{}, v),
	)
}

// call issues a request with the CSRF cookie and header already in place.
func call(h http.Handler, method, path, role, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.AddCookie(&http.Cookie{Name: middleware.CSRFCookieName, Value: "tok"})
	req.Header.Set(middleware.CSRFHeaderName, "tok")
	if role != "" {
		req.Header.Set("X-Test-Role", role)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	healthHandler(w, httptest.NewRequest("GET", "/health", nil))

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

func TestRouteGating(t *testing.T) {
	h := newTestRouter(t, 100)

	tests := []struct {
		name   string
		method string
		path   string
		role   string
		body   string
		want   int
	}{
		{"health", http.MethodGet, "/health", "", "", http.StatusOK},
		{"anonymous list", http.MethodGet, "/api/categories", "", "", http.StatusUnauthorized},
		{"annotator list", http.MethodGet, "/api/categories", "annotator", "", http.StatusOK},
		{"reviewer tree", http.MethodGet, "/api/categories/tree", "reviewer", "", http.StatusOK},
		{"expert folders", http.MethodGet, "/api/folders", "expert", "", http.StatusOK},
		{"ai annotator denied", http.MethodGet, "/api/categories", "ai_annotator", "", http.StatusForbidden},
		{"annotator create denied", http.MethodPost, "/api/categories", "annotator", `{"name":"X"}`, http.StatusForbidden},
		{"admin create", http.MethodPost, "/api/categories", "admin", `{"name":"X"}`, http.StatusCreated},
		{"admin folder create", http.MethodPost, "/api/folders", "admin", `{"name":"x"}`, http.StatusCreated},
		{"reviewer folder delete denied", http.MethodDelete, "/api/folders/1", "reviewer", "", http.StatusForbidden},
		{"admin stats unknown", http.MethodGet, "/api/categories/5/stats", "admin", "", http.StatusNotFound},
		{"csrf endpoint", http.MethodGet, "/api/auth/csrf", "", "", http.StatusOK},
		{"bad login", http.MethodPost, "/api/auth/login", "", `{"username":"a","password":"b"}`, http.StatusUnauthorized},
		{"me anonymous", http.MethodGet, "/api/auth/me", "", "", http.StatusUnauthorized},
		{"unknown route", http.MethodGet, "/api/nope", "admin", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := call(h, tt.method, tt.path, tt.role, tt.body)
			if rr.Code != tt.want {
				t.Errorf("%s %s as %q: got %d, want %d (%s)", tt.method, tt.path, tt.role, rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestPendingTwoFactorIsLimited(t *testing.T) {
	h := newTestRouter(t, 100)

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	req.Header.Set("X-Test-Role", "admin")
	req.Header.Set("X-Test-2FA", "pending")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("pending 2fa: got %d, want 403", rr.Code)
	}
}

func TestMutationsRequireCSRF(t *testing.T) {
	h := newTestRouter(t, 100)

	req := httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{"name":"X"}`))
	req.Header.Set("X-Test-Role", "admin")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("missing token: got %d, want 403", rr.Code)
	}
}

func TestLoginIsRateLimited(t *testing.T) {
	h := newTestRouter(t, 2)

	for i := 0; i < 2; i++ {
		if rr := call(h, http.MethodPost, "/api/auth/login", "", `{"username":"a","password":"b"}`); rr.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: got %d, want 401", i+1, rr.Code)
		}
	}
	if rr := call(h, http.MethodPost, "/api/auth/login", "", `{"username":"a","password":"b"}`); rr.Code != http.StatusTooManyRequests {
		t.Errorf("third attempt: got %d, want 429", rr.Code)
	}
}

func TestResponsesCarryRequestID(t *testing.T) {
	h := newTestRouter(t, 100)
	rr := call(h, http.MethodGet, "/health", "", "")
	if rr.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
}
