// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"annotadmin/internal/models"
	"annotadmin/internal/session"
)

// newTestSession creates a session.Data value suitable for testing.
func newTestSession(role models.Role, twoFADone bool) *session.Data {
	return &session.Data{
		UserID:    7,
		Username:  "tester",
		Role:      string(role),
		TwoFADone: twoFADone,
	}
}

// fakeLoader returns a fixed session or error.
type fakeLoader struct {
	data *session.Data
	err  error
}

func (f fakeLoader) Get(context.Context, *http.Request) (*session.Data, error) {
	return f.data, f.err
}

// okHandler is a simple handler that records whether it was invoked.
func okHandler() (http.Handler, *bool) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

func decodeMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Message
}

func TestSessionFromCtx(t *testing.T) {
	t.Run("returns session when present", func(t *testing.T) {
		sess := newTestSession(models.RoleAdmin, true)
		got := SessionFromCtx(WithSession(context.Background(), sess))
		if got == nil {
			t.Fatal("expected non-nil session, got nil")
		}
		if got.Username != sess.Username || got.Role != sess.Role {
			t.Errorf("got %+v, want %+v", got, sess)
		}
	})

	t.Run("returns nil for empty context", func(t *testing.T) {
		if got := SessionFromCtx(context.Background()); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("returns nil for wrong type", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), SessionKey, "not a session")
		if got := SessionFromCtx(ctx); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})
}

func TestLoadSession(t *testing.T) {
	t.Run("stores session in context", func(t *testing.T) {
		sess := newTestSession(models.RoleAnnotator, true)
		var got *session.Data
		h := LoadSession(fakeLoader{data: sess})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = SessionFromCtx(r.Context())
		}))

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		if got != sess {
			t.Errorf("session: got %+v, want %+v", got, sess)
		}
	})

	t.Run("no session leaves context empty", func(t *testing.T) {
		called := false
		h := LoadSession(fakeLoader{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			if SessionFromCtx(r.Context()) != nil {
				t.Error("expected no session")
			}
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		if !called {
			t.Error("next handler should have been called")
		}
	})

	t.Run("store error is treated as anonymous", func(t *testing.T) {
		called := false
		h := LoadSession(fakeLoader{err: errors.New("valkey down")})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			if SessionFromCtx(r.Context()) != nil {
				t.Error("expected no session")
			}
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		if !called {
			t.Error("next handler should have been called")
		}
	})
}

func TestRequireAuth(t *testing.T) {
	t.Run("rejects anonymous with 401", func(t *testing.T) {
		next, called := okHandler()
		rr := httptest.NewRecorder()
		RequireAuth(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/categories", nil))

		if *called {
			t.Error("next handler should not be called")
		}
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", rr.Code)
		}
		if msg := decodeMessage(t, rr); msg != "authentication required" {
			t.Errorf("message: got %q", msg)
		}
	})

	t.Run("passes authenticated", func(t *testing.T) {
		next, called := okHandler()
		req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
		req = req.WithContext(WithSession(req.Context(), newTestSession(models.RoleReviewer, false)))
		rr := httptest.NewRecorder()
		RequireAuth(next).ServeHTTP(rr, req)

		if !*called {
			t.Error("next handler should be called")
		}
	})
}

func TestRequire2FA(t *testing.T) {
	tests := []struct {
		name       string
		sess       *session.Data
		wantCalled bool
		wantStatus int
	}{
		{"completed", newTestSession(models.RoleAdmin, true), true, http.StatusOK},
		{"pending", newTestSession(models.RoleAdmin, false), false, http.StatusForbidden},
		{"no session passes through", nil, true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, called := okHandler()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.sess != nil {
				req = req.WithContext(WithSession(req.Context(), tt.sess))
			}
			rr := httptest.NewRecorder()
			Require2FA(next).ServeHTTP(rr, req)

			if *called != tt.wantCalled {
				t.Errorf("called: got %v, want %v", *called, tt.wantCalled)
			}
			if rr.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	readers := RequireRole(models.RoleAdmin, models.RoleAnnotator, models.RoleReviewer, models.RoleExpert)

	tests := []struct {
		name   string
		mw     func(http.Handler) http.Handler
		sess   *session.Data
		status int
	}{
		{"admin reads", readers, newTestSession(models.RoleAdmin, true), http.StatusOK},
		{"expert reads", readers, newTestSession(models.RoleExpert, true), http.StatusOK},
		{"unknown role", readers, newTestSession("guest", true), http.StatusForbidden},
		{"no session", readers, nil, http.StatusForbidden},
		{"admin writes", RequireAdmin, newTestSession(models.RoleAdmin, true), http.StatusOK},
		{"annotator cannot write", RequireAdmin, newTestSession(models.RoleAnnotator, true), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _ := okHandler()
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.sess != nil {
				req = req.WithContext(WithSession(req.Context(), tt.sess))
			}
			rr := httptest.NewRecorder()
			tt.mw(next).ServeHTTP(rr, req)

			if rr.Code != tt.status {
				t.Errorf("status: got %d, want %d", rr.Code, tt.status)
			}
			if tt.status == http.StatusForbidden {
				if msg := decodeMessage(t, rr); msg != "insufficient permissions" {
					t.Errorf("message: got %q", msg)
				}
			}
		})
	}
}
