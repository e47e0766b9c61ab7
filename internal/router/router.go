// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// annotation console API. Reads are open to every annotation role; changes
// to the taxonomy and folder tree are admin-only.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"annotadmin/internal/handlers"
	"annotadmin/internal/middleware"
	"annotadmin/internal/models"
)

// readerRoles may browse categories and folders.
var readerRoles = []models.Role{
	models.RoleAdmin,
	models.RoleAnnotator,
	models.RoleReviewer,
	models.RoleExpert,
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. secure marks the CSRF cookie Secure.
func New(
	sessions middleware.SessionLoader,
	secure bool,
	loginLimiter *middleware.RateLimiter,
	auth *handlers.Auth,
	categories *handlers.Categories,
	folders *handlers.Folders,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessions))

	// Health check: no auth, no CSRF.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NewCSRF(secure))

		r.Route("/auth", func(r chi.Router) {
			r.Get("/csrf", auth.CSRFToken)
			r.With(loginLimiter.Middleware).Post("/login", auth.Login)
			r.Post("/logout", auth.Logout)

			// 2FA: requires a session but NOT completed 2FA.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/2fa/setup", auth.TwoFASetup)
				r.Post("/2fa/verify", auth.TwoFAVerify)
			})

			r.With(middleware.RequireAuth, middleware.Require2FA).Get("/me", auth.Me)
		})

		// Authenticated + 2FA-verified API.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)
			r.Use(middleware.RequireRole(readerRoles...))

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", categories.List)
				r.Get("/tree", categories.Tree)
				r.Get("/flat", categories.Flat)
				r.Get("/{id}", categories.Get)
				r.Get("/{id}/stats", categories.Stats)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/", categories.Create)
					r.Put("/{id}", categories.Update)
					r.Delete("/{id}", categories.Delete)
				})
			})

			r.Route("/folders", func(r chi.Router) {
				r.Get("/", folders.List)
				r.Get("/{id}", folders.Get)
				r.Get("/{id}/trail", folders.Trail)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/", folders.Create)
					r.Put("/{id}", folders.Rename)
					r.Put("/{id}/move", folders.Move)
					r.Delete("/{id}", folders.Delete)
				})
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"not found"}`))
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
