// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// portfolio API. Routes are split into the public read API under /api and
// the admin API under /admin/api.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"folio/internal/handlers"
	"folio/internal/middleware"
)

// Deps are the handler groups and settings the router wires together.
type Deps struct {
	CORSOrigins []string
	// HSTS enables Strict-Transport-Security; only set it behind TLS.
	HSTS bool
	// Ping checks the database for /health. Optional.
	Ping func(ctx context.Context) error

	Verifier     middleware.TokenVerifier
	LoginLimiter *middleware.RateLimiter

	Auth     *handlers.Auth
	Public   *handlers.Public
	Blogs    *handlers.Blogs
	Projects *handlers.Projects
	Resume   *handlers.Resume
	Admin    *handlers.Admin
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(d.HSTS))

	r.Get("/health", healthHandler(d.Ping))

	r.Route("/api", func(r chi.Router) {
		r.Get("/blogs", d.Public.Blogs)
		r.Get("/blogs/{slug}", d.Public.Blog)
		r.Get("/projects", d.Public.Projects)
		r.Get("/projects/{id}/image", d.Public.ProjectImage)
		r.Get("/resume", d.Public.Resume)
		r.Get("/experience", d.Public.Experience)
	})

	r.Route("/admin/api", func(r chi.Router) {
		// Sign-in is open; only the attempt itself is rate limited.
		r.Route("/auth", func(r chi.Router) {
			r.With(d.LoginLimiter.Middleware).Post("/", d.Auth.Login)
			r.Delete("/", d.Auth.Logout)
			r.Get("/", d.Auth.Status)
			r.With(middleware.RequireAdmin(d.Verifier)).Get("/totp.png", d.Auth.TOTPQRCode)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(d.Verifier))

			r.Route("/blogs", func(r chi.Router) {
				r.Get("/", d.Blogs.List)
				r.Delete("/", d.Blogs.Delete)
				r.Patch("/", d.Blogs.SetPublished)
				r.Post("/upload", d.Blogs.Upload)
			})

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", d.Projects.List)
				r.Post("/", d.Projects.Create)
				r.Put("/reorder", d.Projects.Reorder)
				r.Get("/{id}", d.Projects.Get)
				r.Put("/{id}", d.Projects.Update)
				r.Delete("/{id}", d.Projects.Delete)
				r.Put("/{id}/image", d.Projects.SetImage)
				r.Delete("/{id}/image", d.Projects.DeleteImage)
			})

			r.Post("/resume/upload", d.Resume.Upload)
			r.Post("/refresh-cache", d.Admin.RefreshCache)
			r.Get("/stats", d.Admin.Stats)
			r.Get("/cache-log", d.Admin.CacheLog)
			r.Post("/cache/purge", d.Admin.PurgeCache)
		})
	})

	// CORS wraps the router so preflight requests are answered before
	// routing; chi would otherwise reply 405 to OPTIONS.
	c := cors.New(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Cache"},
		MaxAge:           int((12 * time.Hour).Seconds()),
	})
	return c.Handler(r)
}

// healthHandler returns a simple JSON health check response. When ping is
// set and fails the status is 503.
func healthHandler(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
}
