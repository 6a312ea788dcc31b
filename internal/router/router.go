// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// template editor API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"invitecraft/internal/handlers"
	"invitecraft/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// wired up. limiter may be nil to disable rate limiting.
func New(api *handlers.API, limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.NotFound(jsonStatus(http.StatusNotFound))
	r.MethodNotAllowed(jsonStatus(http.StatusMethodNotAllowed))

	// Health check, exempt from rate limiting so probes never see 429.
	r.Get("/health", api.Health)

	r.Route("/api", func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}
		api.Routes(r)
	})

	return r
}

// jsonStatus answers with a JSON error body carrying the status text.
func jsonStatus(status int) http.HandlerFunc {
	body := []byte(`{"error":"` + http.StatusText(status) + `"}` + "\n")
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		w.Write(body)
	}
}
