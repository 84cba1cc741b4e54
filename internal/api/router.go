// Bookscout - Personalized Book Recommendations with Recombee
// Copyright 2026 Andrei Catrinei (acatrinei)
// SPDX-License-Identifier: MIT
// https://github.com/acatrinei/bookscout

// Package api provides the HTTP surface of the recommendation dashboard,
// routed with chi and instrumented with Prometheus.
package api

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed static
var staticFiles embed.FS

// Router assembles handlers and middleware into the served http.Handler.
type Router struct {
	handler    *Handler
	middleware *Middleware
}

// NewRouter creates a Router for the given service and middleware config.
func NewRouter(service BookService, mwConfig *MiddlewareConfig) *Router {
	return &Router{
		handler:    NewHandler(service),
		middleware: NewMiddleware(mwConfig),
	}
}

// Setup configures all routes and returns the root handler.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.middleware.CORS())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())
		r.Use(SecurityHeaders())
		r.Use(PrometheusMetrics())

		r.Get("/health", router.handler.Health)

		r.Route("/users/{id}", func(r chi.Router) {
			r.Post("/", router.handler.CreateUser)
			r.Get("/profile", router.handler.GetProfile)
			r.Post("/profile", router.handler.BuildProfile)
			r.Get("/recommendations", router.handler.Recommendations)
		})

		r.Get("/search", router.handler.Search)
		r.Post("/ratings", router.handler.AddRating)
		r.Post("/views", router.handler.AddView)
		r.Get("/items/{id}/similar", router.handler.Similar)
	})

	r.Handle("/metrics", promhttp.Handler())

	// Dashboard single page, served from the embedded filesystem.
	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/*", http.FileServer(http.FS(static)))

	return r
}
