// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fantasma/fantasma/internal/logging"
	"github.com/fantasma/fantasma/internal/middleware"
)

// OIDCRouter is the subset of internal/oidc.Handler the top-level router
// needs, kept narrow so this package does not import internal/oidc (which
// in turn depends on internal/api's response helpers, via RequireAdminKey
// conventions the admin surface shares).
type OIDCRouter interface {
	Routes() chi.Router
}

// NewRouter assembles the full HTTP handler: the OIDC protocol engine
// mounted at the root, the admin surface mounted under /admin behind
// RequireAdminKey, a Prometheus scrape endpoint at /metrics, and a
// shallow liveness probe at /health. perf is shared with adminHandler so
// GET /admin/performance reports the same latency samples this router
// records.
func NewRouter(oidcHandler OIDCRouter, adminHandler *AdminHandler, chiMW *ChiMiddleware, adminKey string, perf *middleware.PerformanceMonitor) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.Recoverer)
	r.Use(chiMW.CORS())
	r.Use(APISecurityHeaders())
	r.Use(middleware.Compression)
	r.Use(middleware.PrometheusMetrics)
	r.Use(perf.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		WriteSuccess(w, r, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(chiMW.RateLimit())
		r.Mount("/", oidcHandler.Routes())
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(RequireAdminKey(adminKey))
		r.Mount("/", adminHandler.Routes())
	})

	logging.Info().Msg("HTTP router assembled: protocol engine at /, admin surface at /admin")
	return r
}
