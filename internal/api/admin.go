// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

// Package api provides HTTP handlers for the Fantasma identity provider.
//
// admin.go - Admin surface: client/issuer CRUD, read-only proof/audit/
// nullifier inspection, and a detailed health endpoint. Every route here
// sits behind RequireAdminKey.
package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fantasma/fantasma/internal/audit"
	"github.com/fantasma/fantasma/internal/middleware"
	"github.com/fantasma/fantasma/internal/repository"
)

// AdminConfig bounds the admin surface's pagination behavior.
type AdminConfig struct {
	DefaultPageLimit int
	MaxPageLimit     int
}

// AdminHandler implements the admin surface's HTTP handlers.
type AdminHandler struct {
	cfg        AdminConfig
	store      *repository.Store
	auditStore *repository.AuditStore
	auditLog   *audit.Logger
	perf       *middleware.PerformanceMonitor
}

// NewAdminHandler constructs an AdminHandler. perf is the shared request
// latency monitor wired into the router's middleware chain; its stats are
// exposed read-only at GET /admin/performance.
func NewAdminHandler(cfg AdminConfig, store *repository.Store, auditLog *audit.Logger, perf *middleware.PerformanceMonitor) *AdminHandler {
	if cfg.DefaultPageLimit <= 0 {
		cfg.DefaultPageLimit = 50
	}
	if cfg.MaxPageLimit <= 0 {
		cfg.MaxPageLimit = 200
	}
	return &AdminHandler{
		cfg:        cfg,
		store:      store,
		auditStore: repository.NewAuditStore(store),
		auditLog:   auditLog,
		perf:       perf,
	}
}

// Routes mounts the admin surface onto a fresh chi.Router. The caller is
// responsible for wrapping it with RequireAdminKey before mounting.
func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/clients", func(r chi.Router) {
		r.Get("/", h.listClients)
		r.Post("/", h.createClient)
		r.Get("/{client_id}", h.getClient)
		r.Delete("/{client_id}", h.deleteClient)
	})

	r.Route("/issuers", func(r chi.Router) {
		r.Get("/", h.listIssuers)
		r.Post("/", h.createIssuer)
		r.Get("/{issuer_id}", h.getIssuer)
		r.Put("/{issuer_id}", h.updateIssuer)
		r.Delete("/{issuer_id}", h.deleteIssuer)
	})

	r.Get("/proofs", h.listProofs)
	r.Get("/nullifiers/count", h.countNullifiers)

	r.Route("/audit", func(r chi.Router) {
		r.Get("/", h.queryAudit)
		r.Get("/{event_id}", h.getAuditEvent)
	})

	r.Get("/health/detailed", h.healthDetailed)
	r.Get("/performance", h.performance)

	return r
}

// performance reports per-endpoint latency percentiles gathered by the
// router's PerformanceMonitor middleware.
func (h *AdminHandler) performance(w http.ResponseWriter, r *http.Request) {
	if h.perf == nil {
		WriteSuccess(w, r, []middleware.EndpointStats{})
		return
	}
	WriteSuccess(w, r, h.perf.GetStats())
}

// paginationParams parses and clamps limit/offset query parameters, per
// the admin surface's {data, total, limit, offset} envelope with limit
// bounded to [1, MaxPageLimit].
func (h *AdminHandler) paginationParams(r *http.Request) (limit, offset int) {
	limit = h.cfg.DefaultPageLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > h.cfg.MaxPageLimit {
		limit = h.cfg.MaxPageLimit
	}

	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// paginatedEnvelope is the admin surface's list response shape.
type paginatedEnvelope struct {
	Data   interface{} `json:"data"`
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}
