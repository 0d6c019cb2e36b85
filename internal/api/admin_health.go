// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package api

import (
	"net/http"
	"time"
)

type detailedHealth struct {
	Status           string    `json:"status"`
	StorageReachable bool      `json:"storage_reachable"`
	ClientCount      int       `json:"client_count"`
	IssuerCount      int       `json:"issuer_count"`
	PendingProofs    int       `json:"pending_proof_count"`
	NullifierCount   int       `json:"nullifier_count"`
	CheckedAt        time.Time `json:"checked_at"`
}

// healthDetailed probes the repository for a handful of cheap counts as a
// storage reachability check, distinct from the shallow liveness probe
// the non-admin health endpoint exposes.
func (h *AdminHandler) healthDetailed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	health := detailedHealth{Status: "ok", StorageReachable: true, CheckedAt: time.Now()}

	if _, total, err := h.store.ListClients(ctx, 1, 0); err != nil {
		health.Status = "degraded"
		health.StorageReachable = false
	} else {
		health.ClientCount = total
	}

	if _, total, err := h.store.ListIssuers(ctx, 1, 0); err == nil {
		health.IssuerCount = total
	}

	if pending, err := h.store.ListPendingOlderThan(ctx, time.Now().Add(time.Hour)); err == nil {
		health.PendingProofs = len(pending)
	}

	if count, err := h.store.CountNullifiers(ctx); err == nil {
		health.NullifierCount = count
	}

	status := http.StatusOK
	if !health.StorageReachable {
		status = http.StatusServiceUnavailable
	}
	NewResponseWriter(w, r).writeJSON(status, health)
}
