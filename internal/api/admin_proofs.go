// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package api

import "net/http"

// listProofs is a read-only paginated listing of proof jobs, for
// operators diagnosing a stuck or failed consent flow.
func (h *AdminHandler) listProofs(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.paginationParams(r)
	proofs, total, err := h.store.ListProofs(r.Context(), limit, offset)
	if err != nil {
		WriteDatabaseError(w, r, err)
		return
	}
	WriteSuccess(w, r, paginatedEnvelope{Data: proofs, Total: total, Limit: limit, Offset: offset})
}

// countNullifiers exposes the replay-sentinel count as a single scalar;
// there is no per-nullifier listing since a raw nullifier hash carries
// no useful diagnostic value on its own.
func (h *AdminHandler) countNullifiers(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.CountNullifiers(r.Context())
	if err != nil {
		WriteDatabaseError(w, r, err)
		return
	}
	WriteSuccess(w, r, map[string]int{"count": count})
}
