// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package oidc

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/fantasma/fantasma/internal/repository"
)

// proofView is the public, unauthenticated rendering of a proof row: raw
// attestation bytes are included only once the job has reached a
// verified Complete state, so a caller polling a Pending proof always
// gets a well-formed (if empty) body rather than a 404-then-200 race.
type proofView struct {
	ProofID      string         `json:"proof_id"`
	CircuitType  string         `json:"circuit_type"`
	State        string         `json:"state"`
	Verified     bool           `json:"verified"`
	ProofHash    string         `json:"proof_hash,omitempty"`
	Proof        []byte         `json:"proof,omitempty"`
	PublicInputs map[string]any `json:"public_inputs,omitempty"`
	Error        string         `json:"error,omitempty"`
}

// handleGetProof implements GET /proofs/{proof_id}: unauthenticated and
// cacheable, since a proof_id is an unguessable 128-bit random value and
// the response carries nothing a relying party could not already see in
// the ID token's proof_ref.
func (h *Handler) handleGetProof(w http.ResponseWriter, r *http.Request) {
	proofID := chi.URLParam(r, "proof_id")

	p, err := h.store.GetProof(r.Context(), proofID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "proof not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load proof", http.StatusInternalServerError)
		return
	}

	view := proofView{
		ProofID:      p.ProofID,
		CircuitType:  p.CircuitType,
		State:        string(p.State),
		Verified:     p.Verified,
		PublicInputs: p.PublicInputs,
		Error:        p.Error,
	}
	if p.State == repository.ProofComplete && p.Verified {
		view.ProofHash = p.ProofHash
		view.Proof = p.ProofBytes
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if p.State == repository.ProofComplete {
		w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	} else {
		w.Header().Set("Cache-Control", "no-store")
	}
	_ = json.NewEncoder(w).Encode(view)
}
