// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/fantasma/fantasma/internal/audit"
	"github.com/fantasma/fantasma/internal/metrics"
	"github.com/fantasma/fantasma/internal/repository"
	"github.com/fantasma/fantasma/internal/validation"
)

type createIssuerRequest struct {
	Name      string                        `json:"name" validate:"required,min=1,max=200"`
	Algorithm repository.IssuerKeyAlgorithm `json:"public_key_algorithm" validate:"required,oneof=dilithium3 ed25519"`
	PublicKey []byte                        `json:"public_key" validate:"required,min=1"`
	Trusted   bool                          `json:"trusted"`
}

type updateIssuerRequest struct {
	Name    *string `json:"name,omitempty"`
	Trusted *bool   `json:"trusted,omitempty"`
}

func (h *AdminHandler) listIssuers(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.paginationParams(r)
	issuers, total, err := h.store.ListIssuers(r.Context(), limit, offset)
	if err != nil {
		WriteDatabaseError(w, r, err)
		return
	}
	WriteSuccess(w, r, paginatedEnvelope{Data: issuers, Total: total, Limit: limit, Offset: offset})
}

func (h *AdminHandler) createIssuer(w http.ResponseWriter, r *http.Request) {
	var req createIssuerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, r, "malformed request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		WriteBadRequest(w, r, apiErr.Message)
		return
	}

	now := time.Now()
	iss := &repository.Issuer{
		IssuerID:  uuid.NewString(),
		Name:      req.Name,
		Algorithm: req.Algorithm,
		PublicKey: req.PublicKey,
		Trusted:   req.Trusted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.InsertIssuer(r.Context(), iss); err != nil {
		metrics.RecordAdminOperation("issuer", "create", false)
		WriteDatabaseError(w, r, err)
		return
	}

	h.auditLog.LogIssuerChange(r.Context(), adminActor(r), audit.SourceFromRequest(r), audit.EventTypeIssuerCreated, iss.IssuerID)
	metrics.RecordAdminOperation("issuer", "create", true)
	NewResponseWriter(w, r).Created(iss)
}

func (h *AdminHandler) getIssuer(w http.ResponseWriter, r *http.Request) {
	issuerID := chi.URLParam(r, "issuer_id")
	iss, err := h.store.GetIssuer(r.Context(), issuerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			WriteNotFound(w, r, "issuer not found")
			return
		}
		WriteDatabaseError(w, r, err)
		return
	}
	WriteSuccess(w, r, iss)
}

func (h *AdminHandler) updateIssuer(w http.ResponseWriter, r *http.Request) {
	issuerID := chi.URLParam(r, "issuer_id")
	iss, err := h.store.GetIssuer(r.Context(), issuerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			WriteNotFound(w, r, "issuer not found")
			return
		}
		WriteDatabaseError(w, r, err)
		return
	}

	var req updateIssuerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, r, "malformed request body")
		return
	}
	if req.Name != nil {
		iss.Name = *req.Name
	}
	if req.Trusted != nil {
		iss.Trusted = *req.Trusted
	}

	if err := h.store.UpdateIssuer(r.Context(), iss); err != nil {
		metrics.RecordAdminOperation("issuer", "update", false)
		WriteDatabaseError(w, r, err)
		return
	}
	h.auditLog.LogIssuerChange(r.Context(), adminActor(r), audit.SourceFromRequest(r), audit.EventTypeIssuerUpdated, issuerID)
	metrics.RecordAdminOperation("issuer", "update", true)
	WriteSuccess(w, r, iss)
}

func (h *AdminHandler) deleteIssuer(w http.ResponseWriter, r *http.Request) {
	issuerID := chi.URLParam(r, "issuer_id")
	if err := h.store.DeleteIssuer(r.Context(), issuerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			WriteNotFound(w, r, "issuer not found")
			return
		}
		metrics.RecordAdminOperation("issuer", "delete", false)
		WriteDatabaseError(w, r, err)
		return
	}
	h.auditLog.LogIssuerChange(r.Context(), adminActor(r), audit.SourceFromRequest(r), audit.EventTypeIssuerDeleted, issuerID)
	metrics.RecordAdminOperation("issuer", "delete", true)
	NewResponseWriter(w, r).NoContent()
}
