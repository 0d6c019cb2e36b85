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
	"github.com/fantasma/fantasma/internal/crypto"
	"github.com/fantasma/fantasma/internal/metrics"
	"github.com/fantasma/fantasma/internal/repository"
	"github.com/fantasma/fantasma/internal/validation"
)

// createClientRequest is the admin surface's client registration body.
// Secret is accepted only for confidential clients and is never echoed
// back — only its Argon2id hash is stored.
type createClientRequest struct {
	ClientType    repository.ClientType `json:"client_type" validate:"required,oneof=public confidential"`
	Secret        string                `json:"secret,omitempty"`
	RedirectURIs  []string              `json:"redirect_uris" validate:"required,min=1,dive,required,url"`
	AllowedScopes []string              `json:"allowed_scopes" validate:"omitempty,dive,required"`
	Name          string                `json:"name" validate:"required,min=1,max=200"`
}

func (h *AdminHandler) listClients(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.paginationParams(r)
	clients, total, err := h.store.ListClients(r.Context(), limit, offset)
	if err != nil {
		WriteDatabaseError(w, r, err)
		return
	}
	for _, c := range clients {
		c.SecretHash = ""
	}
	WriteSuccess(w, r, paginatedEnvelope{Data: clients, Total: total, Limit: limit, Offset: offset})
}

func (h *AdminHandler) createClient(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, r, "malformed request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		WriteBadRequest(w, r, apiErr.Message)
		return
	}

	var secretHash string
	if req.ClientType == repository.ClientConfidential {
		if req.Secret == "" {
			WriteBadRequest(w, r, "secret is required for confidential clients")
			return
		}
		hash, err := crypto.HashClientSecret(req.Secret)
		if err != nil {
			WriteInternalError(w, r, "failed to hash client secret")
			return
		}
		secretHash = hash
	}

	client := &repository.Client{
		ClientID:      uuid.NewString(),
		ClientType:    req.ClientType,
		SecretHash:    secretHash,
		RedirectURIs:  req.RedirectURIs,
		AllowedScopes: req.AllowedScopes,
		Name:          req.Name,
		CreatedAt:     time.Now(),
	}
	if err := h.store.InsertClient(r.Context(), client); err != nil {
		metrics.RecordAdminOperation("client", "create", false)
		WriteDatabaseError(w, r, err)
		return
	}

	h.auditLog.LogClientCreated(r.Context(), adminActor(r), audit.SourceFromRequest(r), client.ClientID)
	metrics.RecordAdminOperation("client", "create", true)
	client.SecretHash = ""
	NewResponseWriter(w, r).Created(client)
}

func (h *AdminHandler) getClient(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "client_id")
	client, err := h.store.GetClientByClientID(r.Context(), clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			WriteNotFound(w, r, "client not found")
			return
		}
		WriteDatabaseError(w, r, err)
		return
	}
	client.SecretHash = ""
	WriteSuccess(w, r, client)
}

func (h *AdminHandler) deleteClient(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "client_id")
	if err := h.store.DeleteClient(r.Context(), clientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			WriteNotFound(w, r, "client not found")
			return
		}
		metrics.RecordAdminOperation("client", "delete", false)
		WriteDatabaseError(w, r, err)
		return
	}
	h.auditLog.LogClientDeleted(r.Context(), adminActor(r), audit.SourceFromRequest(r), clientID)
	metrics.RecordAdminOperation("client", "delete", true)
	NewResponseWriter(w, r).NoContent()
}

// adminActor builds the Actor attributed to every admin-surface mutation.
// There is no admin user model beyond the shared key, so every caller is
// the same actor identity; RequestID still distinguishes individual calls.
func adminActor(_ *http.Request) audit.Actor {
	return audit.ActorFromUser("admin", "admin", nil, "admin_key", "")
}
