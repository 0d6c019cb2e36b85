// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package oidc

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/fantasma/fantasma/internal/audit"
	"github.com/fantasma/fantasma/internal/metrics"
	"github.com/fantasma/fantasma/internal/repository"
	"github.com/fantasma/fantasma/internal/scope"
)

// handleAuthorize implements GET /authorize: it validates the client and
// redirect_uri, resolves the requested scopes into zero-knowledge claim
// requests, and renders the consent page. An unknown client_id or a
// redirect_uri that fails exact-match renders a server-side
// error page rather than redirecting — the server has no URI it can trust
// yet. Every other validation failure redirects back with error= and the
// original state preserved.
func (h *Handler) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	clientID := q.Get("client_id")
	redirectURI := q.Get("redirect_uri")
	state := q.Get("state")
	src := audit.SourceFromRequest(r)

	client, err := h.store.GetClientByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.auditLog.LogAuthorizeOutcome(ctx, src, audit.EventTypeAuthorizeError, clientID, "unknown client")
			metrics.RecordAuthorizeRequest("code", "error")
			writeErrorPage(w, http.StatusBadRequest, "unknown client_id")
			return
		}
		h.auditLog.LogAuthorizeOutcome(ctx, src, audit.EventTypeAuthorizeError, clientID, "client lookup failed")
		metrics.RecordAuthorizeRequest("code", "error")
		writeErrorPage(w, http.StatusInternalServerError, "failed to look up client")
		return
	}

	if !redirectURIAllowed(client.RedirectURIs, redirectURI) {
		h.auditLog.LogAuthorizeOutcome(ctx, src, audit.EventTypeAuthorizeError, clientID, "redirect_uri mismatch")
		metrics.RecordAuthorizeRequest("code", "error")
		writeErrorPage(w, http.StatusBadRequest, "redirect_uri does not match a registered URI")
		return
	}

	if q.Get("response_type") != "code" {
		metrics.RecordAuthorizeRequest("code", "error")
		redirectWithError(w, r, redirectURI, errInvalidRequest, "response_type must be code", state)
		return
	}

	if q.Get("prompt") == "none" || q.Get("max_age") != "" {
		h.auditLog.LogAuthorizeOutcome(ctx, src, audit.EventTypeAuthorizeError, clientID, "login_required: no SSO session")
		metrics.RecordAuthorizeRequest("code", "error")
		redirectWithError(w, r, redirectURI, errLoginRequired, "no active session to satisfy prompt=none or max_age", state)
		return
	}

	challengeMethod := q.Get("code_challenge_method")
	if challengeMethod != "" && challengeMethod != "S256" && challengeMethod != "plain" {
		metrics.RecordAuthorizeRequest("code", "error")
		redirectWithError(w, r, redirectURI, errInvalidRequest, "unsupported code_challenge_method", state)
		return
	}

	claims, err := scope.Resolve(q.Get("scope"), client.AllowedScopes)
	if err != nil {
		h.auditLog.LogAuthorizeOutcome(ctx, src, audit.EventTypeAuthorizeError, clientID, err.Error())
		metrics.RecordAuthorizeRequest("code", "error")
		redirectWithError(w, r, redirectURI, errInvalidScope, err.Error(), state)
		return
	}

	reqID, err := randomID()
	if err != nil {
		metrics.RecordAuthorizeRequest("code", "error")
		writeErrorPage(w, http.StatusInternalServerError, "failed to start authorization flow")
		return
	}

	now := h.now()
	p := &pendingAuth{
		ID:                  reqID,
		ClientID:            clientID,
		RedirectURI:         redirectURI,
		Scopes:              scopeTokens(q.Get("scope")),
		Claims:              claims,
		State:               state,
		Nonce:               q.Get("nonce"),
		CodeChallenge:       q.Get("code_challenge"),
		CodeChallengeMethod: challengeMethod,
		CreatedAt:           now,
		ExpiresAt:           now.Add(h.cfg.ConsentTimeout),
	}

	h.mu.Lock()
	h.pending[reqID] = p
	h.mu.Unlock()

	h.auditLog.LogAuthorizeOutcome(ctx, src, audit.EventTypeAuthorizeRequested, clientID, "")
	metrics.RecordAuthorizeRequest("code", "consent_required")
	renderConsentPage(w, client.Name, p)
}

func redirectURIAllowed(registered []string, candidate string) bool {
	if candidate == "" {
		return false
	}
	for _, u := range registered {
		if u == candidate {
			return true
		}
	}
	return false
}

func scopeTokens(scopeString string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(scopeString); i++ {
		if i == len(scopeString) || scopeString[i] == ' ' {
			if i > start {
				out = append(out, scopeString[start:i])
			}
			start = i + 1
		}
	}
	return out
}

func randomID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
