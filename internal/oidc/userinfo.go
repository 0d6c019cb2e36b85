// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package oidc

import (
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// handleUserinfo implements GET /userinfo: it validates the bearer access
// token and echoes back the claims bound to its pseudonym subject. There
// is no separate profile store — the pseudonym itself, plus the scopes
// the token was issued with, are all Fantasma knows about the subject.
func (h *Handler) handleUserinfo(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
		writeTokenError(w, errInvalidGrant, "missing bearer access token")
		return
	}

	claims, err := h.parseAccessToken(strings.TrimPrefix(auth, prefix))
	if err != nil {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
		writeTokenError(w, errInvalidGrant, "access token is invalid or expired")
		return
	}

	sub, _ := claims["sub"].(string)
	scopeStr, _ := claims["scope"].(string)

	resp := map[string]any{"sub": sub}
	for _, s := range strings.Fields(scopeStr) {
		switch s {
		case "profile":
			resp["pseudonym"] = sub
		case "email":
			// No email is collected; a relying party that requested the
			// email scope still gets a sub-bound response, just no claim.
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(resp)
}
