// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package oidc

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
)

// protoError is one of the closed set of OAuth2/OIDC error codes Fantasma
// surfaces externally. Proof-pipeline failures (proof_timeout,
// proof_unverified, circuit_unknown) are deliberately folded into
// invalid_request here; the distinguishable reason only survives in the
// audit log, never in the response the relying party sees.
type protoError string

// Client errors.
const (
	errInvalidRequest     protoError = "invalid_request"
	errInvalidScope       protoError = "invalid_scope"
	errInvalidClient      protoError = "invalid_client"
	errInvalidGrant       protoError = "invalid_grant"
	errUnsupportedGrant   protoError = "unsupported_grant_type"
	errUnauthorizedClient protoError = "unauthorized_client"
	errAccessDenied       protoError = "access_denied"
	errLoginRequired      protoError = "login_required"
)

// Server errors.
const (
	errServerError          protoError = "server_error"
	errTemporaryUnavailable protoError = "temporarily_unavailable"
	errStorageUnavailable   protoError = "storage_unavailable"
)

// tokenErrorStatus maps a protocol error to the HTTP status the token
// endpoint must answer with: always JSON, 400 for client errors, 401 for
// authentication failures, 500 for server errors.
func tokenErrorStatus(e protoError) int {
	switch e {
	case errInvalidClient, errUnauthorizedClient:
		return http.StatusUnauthorized
	case errServerError, errTemporaryUnavailable, errStorageUnavailable:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// tokenErrorBody is the RFC 6749 §5.2 error body shape.
type tokenErrorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// writeTokenError writes an RFC 6749 token-endpoint error response.
func writeTokenError(w http.ResponseWriter, e protoError, description string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(tokenErrorStatus(e))
	_ = json.NewEncoder(w).Encode(tokenErrorBody{Error: string(e), ErrorDescription: description})
}

// redirectWithError 302-redirects back to the relying party with an
// error= query parameter and the original state preserved: every
// /authorize failure except an untrusted client/redirect_uri is reported
// this way rather than rendered server-side.
func redirectWithError(w http.ResponseWriter, r *http.Request, redirectURI string, e protoError, description, state string) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		writeErrorPage(w, http.StatusBadRequest, "invalid redirect_uri")
		return
	}
	q := u.Query()
	q.Set("error", string(e))
	if description != "" {
		q.Set("error_description", description)
	}
	if state != "" {
		q.Set("state", state)
	}
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusFound)
}

// redirectApproved 302-redirects back to the relying party with the minted
// authorization code and original state, completing the CodeIssued
// transition of the protocol engine's state machine.
func redirectApproved(w http.ResponseWriter, r *http.Request, redirectURI, code, state string) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		writeErrorPage(w, http.StatusBadRequest, "invalid redirect_uri")
		return
	}
	q := u.Query()
	q.Set("code", code)
	if state != "" {
		q.Set("state", state)
	}
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusFound)
}

// writeErrorPage renders a minimal server-side error page for failures
// that must never redirect to an untrusted URI (unknown client_id,
// redirect_uri mismatch).
func writeErrorPage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte("<!DOCTYPE html><html><head><title>Authorization Error</title></head>" +
		"<body><h1>Authorization Error</h1><p>" + htmlEscape(message) + "</p></body></html>"))
}

func htmlEscape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(s)
}
