// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package oidc

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fantasma/fantasma/internal/audit"
	"github.com/fantasma/fantasma/internal/crypto"
	"github.com/fantasma/fantasma/internal/metrics"
	"github.com/fantasma/fantasma/internal/repository"
)

// tokenResponse is the RFC 6749 §5.1 success body. ID tokens are only
// present for the authorization_code grant (openid was requested).
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	Scope        string `json:"scope"`
}

// handleToken implements POST /token for both grant types it supports.
// Responses are always JSON, per RFC 6749 §5.2 — no HTML error page is
// ever rendered here, unlike /authorize and /authorize/consent.
func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		writeTokenError(w, errInvalidRequest, "malformed form body")
		return
	}

	switch r.PostForm.Get("grant_type") {
	case "authorization_code":
		h.handleAuthorizationCodeGrant(w, r)
	case "refresh_token":
		h.handleRefreshTokenGrant(w, r)
	default:
		h.auditLog.LogTokenOutcome(ctx, audit.SourceFromRequest(r), audit.EventTypeTokenRejected, "", "", string(errUnsupportedGrant))
		metrics.RecordTokenGrantError("unsupported", string(errUnsupportedGrant))
		writeTokenError(w, errUnsupportedGrant, "grant_type must be authorization_code or refresh_token")
	}
}

// authenticateClient resolves the calling client and, for confidential
// clients, verifies its secret via HTTP Basic auth or the client_secret
// form parameter (RFC 6749 §2.3.1 both transports). Public clients must
// not present a secret and are authenticated by PKCE alone.
func (h *Handler) authenticateClient(r *http.Request) (*repository.Client, protoError, string) {
	clientID := r.PostForm.Get("client_id")
	secret := r.PostForm.Get("client_secret")
	if basicID, basicSecret, ok := r.BasicAuth(); ok {
		clientID, secret = basicID, basicSecret
	}
	if clientID == "" {
		return nil, errInvalidClient, "client_id is required"
	}

	client, err := h.store.GetClientByClientID(r.Context(), clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errInvalidClient, "unknown client"
		}
		return nil, errServerError, "client lookup failed"
	}

	if client.ClientType == repository.ClientConfidential {
		if secret == "" {
			return nil, errInvalidClient, "client secret is required"
		}
		ok, err := crypto.VerifyClientSecret(secret, client.SecretHash)
		if err != nil || !ok {
			return nil, errInvalidClient, "client secret mismatch"
		}
	}

	return client, "", ""
}

func (h *Handler) handleAuthorizationCodeGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	src := audit.SourceFromRequest(r)

	client, protoErr, desc := h.authenticateClient(r)
	if protoErr != "" {
		h.auditLog.LogTokenOutcome(ctx, src, audit.EventTypeTokenRejected, r.PostForm.Get("client_id"), "authorization_code", string(protoErr))
		metrics.RecordTokenGrantError("authorization_code", string(protoErr))
		writeTokenError(w, protoErr, desc)
		return
	}

	code := r.PostForm.Get("code")
	ac, err := h.store.RedeemOnce(ctx, code)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrAlreadyUsed), errors.Is(err, repository.ErrExpired):
			h.auditLog.LogTokenOutcome(ctx, src, audit.EventTypeTokenRejected, client.ClientID, "authorization_code", string(errInvalidGrant))
			metrics.RecordTokenGrantError("authorization_code", string(errInvalidGrant))
			writeTokenError(w, errInvalidGrant, "authorization code is invalid, expired, or already used")
		default:
			metrics.RecordTokenGrantError("authorization_code", string(errServerError))
			writeTokenError(w, errServerError, "failed to redeem authorization code")
		}
		return
	}

	if ac.ClientID != client.ClientID {
		h.auditLog.LogTokenOutcome(ctx, src, audit.EventTypeTokenRejected, client.ClientID, "authorization_code", string(errInvalidGrant))
		metrics.RecordTokenGrantError("authorization_code", string(errInvalidGrant))
		writeTokenError(w, errInvalidGrant, "authorization code was not issued to this client")
		return
	}
	if r.PostForm.Get("redirect_uri") != "" && r.PostForm.Get("redirect_uri") != ac.RedirectURI {
		metrics.RecordTokenGrantError("authorization_code", string(errInvalidGrant))
		writeTokenError(w, errInvalidGrant, "redirect_uri does not match the authorization request")
		return
	}
	if !verifyPKCE(ac.CodeChallengeMethod, ac.CodeChallenge, r.PostForm.Get("code_verifier")) {
		h.auditLog.LogTokenOutcome(ctx, src, audit.EventTypeTokenRejected, client.ClientID, "authorization_code", string(errInvalidGrant))
		metrics.RecordTokenGrantError("authorization_code", string(errInvalidGrant))
		writeTokenError(w, errInvalidGrant, "code_verifier does not match code_challenge")
		return
	}

	now := h.now()
	access, err := h.mintAccessToken(client.ClientID, ac.Subject, ac.Scopes, now)
	if err != nil {
		metrics.RecordTokenGrantError("authorization_code", string(errServerError))
		writeTokenError(w, errServerError, "failed to mint access token")
		return
	}

	refresh, refreshHash, err := newOpaqueToken()
	if err != nil {
		metrics.RecordTokenGrantError("authorization_code", string(errServerError))
		writeTokenError(w, errServerError, "failed to mint refresh token")
		return
	}
	rt := &repository.RefreshToken{
		TokenHash: refreshHash,
		ClientID:  client.ClientID,
		Subject:   ac.Subject,
		Scopes:    ac.Scopes,
		ChainID:   ac.ChainID,
		IssuedAt:  now,
		ExpiresAt: now.Add(h.cfg.RefreshTokenTTL),
	}
	if err := h.store.InsertRefreshToken(ctx, rt); err != nil {
		metrics.RecordTokenGrantError("authorization_code", string(errServerError))
		writeTokenError(w, errServerError, "failed to persist refresh token")
		return
	}

	resp := tokenResponse{
		AccessToken:  access,
		TokenType:    "Bearer",
		ExpiresIn:    int64(h.cfg.AccessTokenTTL.Seconds()),
		RefreshToken: refresh,
		Scope:        strings.Join(ac.Scopes, " "),
	}
	if hasScope(ac.Scopes, "openid") {
		idToken, err := h.mintIDToken(client.ClientID, ac.Subject, ac.Nonce, now, ac.ZKClaims)
		if err != nil {
			metrics.RecordTokenGrantError("authorization_code", string(errServerError))
			writeTokenError(w, errServerError, "failed to mint id token")
			return
		}
		resp.IDToken = idToken
		metrics.RecordTokenIssued("authorization_code", "id")
	}

	h.auditLog.LogTokenOutcome(ctx, src, audit.EventTypeTokenIssued, client.ClientID, "authorization_code", "")
	metrics.RecordTokenIssued("authorization_code", "access")
	metrics.RecordTokenIssued("authorization_code", "refresh")
	writeTokenSuccess(w, resp)
}

func (h *Handler) handleRefreshTokenGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	src := audit.SourceFromRequest(r)

	client, protoErr, desc := h.authenticateClient(r)
	if protoErr != "" {
		h.auditLog.LogTokenOutcome(ctx, src, audit.EventTypeTokenRejected, r.PostForm.Get("client_id"), "refresh_token", string(protoErr))
		metrics.RecordTokenGrantError("refresh_token", string(protoErr))
		writeTokenError(w, protoErr, desc)
		return
	}

	presented := r.PostForm.Get("refresh_token")
	if presented == "" {
		metrics.RecordTokenGrantError("refresh_token", string(errInvalidRequest))
		writeTokenError(w, errInvalidRequest, "refresh_token is required")
		return
	}
	hash := hashToken(presented)

	rt, err := h.store.LookupRefreshTokenByHash(ctx, hash)
	if err != nil {
		h.auditLog.LogTokenOutcome(ctx, src, audit.EventTypeTokenRejected, client.ClientID, "refresh_token", string(errInvalidGrant))
		metrics.RecordTokenGrantError("refresh_token", string(errInvalidGrant))
		writeTokenError(w, errInvalidGrant, "refresh token is unknown")
		return
	}
	if rt.ClientID != client.ClientID {
		metrics.RecordTokenGrantError("refresh_token", string(errInvalidGrant))
		writeTokenError(w, errInvalidGrant, "refresh token was not issued to this client")
		return
	}

	now := h.now()
	if rt.RevokedAt != nil {
		// Reuse of an already-rotated-out token: the whole chain is
		// compromised, revoke it entirely.
		_, _ = h.store.RevokeChain(ctx, rt.ChainID)
		h.auditLog.LogTokenOutcome(ctx, src, audit.EventTypeTokenRevoked, client.ClientID, "refresh_token", "reuse_detected")
		metrics.RecordRefreshTokenReuse()
		metrics.RecordTokenGrantError("refresh_token", string(errInvalidGrant))
		writeTokenError(w, errInvalidGrant, "refresh token was already used")
		return
	}
	if now.After(rt.ExpiresAt) {
		metrics.RecordTokenGrantError("refresh_token", string(errInvalidGrant))
		writeTokenError(w, errInvalidGrant, "refresh token has expired")
		return
	}

	scopes := rt.Scopes
	if requested := r.PostForm.Get("scope"); requested != "" {
		narrowed := scopeTokens(requested)
		if !scopeSubset(narrowed, rt.Scopes) {
			metrics.RecordTokenGrantError("refresh_token", string(errInvalidScope))
			writeTokenError(w, errInvalidScope, "requested scope exceeds the original grant")
			return
		}
		scopes = narrowed
	}

	if err := h.store.RevokeRefreshToken(ctx, hash); err != nil {
		metrics.RecordTokenGrantError("refresh_token", string(errServerError))
		writeTokenError(w, errServerError, "failed to rotate refresh token")
		return
	}

	access, err := h.mintAccessToken(client.ClientID, rt.Subject, scopes, now)
	if err != nil {
		metrics.RecordTokenGrantError("refresh_token", string(errServerError))
		writeTokenError(w, errServerError, "failed to mint access token")
		return
	}
	newRefresh, newHash, err := newOpaqueToken()
	if err != nil {
		metrics.RecordTokenGrantError("refresh_token", string(errServerError))
		writeTokenError(w, errServerError, "failed to mint refresh token")
		return
	}
	next := &repository.RefreshToken{
		TokenHash: newHash,
		ClientID:  client.ClientID,
		Subject:   rt.Subject,
		Scopes:    scopes,
		ChainID:   rt.ChainID,
		IssuedAt:  now,
		ExpiresAt: now.Add(h.cfg.RefreshTokenTTL),
	}
	if err := h.store.InsertRefreshToken(ctx, next); err != nil {
		metrics.RecordTokenGrantError("refresh_token", string(errServerError))
		writeTokenError(w, errServerError, "failed to persist refresh token")
		return
	}

	h.auditLog.LogTokenOutcome(ctx, src, audit.EventTypeTokenIssued, client.ClientID, "refresh_token", "")
	metrics.RecordTokenIssued("refresh_token", "access")
	metrics.RecordTokenIssued("refresh_token", "refresh")
	writeTokenSuccess(w, tokenResponse{
		AccessToken:  access,
		TokenType:    "Bearer",
		ExpiresIn:    int64(h.cfg.AccessTokenTTL.Seconds()),
		RefreshToken: newRefresh,
		Scope:        strings.Join(scopes, " "),
	})
}

func writeTokenSuccess(w http.ResponseWriter, resp tokenResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	_ = json.NewEncoder(w).Encode(resp)
}

// mintAccessToken issues a signed, stateless bearer access token: there
// is no server-side access-token row to revoke, so lifetime is bounded
// purely by AccessTokenTTL and verification is a signature check plus
// expiry, mirroring how userinfo.go and any resource server would
// validate it.
func (h *Handler) mintAccessToken(clientID, subject string, scopes []string, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iss":   h.cfg.IssuerURL,
		"aud":   clientID,
		"sub":   subject,
		"scope": strings.Join(scopes, " "),
		"iat":   now.Unix(),
		"exp":   now.Add(h.cfg.AccessTokenTTL).Unix(),
		"jti":   uuid.NewString(),
	}
	token := jwt.NewWithClaims(signingMethodMLDSA{}, claims)
	token.Header["kid"] = h.signer.KeyID
	signed, err := token.SignedString(h.signer)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// parseAccessToken verifies a bearer access token's signature and
// standard claims, returning its parsed claims on success.
func (h *Handler) parseAccessToken(raw string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != crypto.SigningAlg {
			return nil, fmt.Errorf("unexpected signing algorithm %q", t.Method.Alg())
		}
		pub, err := h.signer.PublicKeyBytes()
		if err != nil {
			return nil, err
		}
		return pub, nil
	}, jwt.WithValidMethods([]string{crypto.SigningAlg}), jwt.WithLeeway(60*time.Second))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("oidc: invalid access token claims")
	}
	return claims, nil
}

func newOpaqueToken() (raw, hash string, err error) {
	raw, err = randomID()
	if err != nil {
		return "", "", err
	}
	return raw, hashToken(raw), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func hasScope(scopes []string, want string) bool {
	for _, s := range scopes {
		if s == want {
			return true
		}
	}
	return false
}

func scopeSubset(narrowed, original []string) bool {
	allowed := make(map[string]bool, len(original))
	for _, s := range original {
		allowed[s] = true
	}
	for _, s := range narrowed {
		if !allowed[s] {
			return false
		}
	}
	return true
}
