// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package oidc

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/fantasma/fantasma/internal/crypto"
)

// discoveryDoc mirrors the subset of the OIDC discovery metadata document
// (RFC/OIDC Discovery 1.0) Fantasma advertises. Field names match
// zitadel/oidc's oidc.DiscoveryConfiguration so any standard OIDC client
// library that merely reads the JSON (not the `alg`-specific crypto) can
// still parse it.
type discoveryDoc struct {
	Issuer                            string   `json:"issuer"`
	AuthorizationEndpoint             string   `json:"authorization_endpoint"`
	TokenEndpoint                     string   `json:"token_endpoint"`
	UserinfoEndpoint                  string   `json:"userinfo_endpoint"`
	JWKSURI                           string   `json:"jwks_uri"`
	ResponseTypesSupported            []string `json:"response_types_supported"`
	GrantTypesSupported               []string `json:"grant_types_supported"`
	SubjectTypesSupported             []string `json:"subject_types_supported"`
	IDTokenSigningAlgValuesSupported  []string `json:"id_token_signing_alg_values_supported"`
	CodeChallengeMethodsSupported     []string `json:"code_challenge_methods_supported"`
	ScopesSupported                   []string `json:"scopes_supported"`
}

// recognizedScopes is the fixed scope catalog advertised in discovery:
// the always-available scopes plus every zk: circuit family and the
// boundary values scope.MaxAge permits.
var recognizedScopes = []string{
	"openid", "profile", "email",
	"zk:age:18+", "zk:age:21+", "zk:age:65+",
	"zk:kyc:basic", "zk:kyc:enhanced", "zk:kyc:accredited",
	"zk:credential", "zk:credential:degree", "zk:credential:license",
	"zk:credential:membership", "zk:credential:identity",
}

const discoveryCacheKey = "oidc:discovery"

func (h *Handler) handleDiscovery(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")

	if body, ok := h.docCache.Get(discoveryCacheKey); ok {
		_, _ = w.Write(body.([]byte))
		return
	}

	doc := discoveryDoc{
		Issuer:                h.cfg.IssuerURL,
		AuthorizationEndpoint: h.cfg.IssuerURL + "/authorize",
		TokenEndpoint:         h.cfg.IssuerURL + "/token",
		UserinfoEndpoint:      h.cfg.IssuerURL + "/userinfo",
		JWKSURI:               h.cfg.IssuerURL + "/jwks",
		ResponseTypesSupported: []string{"code"},
		GrantTypesSupported:    []string{"authorization_code", "refresh_token"},
		SubjectTypesSupported:  []string{"pairwise"},
		IDTokenSigningAlgValuesSupported: []string{crypto.SigningAlg},
		CodeChallengeMethodsSupported:    []string{"S256", "plain"},
		ScopesSupported:                  recognizedScopes,
	}

	body, err := json.Marshal(doc)
	if err != nil {
		writeErrorPage(w, http.StatusInternalServerError, "failed to encode discovery document")
		return
	}
	h.docCache.Set(discoveryCacheKey, body)
	_, _ = w.Write(body)
}

// jwkDoc is one ML-DSA public key entry, using the "AKP" (Algorithm Key
// Pair) JOSE key type draft conventions for post-quantum signature keys:
// a bare "pub" member carrying the raw public key bytes, since ML-DSA has
// no standardized x5c/n/e-style decomposition.
type jwkDoc struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	Pub string `json:"pub"`
}

type jwksDoc struct {
	Keys []jwkDoc `json:"keys"`
}

const jwksCacheKey = "oidc:jwks"

func (h *Handler) handleJWKS(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")

	if body, ok := h.docCache.Get(jwksCacheKey); ok {
		_, _ = w.Write(body.([]byte))
		return
	}

	pub, err := h.signer.PublicKeyBytes()
	if err != nil {
		writeErrorPage(w, http.StatusInternalServerError, "failed to export signing key")
		return
	}

	doc := jwksDoc{Keys: []jwkDoc{
		{
			Kty: "AKP",
			Use: "sig",
			Alg: crypto.SigningAlg,
			Kid: h.signer.KeyID,
			Pub: base64.RawURLEncoding.EncodeToString(pub),
		},
	}}

	body, err := json.Marshal(doc)
	if err != nil {
		writeErrorPage(w, http.StatusInternalServerError, "failed to encode JWKS document")
		return
	}
	h.docCache.SetWithTTL(jwksCacheKey, body, 5*time.Minute)
	_, _ = w.Write(body)
}
