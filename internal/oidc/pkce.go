// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package oidc

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

// verifyPKCE checks code_verifier against the stored code_challenge: for
// S256 the verifier's SHA-256, base64url-no-padding, must equal the
// stored challenge; method "plain" compares the verifier to the
// challenge directly.
func verifyPKCE(method, challenge, verifier string) bool {
	if challenge == "" {
		// No PKCE was bound to this code; nothing to verify.
		return verifier == ""
	}
	switch method {
	case "", "plain":
		return subtle.ConstantTimeCompare([]byte(verifier), []byte(challenge)) == 1
	case "S256":
		sum := sha256.Sum256([]byte(verifier))
		computed := base64.RawURLEncoding.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(computed), []byte(challenge)) == 1
	default:
		return false
	}
}
