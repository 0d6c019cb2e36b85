// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

/*
Package crypto collects the cryptographic primitives used throughout
Fantasma: domain-separated Poseidon hashing for nullifier and pseudonym
inputs, SHA3-256 for proof and nullifier digests, AES-256-GCM with an
HKDF-derived key for credential-blob encryption, PBKDF2-HMAC-SHA256 for
client-secret-derived key material, Argon2id for at-rest client secret
hashing, and a post-quantum (Dilithium3 / ML-DSA) signer for issuer
signatures and ID token JWS.

None of these are custom constructions; this package is a thin,
consistently-erroring wrapper over golang.org/x/crypto,
github.com/iden3/go-iden3-crypto, and github.com/cloudflare/circl.
*/
package crypto
