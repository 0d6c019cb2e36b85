// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
)

// SigningAlg is the JOSE `alg` value Fantasma advertises in discovery and
// stamps into every ID token header. There is no IANA-registered JOSE name
// for Dilithium3 yet; Fantasma uses the circl project's working name.
const SigningAlg = "ML-DSA-65"

// KeyID identifies the current signing key in the JWKS document. Fantasma
// rotates by minting a new Signer with a new KeyID and keeping the old
// public key in the JWKS set until the last token it signed expires.
type Signer struct {
	KeyID   string
	pub     *mode3.PublicKey
	priv    *mode3.PrivateKey
}

// GenerateSigner creates a new random Dilithium3 keypair. Used by
// first-run bootstrap and by key-rotation tooling.
func GenerateSigner(keyID string) (*Signer, error) {
	pub, priv, err := mode3.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate dilithium3 keypair: %w", err)
	}
	return &Signer{KeyID: keyID, pub: pub, priv: priv}, nil
}

// LoadSigner reconstructs a Signer from a raw private key file on disk, as
// pointed to by FANTASMA_SIGNING_KEY_PATH.
func LoadSigner(keyID, path string) (*Signer, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path is operator-controlled configuration
	if err != nil {
		return nil, fmt.Errorf("read signing key %s: %w", path, err)
	}
	return signerFromRaw(keyID, raw)
}

// signerFromRaw reconstructs a Signer from an already-decrypted raw
// private key, shared by LoadSigner and LoadOrGenerateSigner.
func signerFromRaw(keyID string, raw []byte) (*Signer, error) {
	priv := new(mode3.PrivateKey)
	if err := priv.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("unmarshal dilithium3 private key: %w", err)
	}
	pub := priv.Public().(*mode3.PublicKey)

	return &Signer{KeyID: keyID, pub: pub, priv: priv}, nil
}

// WritePrivateKey persists the signer's private key material for later
// reload via LoadSigner. Intended for bootstrap / key-rotation tooling, not
// for routine server operation.
func (s *Signer) WritePrivateKey(path string) error {
	raw, err := s.priv.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal dilithium3 private key: %w", err)
	}
	return os.WriteFile(path, raw, 0o600)
}

// Sign produces a Dilithium3 signature over msg (typically a compact JWS
// signing input: base64url(header) + "." + base64url(payload)).
func (s *Signer) Sign(msg []byte) []byte {
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(s.priv, msg, sig)
	return sig
}

// Verify checks a Dilithium3 signature against this signer's public key.
func (s *Signer) Verify(msg, sig []byte) bool {
	return mode3.Verify(s.pub, msg, sig)
}

// PublicKeyBytes returns the raw public key, used to populate the JWKS
// document's key material.
func (s *Signer) PublicKeyBytes() ([]byte, error) {
	b, err := s.pub.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal dilithium3 public key: %w", err)
	}
	return b, nil
}

// VerifyWithPublicKeyBytes verifies a signature against a raw public key,
// used when checking an external issuer's signature rather than the
// server's own (Issuer.public_key_algorithm ∈ {dilithium3, ed25519}).
func VerifyWithPublicKeyBytes(pubBytes, msg, sig []byte) (bool, error) {
	if len(pubBytes) == 0 {
		return false, errors.New("empty public key")
	}
	pub := new(mode3.PublicKey)
	if err := pub.UnmarshalBinary(pubBytes); err != nil {
		return false, fmt.Errorf("unmarshal dilithium3 public key: %w", err)
	}
	return mode3.Verify(pub, msg, sig), nil
}
