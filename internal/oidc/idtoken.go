// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package oidc

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fantasma/fantasma/internal/crypto"
	"github.com/fantasma/fantasma/internal/repository"
)

//nolint:gochecknoinits // registering a custom jwt.SigningMethod must happen before any SignedString call
func init() {
	jwt.RegisterSigningMethod(crypto.SigningAlg, func() jwt.SigningMethod {
		return signingMethodMLDSA{}
	})
}

// signingMethodMLDSA adapts internal/crypto's Dilithium3 Signer to
// golang-jwt/jwt/v5's pluggable jwt.SigningMethod interface, so ID tokens
// are built and parsed with the same header/claims machinery the rest of
// the OIDC ecosystem uses even though ML-DSA has no native jwt/v5 support.
type signingMethodMLDSA struct{}

func (signingMethodMLDSA) Alg() string { return crypto.SigningAlg }

func (signingMethodMLDSA) Sign(signingString string, key interface{}) ([]byte, error) {
	signer, ok := key.(*crypto.Signer)
	if !ok {
		return nil, errors.New("oidc: signing key must be *crypto.Signer")
	}
	return signer.Sign([]byte(signingString)), nil
}

func (signingMethodMLDSA) Verify(signingString string, sig []byte, key interface{}) error {
	switch k := key.(type) {
	case *crypto.Signer:
		if !k.Verify([]byte(signingString), sig) {
			return jwt.ErrTokenSignatureInvalid
		}
		return nil
	case []byte:
		ok, err := crypto.VerifyWithPublicKeyBytes(k, []byte(signingString), sig)
		if err != nil {
			return fmt.Errorf("verify ML-DSA signature: %w", err)
		}
		if !ok {
			return jwt.ErrTokenSignatureInvalid
		}
		return nil
	default:
		return errors.New("oidc: verification key must be *crypto.Signer or []byte")
	}
}

// zkClaimView is the ID token's per-claim attestation shape: zk_claims
// maps each claim kind to {satisfied, parameters, proof_ref:
// {id,hash,circuit_id}, verified_at}.
type zkClaimView struct {
	Satisfied bool           `json:"satisfied"`
	Parameters map[string]any `json:"parameters,omitempty"`
	ProofRef   proofRefView   `json:"proof_ref"`
	VerifiedAt int64          `json:"verified_at"`
}

type proofRefView struct {
	ID        string `json:"id"`
	Hash      string `json:"hash"`
	CircuitID string `json:"circuit_id"`
}

// mintIDToken builds and signs the ID token for a completed flow. aud is
// the client_id; sub is the wallet-supplied pseudonym; authTime is the
// unix time consent was granted.
func (h *Handler) mintIDToken(clientID, subject, nonce string, authTime time.Time, claims []repository.ZKClaimEntry) (string, error) {
	now := h.now()

	zkClaims := make(map[string]zkClaimView, len(claims))
	for _, c := range claims {
		zkClaims[c.Kind] = zkClaimView{
			Satisfied:  true,
			Parameters: c.Parameters,
			ProofRef: proofRefView{
				ID:        c.ProofID,
				Hash:      c.ProofHash,
				CircuitID: c.CircuitID,
			},
			VerifiedAt: c.VerifiedAt.Unix(),
		}
	}

	mapClaims := jwt.MapClaims{
		"iss":       h.cfg.IssuerURL,
		"aud":       clientID,
		"sub":       subject,
		"iat":       now.Unix(),
		"exp":       now.Add(h.cfg.AccessTokenTTL).Unix(),
		"auth_time": authTime.Unix(),
		"zk_claims": zkClaims,
	}
	if nonce != "" {
		mapClaims["nonce"] = nonce
	}

	token := jwt.NewWithClaims(signingMethodMLDSA{}, mapClaims)
	token.Header["kid"] = h.signer.KeyID

	signed, err := token.SignedString(h.signer)
	if err != nil {
		return "", fmt.Errorf("sign id token: %w", err)
	}
	return signed, nil
}
