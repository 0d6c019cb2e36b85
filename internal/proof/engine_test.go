// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package proof

import (
	"crypto/sha256"
	"testing"
)

// buildValidProof hand-assembles proof bytes that pass STARKVerifier.Verify
// for the given circuit/public inputs, mirroring what an honest prover
// would produce.
func buildValidProof(t *testing.T, circuitID string, publicInputs map[string]any) []byte {
	t.Helper()

	canonical, err := canonicalizeInputs(publicInputs)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}

	proofBytes := make([]byte, 256)
	for i := range proofBytes {
		proofBytes[i] = byte(i)
	}

	root := expectedMerkleRoot(circuitID, canonical)
	copy(proofBytes[32:64], root)

	challenge := fiatShamirChallenge(circuitID, proofBytes, canonical)
	for i := 0; i < numFRIQueries; i++ {
		pos := queryPosition(challenge, i)
		fixupQueryAtPosition(proofBytes, pos)
	}

	return proofBytes
}

// expectedMerkleRoot mirrors verifyMerkleRoot's recomputation so the test
// fixture can assemble a proof that is actually consistent with its claim.
func expectedMerkleRoot(circuitID string, canonicalInputs []byte) []byte {
	h := sha256.New()
	h.Write([]byte("fantasma/merkle-root/v1"))
	h.Write([]byte(circuitID))
	h.Write(canonicalInputs)
	return h.Sum(nil)
}

func fixupQueryAtPosition(proofBytes []byte, position int) {
	span := len(proofBytes) - 4
	offset := position % span
	if offset < 0 {
		offset += span
	}
	// Mutate the chunk until its checksum is nonzero; in practice a real
	// prover's committed evaluations already satisfy this with
	// overwhelming probability.
	for i := 0; i < 256; i++ {
		proofBytes[offset] = byte(i)
		if checksum(proofBytes[offset:offset+4], position) != 0 {
			return
		}
	}
}

func TestSTARKVerifier_ValidProofVerifies(t *testing.T) {
	v := NewSTARKVerifier()
	inputs := map[string]any{"threshold": 18}
	proofBytes := buildValidProof(t, "age_verification_v1", inputs)

	ok, err := v.Verify("age_verification_v1", proofBytes, inputs)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Error("expected a correctly-assembled proof to verify")
	}
}

func TestSTARKVerifier_TooShort(t *testing.T) {
	v := NewSTARKVerifier()
	_, err := v.Verify("age_verification_v1", make([]byte, 10), map[string]any{})
	if err == nil {
		t.Error("expected ErrProofTooShort")
	}
}

func TestSTARKVerifier_TamperedPublicInputsFail(t *testing.T) {
	v := NewSTARKVerifier()
	inputs := map[string]any{"threshold": 18}
	proofBytes := buildValidProof(t, "age_verification_v1", inputs)

	ok, err := v.Verify("age_verification_v1", proofBytes, map[string]any{"threshold": 21})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Error("expected verification to fail when public inputs no longer match the committed root")
	}
}

func TestSTARKVerifier_WrongCircuitFails(t *testing.T) {
	v := NewSTARKVerifier()
	inputs := map[string]any{"threshold": 18}
	proofBytes := buildValidProof(t, "age_verification_v1", inputs)

	ok, err := v.Verify("kyc_verification_v1", proofBytes, inputs)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Error("expected verification to fail for a mismatched circuit id")
	}
}
