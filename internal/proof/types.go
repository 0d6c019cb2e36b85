// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package proof

import (
	"context"
	"errors"
	"time"

	"github.com/fantasma/fantasma/internal/repository"
)

// Witness is the wallet-supplied private input to a circuit, submitted
// alongside the public inputs the verifier will later check the proof
// against. The orchestrator never inspects its contents; it is opaque
// bytes handed to the prover backend.
type Witness struct {
	CircuitID    string
	PublicInputs map[string]any
	Private      []byte
}

// ProveResult is what a ProverBackend returns for a successfully generated
// proof.
type ProveResult struct {
	ProofBytes []byte
	ProofHash  string
}

// ErrWitnessInvalid is returned by a ProverBackend when the circuit itself
// rejects the witness (not a transport or availability failure). It is
// terminal: the orchestrator marks the job Failed without retrying.
var ErrWitnessInvalid = errors.New("witness_invalid")

// ProverBackend is the external STARK prover collaborator. Implementations
// talk to whatever actually runs the proving system; the orchestrator only
// needs the (circuit_id, public_inputs, private_inputs) -> (proof_bytes,
// proof_hash) contract.
type ProverBackend interface {
	Prove(ctx context.Context, w Witness) (ProveResult, error)
}

// Verifier checks a generated proof against its claimed public inputs and
// circuit, independent of whatever backend produced it.
type Verifier interface {
	Verify(circuitID string, proofBytes []byte, publicInputs map[string]any) (bool, error)
}

// Status is the orchestrator's external view of one proving job, returned
// by Status and Wait.
type Status struct {
	ProofID   string
	State     string
	ProofHash string
	Verified  bool
	Error     string
}

// Store is the durable side of the proof job state machine. It is
// implemented by internal/repository; the orchestrator and its workers
// depend on this narrow interface so they can be tested without a real
// Badger instance.
type Store interface {
	InsertProof(ctx context.Context, p *repository.Proof) error
	GetProof(ctx context.Context, proofID string) (*repository.Proof, error)
	UpdateProof(ctx context.Context, p *repository.Proof) error
	MarkVerified(ctx context.Context, proofID string, verified bool) error
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]*repository.Proof, error)
}
