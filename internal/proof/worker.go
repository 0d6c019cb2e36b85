// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package proof

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fantasma/fantasma/internal/logging"
	"github.com/fantasma/fantasma/internal/metrics"
	"github.com/fantasma/fantasma/internal/repository"
)

// WorkerService returns a suture.Service (satisfying Serve(ctx) error)
// draining the orchestrator's job channel. Add one per configured worker
// to the supervisor tree's proving layer.
func (o *Orchestrator) WorkerService() *workerService {
	return &workerService{orch: o}
}

type workerService struct {
	orch *Orchestrator
}

// Serve implements suture.Service, matching the MockService shape this
// package's worker is modeled on: it runs until ctx is canceled or it
// returns an error, at which point the supervisor restarts it.
func (w *workerService) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case proofID := <-w.orch.jobs:
			w.process(ctx, proofID)
		}
	}
}

func (w *workerService) String() string {
	return "proof-worker"
}

func (w *workerService) process(ctx context.Context, proofID string) {
	o := w.orch

	o.mu.Lock()
	wit, ok := o.witness[proofID]
	o.mu.Unlock()
	if !ok {
		// The witness only lives in memory; if it is gone (process
		// restart, reclaimer picked up a job this worker never held) the
		// job cannot be resumed and is terminally failed.
		o.fail(ctx, proofID, "witness_lost")
		return
	}

	p, err := o.store.GetProof(ctx, proofID)
	if err != nil {
		logging.Error().Err(err).Str("proof_id", proofID).Msg("proof worker: load proof")
		return
	}
	p.State = repository.ProofGenerating
	p.UpdatedAt = time.Now()
	if err := o.store.UpdateProof(ctx, p); err != nil {
		logging.Error().Err(err).Str("proof_id", proofID).Msg("proof worker: mark generating")
		return
	}

	result, err := w.proveWithRetry(ctx, wit)
	if err != nil {
		o.fail(ctx, proofID, err.Error())
		return
	}

	verified, err := o.verifier.Verify(wit.CircuitID, result.ProofBytes, wit.PublicInputs)
	if err != nil {
		o.fail(ctx, proofID, fmt.Sprintf("verify: %v", err))
		return
	}

	p.State = repository.ProofComplete
	p.ProofBytes = result.ProofBytes
	p.ProofHash = result.ProofHash
	p.Verified = verified
	p.UpdatedAt = time.Now()
	if err := o.store.UpdateProof(ctx, p); err != nil {
		logging.Error().Err(err).Str("proof_id", proofID).Msg("proof worker: mark complete")
		return
	}
	metrics.RecordProofJob(wit.CircuitID, "verified", time.Since(p.CreatedAt))

	o.mu.Lock()
	delete(o.witness, proofID)
	o.mu.Unlock()
}

// proveWithRetry retries transient prover failures with exponential
// backoff; a witness-invalid result returns immediately without retry.
func (w *workerService) proveWithRetry(ctx context.Context, wit Witness) (ProveResult, error) {
	o := w.orch
	backoff := o.cfg.BackoffBase

	var lastErr error
	for attempt := 0; attempt < o.cfg.MaxAttempts; attempt++ {
		result, err := o.backend.Prove(ctx, wit)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, ErrWitnessInvalid) {
			return ProveResult{}, err
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return ProveResult{}, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return ProveResult{}, fmt.Errorf("prover exhausted %d attempts: %w", o.cfg.MaxAttempts, lastErr)
}

// fail marks proofID terminally Failed with reason.
func (o *Orchestrator) fail(ctx context.Context, proofID, reason string) {
	p, err := o.store.GetProof(ctx, proofID)
	if err != nil {
		logging.Error().Err(err).Str("proof_id", proofID).Msg("proof worker: load proof for failure")
		return
	}
	p.State = repository.ProofFailed
	p.Error = reason
	p.UpdatedAt = time.Now()
	if err := o.store.UpdateProof(ctx, p); err != nil {
		logging.Error().Err(err).Str("proof_id", proofID).Msg("proof worker: mark failed")
	}
	metrics.RecordProofJob(p.CircuitType, "failed", time.Since(p.CreatedAt))

	o.mu.Lock()
	delete(o.witness, proofID)
	o.mu.Unlock()
}
