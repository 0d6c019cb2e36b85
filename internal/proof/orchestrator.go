// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package proof

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fantasma/fantasma/internal/logging"
	"github.com/fantasma/fantasma/internal/metrics"
	"github.com/fantasma/fantasma/internal/repository"
)

// ErrNotFound is returned by Status/Wait for an unknown proof id.
var ErrNotFound = errors.New("proof not found")

// Config tunes the orchestrator's worker pool and reclaim policy.
type Config struct {
	// Workers is the number of concurrent suture.Service workers draining
	// the Pending queue.
	Workers int
	// QueueSize bounds the in-memory job channel; Submit still succeeds
	// (the job is durable in Pending) if the channel is momentarily full,
	// the reclaimer will pick it up.
	QueueSize int
	// ReclaimAfter is how long a job may sit Pending before the reclaimer
	// considers it abandoned and re-enqueues (or fails) it.
	ReclaimAfter time.Duration
	// ReclaimInterval is how often the reclaimer scans for stale jobs.
	ReclaimInterval time.Duration
	// MaxAttempts bounds retries of transient prover failures before a
	// job is given up on and marked Failed.
	MaxAttempts int
	// BackoffBase is the starting delay for exponential backoff between
	// retry attempts.
	BackoffBase time.Duration
}

// DefaultConfig returns production-sane orchestrator defaults.
func DefaultConfig() Config {
	return Config{
		Workers:         4,
		QueueSize:       256,
		ReclaimAfter:    2 * time.Minute,
		ReclaimInterval: 30 * time.Second,
		MaxAttempts:     5,
		BackoffBase:     250 * time.Millisecond,
	}
}

// Orchestrator drives the Pending -> Generating -> {Complete, Failed} job
// state machine described by this package's proving contract.
type Orchestrator struct {
	store    Store
	backend  ProverBackend
	verifier Verifier
	cfg      Config
	jobs     chan string

	mu       sync.Mutex
	witness  map[string]Witness // in-flight witnesses; never persisted
}

// NewOrchestrator constructs an Orchestrator. backend is typically a
// BreakerBackend wrapping the real prover client; verifier is typically a
// STARKVerifier.
func NewOrchestrator(store Store, backend ProverBackend, verifier Verifier, cfg Config) *Orchestrator {
	return &Orchestrator{
		store:    store,
		backend:  backend,
		verifier: verifier,
		cfg:      cfg,
		jobs:     make(chan string, cfg.QueueSize),
		witness:  make(map[string]Witness),
	}
}

// Submit durably records a new Pending job and returns its opaque id. It
// does not block on proof generation.
func (o *Orchestrator) Submit(ctx context.Context, w Witness) (string, error) {
	proofID := uuid.NewString()
	now := time.Now()

	p := &repository.Proof{
		ProofID:      proofID,
		CircuitType:  w.CircuitID,
		State:        repository.ProofPending,
		PublicInputs: w.PublicInputs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := o.store.InsertProof(ctx, p); err != nil {
		return "", fmt.Errorf("insert proof: %w", err)
	}

	o.mu.Lock()
	o.witness[proofID] = w
	o.mu.Unlock()

	o.enqueue(proofID)

	return proofID, nil
}

// enqueue offers a job to the worker pool without blocking; a full queue
// just leaves the job for the reclaimer to pick up on its next sweep.
func (o *Orchestrator) enqueue(proofID string) {
	select {
	case o.jobs <- proofID:
	default:
		logging.Warn().Str("proof_id", proofID).Msg("proof worker queue full, deferring to reclaimer")
	}
	metrics.SetProofQueueDepth(len(o.jobs))
}

// Status returns the current, monotonically-advancing state of proofID.
func (o *Orchestrator) Status(ctx context.Context, proofID string) (Status, error) {
	p, err := o.store.GetProof(ctx, proofID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Status{}, ErrNotFound
		}
		return Status{}, fmt.Errorf("get proof: %w", err)
	}
	return statusFromProof(p), nil
}

// Wait polls Status every pollInterval, up to attempts times, returning as
// soon as the job reaches a terminal state or the attempt budget is spent
// (in which case the last observed status is returned, not an error).
func (o *Orchestrator) Wait(ctx context.Context, proofID string, pollInterval time.Duration, attempts int) (Status, error) {
	var last Status
	for i := 0; i < attempts; i++ {
		st, err := o.Status(ctx, proofID)
		if err != nil {
			return Status{}, err
		}
		last = st
		if st.State == string(repository.ProofComplete) || st.State == string(repository.ProofFailed) {
			return st, nil
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
	return last, nil
}

func statusFromProof(p *repository.Proof) Status {
	return Status{
		ProofID:   p.ProofID,
		State:     string(p.State),
		ProofHash: p.ProofHash,
		Verified:  p.Verified,
		Error:     p.Error,
	}
}
