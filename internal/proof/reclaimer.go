// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package proof

import (
	"context"
	"time"

	"github.com/fantasma/fantasma/internal/logging"
	"github.com/fantasma/fantasma/internal/metrics"
)

// ReclaimerService returns a suture.Service that periodically re-enqueues
// Pending jobs older than cfg.ReclaimAfter, recovering from a worker crash
// mid-generation. A job whose witness is no longer held in memory (the
// orchestrator itself restarted) cannot be resumed and is failed instead.
func (o *Orchestrator) ReclaimerService() *reclaimerService {
	return &reclaimerService{orch: o}
}

type reclaimerService struct {
	orch *Orchestrator
}

func (r *reclaimerService) String() string {
	return "proof-reclaimer"
}

// Serve implements suture.Service.
func (r *reclaimerService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(r.orch.cfg.ReclaimInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *reclaimerService) sweep(ctx context.Context) {
	o := r.orch
	cutoff := time.Now().Add(-o.cfg.ReclaimAfter)

	stale, err := o.store.ListPendingOlderThan(ctx, cutoff)
	if err != nil {
		logging.Error().Err(err).Msg("proof reclaimer: list pending")
		return
	}

	for _, p := range stale {
		o.mu.Lock()
		_, hasWitness := o.witness[p.ProofID]
		o.mu.Unlock()

		if !hasWitness {
			o.fail(ctx, p.ProofID, "witness_lost")
			metrics.RecordProofJobReclaimed("witness_lost")
			continue
		}

		logging.Warn().Str("proof_id", p.ProofID).Msg("proof reclaimer: re-enqueuing stale pending job")
		o.enqueue(p.ProofID)
		metrics.RecordProofJobReclaimed("re_enqueued")
	}
}
