// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package proof

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/fantasma/fantasma/internal/logging"
	"github.com/fantasma/fantasma/internal/metrics"
)

// ErrProverUnavailable is surfaced when the breaker is open, so callers can
// map it to the OIDC temporarily_unavailable error rather than treating it
// as a witness failure.
var ErrProverUnavailable = errors.New("prover_unavailable")

// BreakerConfig tunes the circuit breaker guarding the prover backend.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultBreakerConfig returns defaults suitable for a single prover
// backend shared by the whole worker pool.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "stark-prover",
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// BreakerBackend wraps a ProverBackend with a circuit breaker so a
// saturated or down prover fails fast instead of stalling every worker in
// the pool.
type BreakerBackend struct {
	inner ProverBackend
	cb    *gobreaker.CircuitBreaker[ProveResult]
	name  string
}

// NewBreakerBackend constructs a BreakerBackend wrapping inner.
func NewBreakerBackend(inner ProverBackend, cfg BreakerConfig) *BreakerBackend {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("prover circuit breaker state change")
			metrics.SetCircuitBreakerState(name, int(to))
		},
	}

	return &BreakerBackend{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[ProveResult](settings),
		name:  cfg.Name,
	}
}

// Prove implements ProverBackend. A witness-invalid error from inner is
// reported to the breaker as success: it reflects bad client input, not
// prover unavailability, and should never count toward the trip
// threshold.
func (b *BreakerBackend) Prove(ctx context.Context, w Witness) (ProveResult, error) {
	name := b.name
	if b.cb.State() == gobreaker.StateOpen {
		metrics.RecordCircuitBreakerRequest(name, "rejected")
		return ProveResult{}, ErrProverUnavailable
	}

	var witnessErr error
	result, err := b.cb.Execute(func() (ProveResult, error) {
		res, proveErr := b.inner.Prove(ctx, w)
		if errors.Is(proveErr, ErrWitnessInvalid) {
			witnessErr = proveErr
			return res, nil
		}
		return res, proveErr
	})
	if witnessErr != nil {
		metrics.RecordCircuitBreakerRequest(name, "success")
		return ProveResult{}, witnessErr
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.RecordCircuitBreakerRequest(name, "rejected")
		return ProveResult{}, ErrProverUnavailable
	}
	if err != nil {
		metrics.RecordCircuitBreakerRequest(name, "failure")
		return ProveResult{}, err
	}

	metrics.RecordCircuitBreakerRequest(name, "success")
	return result, nil
}
