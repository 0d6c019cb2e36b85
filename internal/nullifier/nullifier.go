// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

// Package nullifier computes nullifier hashes and enforces the
// (nullifier_hash, domain) uniqueness invariant that is Fantasma's sole
// defence against credential replay within a verifier.
package nullifier

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	fantasmacrypto "github.com/fantasma/fantasma/internal/crypto"
	"github.com/fantasma/fantasma/internal/metrics"
)

// ErrReplayDetected is returned when a (nullifier_hash, domain) pair has
// already been recorded. The caller must abort the entire /authorize flow
// before an auth code is minted.
var ErrReplayDetected = errors.New("replay_detected")

// Store is the durable side of nullifier uniqueness enforcement. It is
// implemented by internal/repository; the engine depends on this narrow
// interface rather than the concrete store so it can be tested in
// isolation.
type Store interface {
	// InsertUnique attempts to atomically insert (hash, domain). It
	// returns (true, nil) on a fresh insert and (false, nil) if the pair
	// already exists; any other outcome is a storage error.
	InsertUnique(ctx context.Context, hash, domain, circuitType string) (inserted bool, err error)
}

// Hash computes nullifier_hash = SHA3-256(nullifier) for a wallet-supplied
// nullifier field element, hex-encoded for storage and comparison.
func Hash(nullifierValue *big.Int) string {
	return hex.EncodeToString(fantasmacrypto.SHA3_256(nullifierValue.Bytes()))
}

// Engine enforces replay protection by delegating uniqueness checks to a
// Store.
type Engine struct {
	store Store
}

// NewEngine constructs an Engine backed by store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Record inserts the nullifier hash for a given verifier domain and
// circuit type. It returns ErrReplayDetected if the pair was already
// recorded, and wraps any underlying storage error otherwise.
func (e *Engine) Record(ctx context.Context, nullifierValue *big.Int, domain, circuitType string) error {
	hash := Hash(nullifierValue)

	inserted, err := e.store.InsertUnique(ctx, hash, domain, circuitType)
	if err != nil {
		return fmt.Errorf("insert nullifier: %w", err)
	}
	metrics.RecordNullifierCheck(domain, inserted)
	if !inserted {
		return ErrReplayDetected
	}
	return nil
}
