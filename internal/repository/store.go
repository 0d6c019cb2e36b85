// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package repository

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Key prefixes, one per entity, following a session/user-style
// key-prefix convention.
const (
	prefixClient       = "client:"
	prefixAuthCode     = "auth_code:"
	prefixRefreshToken = "refresh_token:"
	prefixProof        = "proof:"
	prefixNullifier    = "nullifier:"
	prefixIssuer       = "issuer:"
	prefixAudit        = "audit:"
)

// Store is the BadgerDB-backed implementation of every repository
// interface Fantasma's domain packages depend on (nullifier.Store,
// audit.Store, and the data-access needs of internal/oidc and
// internal/proof).
type Store struct {
	db *badger.DB
}

// Open opens (creating if necessary) a BadgerDB instance at dir. Passing
// an empty dir opens an in-memory instance, used by tests.
func Open(dir string) (*Store, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(dir)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying BadgerDB handle.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close badger store: %w", err)
	}
	return nil
}

// RunGC runs one round of BadgerDB's value-log garbage collection. Callers
// (the reclaimer service) invoke this periodically; a nil return from
// badger.ErrNoRewrite means there was nothing to reclaim and is not an
// error condition worth propagating.
func (s *Store) RunGC(discardRatio float64) error {
	err := s.db.RunValueLogGC(discardRatio)
	if err != nil && err != badger.ErrNoRewrite {
		return fmt.Errorf("run value log gc: %w", err)
	}
	return nil
}
