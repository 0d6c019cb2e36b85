// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// nullifierKey composes the (nullifier_hash, domain) composite key that
// must be unique.
func nullifierKey(hash, domain string) []byte {
	return []byte(prefixNullifier + hash + ":" + domain)
}

// InsertUnique implements nullifier.Store. It atomically inserts
// (hash, domain) and reports whether the insert was fresh.
func (s *Store) InsertUnique(_ context.Context, hash, domain, circuitType string) (bool, error) {
	key := nullifierKey(hash, domain)
	inserted := false

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			inserted = false
			return nil
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get nullifier: %w", err)
		}

		rec := NullifierRecord{
			NullifierHash: hash,
			Domain:        domain,
			CircuitType:   circuitType,
			CreatedAt:     time.Now(),
		}
		data, err := json.Marshal(&rec)
		if err != nil {
			return fmt.Errorf("marshal nullifier: %w", err)
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}
		inserted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return inserted, nil
}

// CountNullifiers returns the total number of recorded nullifiers, used by
// the admin health endpoint and tests.
func (s *Store) CountNullifiers(_ context.Context) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixNullifier)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}
