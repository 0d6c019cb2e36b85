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

// InsertProof records a new proving job in the Pending state.
func (s *Store) InsertProof(_ context.Context, p *Proof) error {
	key := []byte(prefixProof + p.ProofID)

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return ErrAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get proof: %w", err)
		}

		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal proof: %w", err)
		}
		return txn.Set(key, data)
	})
}

// GetProof retrieves a proof row by id.
func (s *Store) GetProof(_ context.Context, proofID string) (*Proof, error) {
	var p Proof
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixProof + proofID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get proof: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProof overwrites a proof row in place. Used by the orchestrator to
// drive the Pending → Generating → {Complete, Failed} transitions.
func (s *Store) UpdateProof(_ context.Context, p *Proof) error {
	key := []byte(prefixProof + p.ProofID)
	p.UpdatedAt = time.Now()

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal proof: %w", err)
		}
		return txn.Set(key, data)
	})
}

// MarkVerified flips a Complete proof's verified flag, the final step of
// the orchestrator's pipeline before an ID token may reference it.
func (s *Store) MarkVerified(_ context.Context, proofID string, verified bool) error {
	key := []byte(prefixProof + proofID)

	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get proof: %w", err)
		}

		var p Proof
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		}); err != nil {
			return fmt.Errorf("unmarshal proof: %w", err)
		}

		p.Verified = verified
		p.UpdatedAt = time.Now()

		data, err := json.Marshal(&p)
		if err != nil {
			return fmt.Errorf("marshal proof: %w", err)
		}
		return txn.Set(key, data)
	})
}

// ListProofs returns a page of proofs for the admin surface, newest first
// is not guaranteed (BadgerDB iterates in key order); callers needing
// recency order should sort on CreatedAt.
func (s *Store) ListProofs(_ context.Context, limit, offset int) ([]*Proof, int, error) {
	var proofs []*Proof
	total := 0

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixProof)
		skipped := 0
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			total++
			if skipped < offset {
				skipped++
				continue
			}
			if len(proofs) >= limit {
				continue
			}
			var p Proof
			item := it.Item()
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			}); err != nil {
				return fmt.Errorf("unmarshal proof: %w", err)
			}
			proofs = append(proofs, &p)
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list proofs: %w", err)
	}

	return proofs, total, nil
}

// ListPendingOlderThan returns Pending proofs whose CreatedAt predates
// cutoff, for the reclaimer service's periodic re-enqueue of jobs older
// than a configurable reclaim threshold.
func (s *Store) ListPendingOlderThan(_ context.Context, cutoff time.Time) ([]*Proof, error) {
	var proofs []*Proof

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixProof)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var p Proof
			item := it.Item()
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			}); err != nil {
				continue
			}
			if p.State == ProofPending && p.CreatedAt.Before(cutoff) {
				proofs = append(proofs, &p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan pending proofs: %w", err)
	}

	return proofs, nil
}
