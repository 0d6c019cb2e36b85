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

// InsertAuthCode stores a newly minted authorization code. Auth codes are
// opaque and assumed globally unique (≥128-bit random), so a collision
// here indicates a caller bug, not a benign race.
func (s *Store) InsertAuthCode(_ context.Context, ac *AuthCode) error {
	key := []byte(prefixAuthCode + ac.Code)

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return ErrAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get auth code: %w", err)
		}

		data, err := json.Marshal(ac)
		if err != nil {
			return fmt.Errorf("marshal auth code: %w", err)
		}
		return txn.Set(key, data)
	})
}

// RedeemOnce atomically checks used_at IS NULL, marks the code used, and
// returns the code row for token issuance. A second redemption of the same
// code — even concurrently — returns ErrAlreadyUsed, enforcing
// at-most-once code redemption.
func (s *Store) RedeemOnce(_ context.Context, code string) (*AuthCode, error) {
	key := []byte(prefixAuthCode + code)
	var ac AuthCode

	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get auth code: %w", err)
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &ac)
		}); err != nil {
			return fmt.Errorf("unmarshal auth code: %w", err)
		}

		if ac.UsedAt != nil {
			return ErrAlreadyUsed
		}
		if time.Now().After(ac.ExpiresAt) {
			return ErrExpired
		}

		now := time.Now()
		ac.UsedAt = &now

		data, err := json.Marshal(&ac)
		if err != nil {
			return fmt.Errorf("marshal auth code: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return nil, err
	}

	return &ac, nil
}

// PurgeExpiredAuthCodes deletes auth codes whose TTL has elapsed, returning
// the count removed. Intended to be run periodically by a background task;
// it is not required for correctness since RedeemOnce independently
// rejects expired codes.
func (s *Store) PurgeExpiredAuthCodes(_ context.Context) (int, error) {
	var expiredKeys [][]byte

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixAuthCode)
		now := time.Now()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var ac AuthCode
			item := it.Item()
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &ac)
			}); err != nil {
				continue
			}
			if now.After(ac.ExpiresAt) {
				k := make([]byte, len(item.Key()))
				copy(k, item.Key())
				expiredKeys = append(expiredKeys, k)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan auth codes: %w", err)
	}

	count := 0
	for _, k := range expiredKeys {
		if err := s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(k)
		}); err != nil {
			continue
		}
		count++
	}
	return count, nil
}
