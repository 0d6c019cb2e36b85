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

// InsertRefreshToken stores a new refresh token, keyed by its SHA-256
// hash; tokens are never stored in plaintext.
func (s *Store) InsertRefreshToken(_ context.Context, rt *RefreshToken) error {
	key := []byte(prefixRefreshToken + rt.TokenHash)

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return ErrAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get refresh token: %w", err)
		}

		data, err := json.Marshal(rt)
		if err != nil {
			return fmt.Errorf("marshal refresh token: %w", err)
		}
		return txn.Set(key, data)
	})
}

// LookupRefreshTokenByHash retrieves a refresh token row by its hash.
func (s *Store) LookupRefreshTokenByHash(_ context.Context, hash string) (*RefreshToken, error) {
	var rt RefreshToken
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixRefreshToken + hash))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get refresh token: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rt)
		})
	})
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// RevokeRefreshToken marks a single refresh token hash as revoked.
func (s *Store) RevokeRefreshToken(_ context.Context, hash string) error {
	key := []byte(prefixRefreshToken + hash)

	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get refresh token: %w", err)
		}

		var rt RefreshToken
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rt)
		}); err != nil {
			return fmt.Errorf("unmarshal refresh token: %w", err)
		}

		if rt.RevokedAt == nil {
			now := time.Now()
			rt.RevokedAt = &now
		}

		data, err := json.Marshal(&rt)
		if err != nil {
			return fmt.Errorf("marshal refresh token: %w", err)
		}
		return txn.Set(key, data)
	})
}

// RevokeChain revokes every refresh token sharing chainID. Used when a
// reused (already-revoked) refresh token is presented, per the
// rotation-with-reuse-detection policy.
func (s *Store) RevokeChain(_ context.Context, chainID string) (int, error) {
	var toRevoke [][]byte

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixRefreshToken)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rt RefreshToken
			item := it.Item()
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rt)
			}); err != nil {
				continue
			}
			if rt.ChainID == chainID && rt.RevokedAt == nil {
				k := make([]byte, len(item.Key()))
				copy(k, item.Key())
				toRevoke = append(toRevoke, k)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan refresh token chain: %w", err)
	}

	count := 0
	now := time.Now()
	for _, k := range toRevoke {
		err := s.db.Update(func(txn *badger.Txn) error {
			item, err := txn.Get(k)
			if err != nil {
				return err
			}
			var rt RefreshToken
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rt)
			}); err != nil {
				return err
			}
			rt.RevokedAt = &now
			data, err := json.Marshal(&rt)
			if err != nil {
				return err
			}
			return txn.Set(k, data)
		})
		if err != nil {
			continue
		}
		count++
	}
	return count, nil
}
