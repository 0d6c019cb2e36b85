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

// InsertIssuer registers a new trusted (or untrusted, pending review)
// credential issuer.
func (s *Store) InsertIssuer(_ context.Context, iss *Issuer) error {
	key := []byte(prefixIssuer + iss.IssuerID)

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return ErrAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get issuer: %w", err)
		}

		data, err := json.Marshal(iss)
		if err != nil {
			return fmt.Errorf("marshal issuer: %w", err)
		}
		return txn.Set(key, data)
	})
}

// GetIssuer looks up an issuer by id.
func (s *Store) GetIssuer(_ context.Context, issuerID string) (*Issuer, error) {
	var iss Issuer
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixIssuer + issuerID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get issuer: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &iss)
		})
	})
	if err != nil {
		return nil, err
	}
	return &iss, nil
}

// UpdateIssuer overwrites an issuer row (e.g. toggling Trusted).
func (s *Store) UpdateIssuer(_ context.Context, iss *Issuer) error {
	key := []byte(prefixIssuer + iss.IssuerID)
	iss.UpdatedAt = time.Now()

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		data, err := json.Marshal(iss)
		if err != nil {
			return fmt.Errorf("marshal issuer: %w", err)
		}
		return txn.Set(key, data)
	})
}

// DeleteIssuer removes an issuer registration.
func (s *Store) DeleteIssuer(_ context.Context, issuerID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(prefixIssuer + issuerID)
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		return txn.Delete(key)
	})
}

// ListIssuers returns a page of issuers for the admin surface.
func (s *Store) ListIssuers(_ context.Context, limit, offset int) ([]*Issuer, int, error) {
	var issuers []*Issuer
	total := 0

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixIssuer)
		skipped := 0
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			total++
			if skipped < offset {
				skipped++
				continue
			}
			if len(issuers) >= limit {
				continue
			}
			var iss Issuer
			item := it.Item()
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &iss)
			}); err != nil {
				return fmt.Errorf("unmarshal issuer: %w", err)
			}
			issuers = append(issuers, &iss)
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list issuers: %w", err)
	}

	return issuers, total, nil
}
