// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// InsertClient stores a new client. Returns ErrAlreadyExists if client_id
// is already registered (client_id is immutable once assigned).
func (s *Store) InsertClient(_ context.Context, c *Client) error {
	key := []byte(prefixClient + c.ClientID)

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return ErrAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get client: %w", err)
		}

		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal client: %w", err)
		}
		return txn.Set(key, data)
	})
}

// GetClientByClientID looks up a client by its public client_id.
func (s *Store) GetClientByClientID(_ context.Context, clientID string) (*Client, error) {
	var c Client
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixClient + clientID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get client: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &c)
		})
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteClient removes a client registration.
func (s *Store) DeleteClient(_ context.Context, clientID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(prefixClient + clientID)
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		return txn.Delete(key)
	})
}

// ListClients returns up to limit clients starting after offset, ordered
// by key (client_id), for the admin surface's paginated listing.
func (s *Store) ListClients(_ context.Context, limit, offset int) ([]*Client, int, error) {
	var clients []*Client
	total := 0

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixClient)
		skipped := 0
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			total++
			if skipped < offset {
				skipped++
				continue
			}
			if len(clients) >= limit {
				continue
			}
			var c Client
			item := it.Item()
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &c)
			}); err != nil {
				return fmt.Errorf("unmarshal client: %w", err)
			}
			clients = append(clients, &c)
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}

	return clients, total, nil
}
