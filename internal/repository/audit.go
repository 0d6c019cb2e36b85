// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/fantasma/fantasma/internal/audit"
)

// AuditStore is a BadgerDB-backed implementation of audit.Store, replacing
// a SQL-backed durable store with the same key-prefixed Badger instance
// used for every other entity: audit events are part of the durable
// state the issuer must retain.
type AuditStore struct {
	s *Store
}

// NewAuditStore wraps a Store for use as an audit.Store.
func NewAuditStore(s *Store) *AuditStore {
	return &AuditStore{s: s}
}

var _ audit.Store = (*AuditStore)(nil)

// Save persists an audit event.
func (a *AuditStore) Save(_ context.Context, event *audit.Event) error {
	key := []byte(prefixAudit + event.ID)

	return a.s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal audit event: %w", err)
		}
		return txn.Set(key, data)
	})
}

// Get retrieves an event by ID.
func (a *AuditStore) Get(_ context.Context, id string) (*audit.Event, error) {
	var event audit.Event
	err := a.s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixAudit + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get audit event: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &event)
		})
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Query retrieves events matching the filter, newest first.
func (a *AuditStore) Query(_ context.Context, filter audit.QueryFilter) ([]audit.Event, error) {
	var all []audit.Event

	err := a.s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixAudit)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var event audit.Event
			item := it.Item()
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &event)
			}); err != nil {
				return fmt.Errorf("unmarshal audit event: %w", err)
			}
			all = append(all, event)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan audit events: %w", err)
	}

	// Newest first, matching MemoryStore's ordering.
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}

	var results []audit.Event
	for idx := range all {
		if !matchesFilter(&all[idx], &filter) {
			continue
		}
		results = append(results, all[idx])
		if filter.Limit > 0 && len(results) >= filter.Limit+filter.Offset {
			break
		}
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(results) {
			return nil, nil
		}
		results = results[filter.Offset:]
	}
	if filter.Limit > 0 && len(results) > filter.Limit {
		results = results[:filter.Limit]
	}

	return results, nil
}

// Count returns the number of events matching the filter.
func (a *AuditStore) Count(ctx context.Context, filter audit.QueryFilter) (int64, error) {
	filter.Limit = 0
	filter.Offset = 0
	results, err := a.Query(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(results)), nil
}

// Delete removes events older than the given time, for retention cleanup.
func (a *AuditStore) Delete(_ context.Context, olderThan time.Time) (int64, error) {
	var toDelete [][]byte

	err := a.s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixAudit)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var event audit.Event
			item := it.Item()
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &event)
			}); err != nil {
				continue
			}
			if event.Timestamp.Before(olderThan) {
				k := make([]byte, len(item.Key()))
				copy(k, item.Key())
				toDelete = append(toDelete, k)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan audit events for deletion: %w", err)
	}

	var deleted int64
	for _, k := range toDelete {
		if err := a.s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(k)
		}); err != nil {
			continue
		}
		deleted++
	}
	return deleted, nil
}

// matchesFilter mirrors audit.MemoryStore's filter semantics so Badger and
// in-memory stores behave identically for callers.
//
//nolint:gocyclo // complexity inherent to multi-criteria filter matching
func matchesFilter(event *audit.Event, filter *audit.QueryFilter) bool {
	if len(filter.Types) > 0 {
		found := false
		for _, t := range filter.Types {
			if event.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(filter.Severities) > 0 {
		found := false
		for _, sev := range filter.Severities {
			if event.Severity == sev {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(filter.Outcomes) > 0 {
		found := false
		for _, o := range filter.Outcomes {
			if event.Outcome == o {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if filter.ActorID != "" && event.Actor.ID != filter.ActorID {
		return false
	}
	if filter.ActorType != "" && event.Actor.Type != filter.ActorType {
		return false
	}

	if filter.TargetID != "" {
		if event.Target == nil || event.Target.ID != filter.TargetID {
			return false
		}
	}
	if filter.TargetType != "" {
		if event.Target == nil || event.Target.Type != filter.TargetType {
			return false
		}
	}

	if filter.SourceIP != "" && event.Source.IPAddress != filter.SourceIP {
		return false
	}

	if filter.StartTime != nil && event.Timestamp.Before(*filter.StartTime) {
		return false
	}
	if filter.EndTime != nil && event.Timestamp.After(*filter.EndTime) {
		return false
	}

	if filter.CorrelationID != "" && event.CorrelationID != filter.CorrelationID {
		return false
	}
	if filter.RequestID != "" && event.RequestID != filter.RequestID {
		return false
	}

	if filter.SearchText != "" {
		search := strings.ToLower(filter.SearchText)
		if !strings.Contains(strings.ToLower(event.Description), search) &&
			!strings.Contains(strings.ToLower(event.Action), search) {
			return false
		}
	}

	return true
}
