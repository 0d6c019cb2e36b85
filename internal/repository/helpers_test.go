// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package repository

import "testing"

// newTestStore opens an in-memory BadgerDB instance for the duration of
// the test, closing it on cleanup.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open("")
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return s
}
