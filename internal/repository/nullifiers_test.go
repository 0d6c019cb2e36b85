// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package repository

import (
	"context"
	"testing"
)

func TestStore_InsertUnique_FirstUseThenReplay(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fresh, err := s.InsertUnique(ctx, "hash-1", "rp.example.com", "age_verification_v1")
	if err != nil {
		t.Fatalf("insert unique: %v", err)
	}
	if !fresh {
		t.Error("expected first insert to be fresh")
	}

	replay, err := s.InsertUnique(ctx, "hash-1", "rp.example.com", "age_verification_v1")
	if err != nil {
		t.Fatalf("insert unique (replay): %v", err)
	}
	if replay {
		t.Error("expected second insert of same (hash, domain) to report replay")
	}
}

func TestStore_InsertUnique_CrossDomainAllowed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.InsertUnique(ctx, "hash-2", "rp-a.example.com", "kyc_verification_v1"); err != nil {
		t.Fatalf("insert unique a: %v", err)
	}

	fresh, err := s.InsertUnique(ctx, "hash-2", "rp-b.example.com", "kyc_verification_v1")
	if err != nil {
		t.Fatalf("insert unique b: %v", err)
	}
	if !fresh {
		t.Error("same nullifier hash under a different domain must be treated as fresh")
	}
}

func TestStore_CountNullifiers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := s.InsertUnique(ctx, "hash-count", "domain-"+string(rune('a'+i)), "age_verification_v1"); err != nil {
			t.Fatalf("insert unique: %v", err)
		}
	}

	count, err := s.CountNullifiers(ctx)
	if err != nil {
		t.Fatalf("count nullifiers: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3, got %d", count)
	}
}
