// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package repository

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStore_Issuer_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	iss := &Issuer{
		IssuerID:  "issuer-1",
		Name:      "Example KYC Provider",
		Algorithm: IssuerAlgDilithium3,
		PublicKey: []byte{0x01, 0x02, 0x03},
		Trusted:   true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.InsertIssuer(ctx, iss); err != nil {
		t.Fatalf("insert issuer: %v", err)
	}

	got, err := s.GetIssuer(ctx, "issuer-1")
	if err != nil {
		t.Fatalf("get issuer: %v", err)
	}
	if got.Name != iss.Name || !got.Trusted {
		t.Errorf("unexpected issuer: %+v", got)
	}
}

func TestStore_InsertIssuer_Duplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	iss := &Issuer{IssuerID: "issuer-dup", Algorithm: IssuerAlgEd25519, CreatedAt: time.Now()}
	if err := s.InsertIssuer(ctx, iss); err != nil {
		t.Fatalf("insert issuer: %v", err)
	}
	if err := s.InsertIssuer(ctx, iss); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestStore_UpdateIssuer_TogglesTrust(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	iss := &Issuer{IssuerID: "issuer-2", Algorithm: IssuerAlgDilithium3, Trusted: false, CreatedAt: time.Now()}
	if err := s.InsertIssuer(ctx, iss); err != nil {
		t.Fatalf("insert issuer: %v", err)
	}

	iss.Trusted = true
	if err := s.UpdateIssuer(ctx, iss); err != nil {
		t.Fatalf("update issuer: %v", err)
	}

	got, err := s.GetIssuer(ctx, "issuer-2")
	if err != nil {
		t.Fatalf("get issuer: %v", err)
	}
	if !got.Trusted {
		t.Error("expected Trusted to be true after update")
	}
}

func TestStore_DeleteIssuer(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	iss := &Issuer{IssuerID: "issuer-3", Algorithm: IssuerAlgEd25519, CreatedAt: time.Now()}
	if err := s.InsertIssuer(ctx, iss); err != nil {
		t.Fatalf("insert issuer: %v", err)
	}

	if err := s.DeleteIssuer(ctx, "issuer-3"); err != nil {
		t.Fatalf("delete issuer: %v", err)
	}
	if _, err := s.GetIssuer(ctx, "issuer-3"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListIssuers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		iss := &Issuer{IssuerID: "issuer-list-" + string(rune('a'+i)), Algorithm: IssuerAlgDilithium3, CreatedAt: time.Now()}
		if err := s.InsertIssuer(ctx, iss); err != nil {
			t.Fatalf("insert issuer %d: %v", i, err)
		}
	}

	page, total, err := s.ListIssuers(ctx, 2, 0)
	if err != nil {
		t.Fatalf("list issuers: %v", err)
	}
	if total != 4 {
		t.Errorf("expected total 4, got %d", total)
	}
	if len(page) != 2 {
		t.Errorf("expected page size 2, got %d", len(page))
	}
}
