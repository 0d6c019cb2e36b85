// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package pseudonym

import (
	"errors"
	"testing"
)

func TestDerive_Deterministic(t *testing.T) {
	secret := []byte("master-secret")
	a := Derive(secret, "rp.test", DefaultLength)
	b := Derive(secret, "rp.test", DefaultLength)
	if a != b {
		t.Fatalf("Derive is not deterministic: %q != %q", a, b)
	}
}

func TestDerive_UnlinkableAcrossDomains(t *testing.T) {
	secret := []byte("master-secret")
	a := Derive(secret, "rp-one.test", DefaultLength)
	b := Derive(secret, "rp-two.test", DefaultLength)
	if a == b {
		t.Fatal("expected distinct RP domains to yield distinct pseudonyms")
	}
}

func TestDerive_MatchesGrammar(t *testing.T) {
	sub := Derive([]byte("secret"), "rp.test", DefaultLength)
	if err := Validate(sub); err != nil {
		t.Fatalf("Validate() error = %v for derived subject %q", err, sub)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		wantErr bool
	}{
		{"valid", "zkid:0123456789abcdef0123456789abcdef01234567", false},
		{"missing prefix", "0123456789abcdef0123456789abcdef01234567", true},
		{"too short", "zkid:0123456789abcdef", true},
		{"uppercase hex rejected", "zkid:0123456789ABCDEF0123456789abcdef01234567", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.subject)
			if tt.wantErr && !errors.Is(err, ErrInvalidGrammar) {
				t.Errorf("Validate(%q) error = %v, want ErrInvalidGrammar", tt.subject, err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate(%q) unexpected error = %v", tt.subject, err)
			}
		})
	}
}
