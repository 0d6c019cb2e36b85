// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package crypto

import (
	"bytes"
	"errors"
	"testing"
)

func TestBlobCipher_RoundTrip(t *testing.T) {
	c, err := NewBlobCipher([]byte("signing-key-material"))
	if err != nil {
		t.Fatalf("NewBlobCipher() error = %v", err)
	}

	plaintext := []byte(`{"commitment":"0xabc123"}`)
	sealed, err := c.Seal(plaintext)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	opened, err := c.Open(sealed)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Fatalf("round-trip mismatch: got %q want %q", opened, plaintext)
	}
}

func TestBlobCipher_EmptySigningKey(t *testing.T) {
	if _, err := NewBlobCipher(nil); !errors.Is(err, ErrEmptySigningKey) {
		t.Fatalf("expected ErrEmptySigningKey, got %v", err)
	}
}

func TestBlobCipher_TamperedCiphertextFailsAuth(t *testing.T) {
	c, err := NewBlobCipher([]byte("signing-key-material"))
	if err != nil {
		t.Fatalf("NewBlobCipher() error = %v", err)
	}

	sealed, err := c.Seal([]byte("secret-commitment"))
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	tampered := []byte(sealed)
	tampered[len(tampered)-1] ^= 0x01

	if _, err := c.Open(string(tampered)); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestBlobCipher_DistinctKeysFromDistinctMaterial(t *testing.T) {
	a, _ := NewBlobCipher([]byte("key-a"))
	b, _ := NewBlobCipher([]byte("key-b"))

	sealed, err := a.Seal([]byte("payload"))
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if _, err := b.Open(sealed); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("expected cross-key decryption to fail, got %v", err)
	}
}
