// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	credentialBlobSalt = "fantasma-credential-blob"
	credentialBlobInfo = "credential-encryption-v1"

	aesKeySize  = 32
	gcmNonceLen = 12
)

var (
	// ErrEmptySigningKey is returned when an empty signing key is supplied to the blob cipher.
	ErrEmptySigningKey = errors.New("signing key material cannot be empty")
	// ErrEmptyPlaintext is returned when attempting to encrypt empty data.
	ErrEmptyPlaintext = errors.New("plaintext cannot be empty")
	// ErrCiphertextTooShort is returned when the ciphertext is shorter than nonce+tag.
	ErrCiphertextTooShort = errors.New("ciphertext too short")
	// ErrDecryptionFailed is returned when GCM authentication fails.
	ErrDecryptionFailed = errors.New("decryption failed: invalid ciphertext or authentication tag")
)

// BlobCipher provides AES-256-GCM encryption for the opaque RP-side
// credential blob (spec: "Credential (RP-side): Core stores only an
// encrypted blob + commitment; no attribute leakage at rest"). The key is
// derived via HKDF-SHA256 from the server's signing key material so that
// no separate secret needs distributing.
type BlobCipher struct {
	aead cipher.AEAD
}

// NewBlobCipher derives a 256-bit AES key from signingKeyMaterial via HKDF
// and constructs the AES-256-GCM AEAD.
func NewBlobCipher(signingKeyMaterial []byte) (*BlobCipher, error) {
	if len(signingKeyMaterial) == 0 {
		return nil, ErrEmptySigningKey
	}

	r := hkdf.New(sha256.New, signingKeyMaterial, []byte(credentialBlobSalt), []byte(credentialBlobInfo))
	key := make([]byte, aesKeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive blob key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new aes cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}

	return &BlobCipher{aead: gcm}, nil
}

// Seal encrypts plaintext and returns base64(nonce || ciphertext || tag).
func (c *BlobCipher) Seal(plaintext []byte) (string, error) {
	if len(plaintext) == 0 {
		return "", ErrEmptyPlaintext
	}

	nonce := make([]byte, gcmNonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal.
func (c *BlobCipher) Open(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, ErrCiphertextTooShort
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("base64 decode: %w", err)
	}

	minLen := gcmNonceLen + c.aead.Overhead()
	if len(data) < minLen {
		return nil, ErrCiphertextTooShort
	}

	nonce, ciphertext := data[:gcmNonceLen], data[gcmNonceLen:]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}
