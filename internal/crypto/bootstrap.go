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
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/hkdf"
)

const (
	keyFileSalt = "fantasma-signing-key"
	keyFileInfo = "signing-key-encryption-v1"
)

// LoadOrGenerateSigner loads the signing key at path, decrypting it with
// encryptionSecret if one is set, or generates a fresh Dilithium3 keypair
// and persists it there if the file does not yet exist. This is the
// bootstrap path cmd/server runs on every start.
func LoadOrGenerateSigner(keyID, path, encryptionSecret string) (*Signer, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path is operator-controlled configuration
	if errors.Is(err, os.ErrNotExist) {
		signer, genErr := GenerateSigner(keyID)
		if genErr != nil {
			return nil, genErr
		}
		if writeErr := writeSigningKeyFile(signer, path, encryptionSecret); writeErr != nil {
			return nil, writeErr
		}
		return signer, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read signing key %s: %w", path, err)
	}

	plain := raw
	if encryptionSecret != "" {
		plain, err = unwrapSigningKey(raw, encryptionSecret)
		if err != nil {
			return nil, err
		}
	}
	return signerFromRaw(keyID, plain)
}

func writeSigningKeyFile(s *Signer, path, encryptionSecret string) error {
	raw, err := s.priv.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal dilithium3 private key: %w", err)
	}
	if encryptionSecret != "" {
		raw, err = wrapSigningKey(raw, encryptionSecret)
		if err != nil {
			return err
		}
	}
	return os.WriteFile(path, raw, 0o600)
}

func signingKeyAEAD(encryptionSecret string) (cipher.AEAD, error) {
	r := hkdf.New(sha256.New, []byte(encryptionSecret), []byte(keyFileSalt), []byte(keyFileInfo))
	key := make([]byte, aesKeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive signing key wrap key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new aes cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

func wrapSigningKey(plaintext []byte, encryptionSecret string) ([]byte, error) {
	gcm, err := signingKeyAEAD(encryptionSecret)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcmNonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func unwrapSigningKey(ciphertext []byte, encryptionSecret string) ([]byte, error) {
	gcm, err := signingKeyAEAD(encryptionSecret)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcmNonceLen+gcm.Overhead() {
		return nil, ErrCiphertextTooShort
	}
	nonce, sealed := ciphertext[:gcmNonceLen], ciphertext[gcmNonceLen:]
	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plain, nil
}
