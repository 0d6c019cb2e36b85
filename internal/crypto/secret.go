// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MiB
	argon2Threads = 4
	argon2KeyLen  = 32
	argon2SaltLen = 16

	// PBKDFIterations is fixed at 600,000.
	PBKDFIterations = 600_000
	pbkdfKeyLen     = 32
)

// ErrInvalidSecretHash is returned when a stored secret hash is malformed.
var ErrInvalidSecretHash = errors.New("invalid client secret hash encoding")

// HashClientSecret hashes a confidential client's secret with Argon2id,
// returning an encoded string of the form
// "$argon2id$v=19$m=<mem>,t=<time>,p=<threads>$<salt>$<hash>" suitable for
// storage on the Client row; every confidential client must carry an
// Argon2id hash of its secret.
func HashClientSecret(secret string) (string, error) {
	if secret == "" {
		return "", errors.New("client secret cannot be empty")
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(secret), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	encoded := fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		argon2Memory, argon2Time, argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)
	return encoded, nil
}

// VerifyClientSecret checks a plaintext secret against an Argon2id hash
// produced by HashClientSecret, in constant time.
func VerifyClientSecret(secret, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrInvalidSecretHash
	}

	var mem uint32
	var t uint32
	var p uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &t, &p); err != nil {
		return false, fmt.Errorf("%w: %s", ErrInvalidSecretHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("%w: decode salt: %s", ErrInvalidSecretHash, err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("%w: decode hash: %s", ErrInvalidSecretHash, err)
	}

	got := argon2.IDKey([]byte(secret), salt, t, mem, p, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// DeriveSecretKey runs PBKDF2-HMAC-SHA256 for 600,000 iterations over a
// confidential client's secret, producing key material used to derive
// per-client symmetric keys (e.g. for request-object decryption) distinct
// from the Argon2id verification hash used at the token endpoint.
func DeriveSecretKey(secret string, salt []byte) []byte {
	return pbkdf2.Key([]byte(secret), salt, PBKDFIterations, pbkdfKeyLen, sha256.New)
}
