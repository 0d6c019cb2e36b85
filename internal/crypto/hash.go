// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package crypto

import (
	"fmt"
	"math/big"

	"github.com/iden3/go-iden3-crypto/poseidon"
	"golang.org/x/crypto/sha3"
)

// SHA3_256 returns the SHA3-256 digest of data.
func SHA3_256(data ...[]byte) []byte {
	h := sha3.New256()
	for _, d := range data {
		h.Write(d) //nolint:errcheck // hash.Hash.Write never returns an error
	}
	return h.Sum(nil)
}

// PoseidonDomain prefixes a Poseidon hash with a fixed domain-separation
// tag so that inputs used for one purpose (e.g. nullifiers) can never
// collide with inputs hashed for another (e.g. commitments), even if the
// remaining field elements happen to coincide.
type PoseidonDomain string

// Domain tags used across the nullifier and pseudonym engines.
const (
	DomainNullifier  PoseidonDomain = "fantasma/nullifier/v1"
	DomainCommitment PoseidonDomain = "fantasma/commitment/v1"
	DomainRPDomain   PoseidonDomain = "fantasma/rp-domain/v1"
)

// Poseidon hashes a domain tag together with a set of field elements using
// the Poseidon permutation, matching the construction the wallet uses when
// it computes nullifier = Poseidon(credential_leaf, user_secret,
// Poseidon(rp_domain), nonce_tag).
func Poseidon(domain PoseidonDomain, inputs ...*big.Int) (*big.Int, error) {
	tag, err := poseidon.HashBytes([]byte(domain))
	if err != nil {
		return nil, fmt.Errorf("poseidon domain tag: %w", err)
	}

	all := make([]*big.Int, 0, len(inputs)+1)
	all = append(all, tag)
	all = append(all, inputs...)

	out, err := poseidon.Hash(all)
	if err != nil {
		return nil, fmt.Errorf("poseidon hash: %w", err)
	}
	return out, nil
}

// PoseidonString hashes a UTF-8 string into the field via PoseidonHashBytes,
// used for Poseidon(rp_domain) in the nullifier construction.
func PoseidonString(domain PoseidonDomain, s string) (*big.Int, error) {
	b, err := poseidon.HashBytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("poseidon hash bytes: %w", err)
	}
	return Poseidon(domain, b)
}
