// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

// Package pseudonym implements the subject-identifier grammar Fantasma
// expects from the wallet at consent time, and the reference derivation
// used by tests and tooling.
//
// The master secret never reaches the server: the wallet computes
// subject(master_secret, rp_domain) locally and the server only validates
// that what it receives matches the "zkid:" + 40-hex grammar before
// embedding it as the ID token's `sub` claim.
package pseudonym

import (
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"

	fantasmacrypto "github.com/fantasma/fantasma/internal/crypto"
)

// Prefix is the fixed textual prefix of every pseudonym.
const Prefix = "zkid:"

// DefaultLength is the number of raw bytes retained from the SHA3-256
// digest (160 bits / 40 hex characters), chosen to stay wallet-compatible
// with existing zkid: subject implementations.
const DefaultLength = 20

var grammar = regexp.MustCompile(`^zkid:[0-9a-f]{40}$`)

// ErrInvalidGrammar is returned when a candidate subject does not match the
// "zkid:" + 40-hex grammar.
var ErrInvalidGrammar = errors.New("pseudonym does not match zkid: + 40-hex grammar")

// Validate checks that subject matches the fixed grammar. The server runs
// this on every wallet-supplied subject before using it in an ID token;
// wallet master-secret material is never available to compare against.
func Validate(subject string) error {
	if !grammar.MatchString(subject) {
		return fmt.Errorf("%w: %q", ErrInvalidGrammar, subject)
	}
	return nil
}

// ValidateLength is like Validate but accepts a configurable pseudonym
// byte length, for operators who raise DefaultLength via a configuration
// knob.
func ValidateLength(subject string, length int) error {
	pattern := fmt.Sprintf(`^zkid:[0-9a-f]{%d}$`, length*2)
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("compile pseudonym grammar: %w", err)
	}
	if !re.MatchString(subject) {
		return fmt.Errorf("%w: %q", ErrInvalidGrammar, subject)
	}
	return nil
}

// Derive computes subject(masterSecret, rpDomain). It exists for
// wallet-side reference implementations and for end-to-end tests that need
// to produce a valid pseudonym without a real wallet; the production
// server path never calls this since it never holds the master secret.
func Derive(masterSecret []byte, rpDomain string, length int) string {
	if length <= 0 {
		length = DefaultLength
	}
	digest := fantasmacrypto.SHA3_256(masterSecret, []byte(rpDomain))
	if length > len(digest) {
		length = len(digest)
	}
	return Prefix + hex.EncodeToString(digest[:length])
}
