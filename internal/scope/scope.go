// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

// Package scope parses the space-separated OIDC scope string of an
// /authorize request into a typed, deduplicated list of zero-knowledge
// claim requests bound to circuit identifiers.
package scope

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the shape of a zero-knowledge claim request.
type Kind string

// Recognized claim kinds.
const (
	KindAgeAtLeast Kind = "AgeAtLeast"
	KindKYCLevel   Kind = "KYCLevel"
	KindCredential Kind = "Credential"
)

// Circuit identifiers, stable strings referenced by the proof orchestrator.
const (
	CircuitAgeVerification   = "age_verification_v1"
	CircuitKYCVerification   = "kyc_verification_v1"
	CircuitCredentialVerify  = "credential_verification_v1"
)

// MaxAge is the highest accepted age threshold; zk:age:121+ is rejected.
const MaxAge = 120

// ClaimRequest is one resolved zero-knowledge claim to prove as part of an
// authorization flow.
type ClaimRequest struct {
	Kind       Kind
	Parameters map[string]any
	CircuitID  string
	// Scope is the original scope token this claim was parsed from, kept
	// for audit logging and for de-duplication diagnostics.
	Scope string
}

// kycLevels maps the textual KYC level to its numeric equivalent.
var kycLevels = map[string]int{
	"basic":      1,
	"enhanced":   2,
	"accredited": 3,
}

// credentialTypes is the closed set of recognised credential subtypes.
var credentialTypes = map[string]bool{
	"degree":     true,
	"license":    true,
	"membership": true,
	"identity":   true,
}

// ErrInvalidScope is returned when `openid` is missing from the scope string.
var ErrInvalidScope = errors.New("invalid_scope")

// ErrScopeNotAllowed is returned when a requested scope is not present in
// the authenticated client's allowed_scopes.
var ErrScopeNotAllowed = errors.New("invalid_scope: scope not allowed for client")

// Resolve parses scopeString into an ordered, deduplicated list of
// ClaimRequest values. allowedScopes, when non-nil, restricts which
// zk:-prefixed scopes the client may request; "openid", "profile", and
// "email" are always permitted.
func Resolve(scopeString string, allowedScopes []string) ([]ClaimRequest, error) {
	tokens := strings.Fields(scopeString)

	var hasOpenID bool
	seen := make(map[string]bool)
	var out []ClaimRequest

	allowed := toSet(allowedScopes)

	for _, tok := range tokens {
		if seen[tok] {
			continue // duplicate scopes collapse
		}
		seen[tok] = true

		switch {
		case tok == "openid":
			hasOpenID = true
			continue
		case tok == "profile" || tok == "email":
			continue // accepted, no claim request produced
		case strings.HasPrefix(tok, "zk:"):
			if allowed != nil && !allowed[tok] {
				return nil, fmt.Errorf("%w: %q", ErrScopeNotAllowed, tok)
			}
			claim, err := parseZKScope(tok)
			if err != nil {
				return nil, err
			}
			out = append(out, claim)
		default:
			return nil, fmt.Errorf("%w: unrecognized scope %q", ErrInvalidScope, tok)
		}
	}

	if !hasOpenID {
		return nil, fmt.Errorf("%w: openid scope is required", ErrInvalidScope)
	}

	return out, nil
}

func parseZKScope(tok string) (ClaimRequest, error) {
	body := strings.TrimPrefix(tok, "zk:")
	parts := strings.SplitN(body, ":", 2)

	switch parts[0] {
	case "age":
		return parseAgeScope(tok, parts)
	case "kyc":
		return parseKYCScope(tok, parts)
	case "credential":
		return parseCredentialScope(tok, parts)
	default:
		return ClaimRequest{}, fmt.Errorf("%w: unknown zk scope %q", ErrInvalidScope, tok)
	}
}

func parseAgeScope(tok string, parts []string) (ClaimRequest, error) {
	if len(parts) != 2 || !strings.HasSuffix(parts[1], "+") {
		return ClaimRequest{}, fmt.Errorf("%w: malformed age scope %q", ErrInvalidScope, tok)
	}
	numStr := strings.TrimSuffix(parts[1], "+")
	n, err := strconv.Atoi(numStr)
	if err != nil || n < 0 || n > MaxAge {
		return ClaimRequest{}, fmt.Errorf("%w: age threshold out of range in %q", ErrInvalidScope, tok)
	}

	return ClaimRequest{
		Kind:       KindAgeAtLeast,
		Parameters: map[string]any{"threshold": n},
		CircuitID:  CircuitAgeVerification,
		Scope:      tok,
	}, nil
}

func parseKYCScope(tok string, parts []string) (ClaimRequest, error) {
	if len(parts) != 2 {
		return ClaimRequest{}, fmt.Errorf("%w: malformed kyc scope %q", ErrInvalidScope, tok)
	}
	level, ok := kycLevels[parts[1]]
	if !ok {
		return ClaimRequest{}, fmt.Errorf("%w: unknown kyc level in %q", ErrInvalidScope, tok)
	}

	return ClaimRequest{
		Kind:       KindKYCLevel,
		Parameters: map[string]any{"level": level},
		CircuitID:  CircuitKYCVerification,
		Scope:      tok,
	}, nil
}

func parseCredentialScope(tok string, parts []string) (ClaimRequest, error) {
	params := map[string]any{}
	if len(parts) == 2 {
		if !credentialTypes[parts[1]] {
			return ClaimRequest{}, fmt.Errorf("%w: unknown credential type in %q", ErrInvalidScope, tok)
		}
		params["type"] = parts[1]
	}

	return ClaimRequest{
		Kind:       KindCredential,
		Parameters: params,
		CircuitID:  CircuitCredentialVerify,
		Scope:      tok,
	}, nil
}

func toSet(values []string) map[string]bool {
	if values == nil {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
