// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package repository

import "time"

// ClientType distinguishes public (no secret, PKCE-only) from confidential
// (secret-authenticated) OAuth clients.
type ClientType string

// Client types recognized by the token endpoint.
const (
	ClientPublic       ClientType = "public"
	ClientConfidential ClientType = "confidential"
)

// Client is a registered relying party.
type Client struct {
	ClientID     string     `json:"client_id"`
	ClientType   ClientType `json:"client_type"`
	SecretHash   string     `json:"secret_hash,omitempty"` // Argon2id, confidential only
	RedirectURIs []string   `json:"redirect_uris"`
	AllowedScopes []string  `json:"allowed_scopes"`
	Name         string     `json:"name"`
	CreatedAt    time.Time  `json:"created_at"`
}

// AuthCode is a single-use authorization code minted at consent approval.
// It exclusively owns the zk-claims snapshot and PKCE
// parameters for the flow it belongs to.
type AuthCode struct {
	Code                string         `json:"code"`
	ClientID            string         `json:"client_id"`
	RedirectURI         string         `json:"redirect_uri"`
	Scopes              []string       `json:"scopes"`
	Nonce               string         `json:"nonce"`
	CodeChallenge       string         `json:"code_challenge,omitempty"`
	CodeChallengeMethod string         `json:"code_challenge_method,omitempty"`
	Subject             string         `json:"subject"`
	ZKClaims            []ZKClaimEntry `json:"zk_claims"`
	CreatedAt           time.Time      `json:"created_at"`
	ExpiresAt           time.Time      `json:"expires_at"`
	UsedAt              *time.Time     `json:"used_at,omitempty"`
	// ChainID groups every refresh token descended from this auth code so
	// reuse-detected revocation can walk the whole chain.
	ChainID string `json:"chain_id"`
}

// ZKClaimEntry is the AuthCode's frozen snapshot of one satisfied claim,
// later copied verbatim into the ID token's zk_claims map.
type ZKClaimEntry struct {
	Kind       string         `json:"kind"`
	Parameters map[string]any `json:"parameters"`
	ProofID    string         `json:"proof_id"`
	ProofHash  string         `json:"proof_hash"`
	CircuitID  string         `json:"circuit_id"`
	VerifiedAt time.Time      `json:"verified_at"`
}

// RefreshToken is stored only as a SHA-256 hash of the bearer value.
type RefreshToken struct {
	TokenHash string     `json:"token_hash"`
	ClientID  string      `json:"client_id"`
	Subject   string      `json:"subject"`
	Scopes    []string    `json:"scopes"`
	ChainID   string      `json:"chain_id"`
	IssuedAt  time.Time   `json:"issued_at"`
	ExpiresAt time.Time   `json:"expires_at"`
	RevokedAt *time.Time  `json:"revoked_at,omitempty"`
}

// ProofState is the proof orchestrator's job state machine.
type ProofState string

// Proof states. Generating/Complete/Failed are reached only via the
// orchestrator's transition methods.
const (
	ProofPending    ProofState = "Pending"
	ProofGenerating ProofState = "Generating"
	ProofComplete   ProofState = "Complete"
	ProofFailed     ProofState = "Failed"
)

// Proof is a STARK attestation. It is independently owned;
// ID tokens hold only a proof_id + proof_hash reference.
type Proof struct {
	ProofID      string         `json:"proof_id"`
	CircuitType  string         `json:"circuit_type"`
	State        ProofState     `json:"state"`
	PublicInputs map[string]any `json:"public_inputs"`
	ProofBytes   []byte         `json:"proof_bytes,omitempty"`
	ProofHash    string         `json:"proof_hash,omitempty"`
	Verified     bool           `json:"verified"`
	Error        string         `json:"error,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// NullifierRecord is a stored replay sentinel.
type NullifierRecord struct {
	NullifierHash string    `json:"nullifier_hash"`
	Domain        string    `json:"domain"`
	CircuitType   string    `json:"circuit_type"`
	CreatedAt     time.Time `json:"created_at"`
}

// IssuerKeyAlgorithm is the closed set of signature algorithms a trusted
// credential issuer may use.
type IssuerKeyAlgorithm string

// Algorithms recognized for issuer public keys.
const (
	IssuerAlgDilithium3 IssuerKeyAlgorithm = "dilithium3"
	IssuerAlgEd25519    IssuerKeyAlgorithm = "ed25519"
)

// Issuer is a trusted external credential signer.
type Issuer struct {
	IssuerID    string             `json:"issuer_id"`
	Name        string             `json:"name"`
	Algorithm   IssuerKeyAlgorithm `json:"public_key_algorithm"`
	PublicKey   []byte             `json:"public_key"`
	Trusted     bool               `json:"trusted"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}
