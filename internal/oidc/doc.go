// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

/*
Package oidc implements the Fantasma OpenID Connect protocol engine: the
authorization-code-with-PKCE state machine that turns a relying party's
scope request into an ID token carrying zero-knowledge claim attestations
instead of raw personal data.

State Machine

	Start ──GET /authorize──▶ AwaitingConsent ──approve/deny──▶ ProofsPending
	  ──▶ CodeIssued ──POST /token──▶ TokensIssued (terminal)

Error branches redirect back to the relying party with an `error=` query
parameter (RedirectWithError) except for an unknown client or a redirect
URI that fails exact-match, which render a server-side error page instead
of redirecting to a URI the server cannot trust.

Endpoints

  - GET  /.well-known/openid-configuration — discovery document
  - GET  /jwks — current and rotated-out signing public keys
  - GET  /authorize — begins the flow, renders the consent page
  - POST /authorize/consent — approve/deny, runs the proof pipeline, mints
    the authorization code
  - POST /token — authorization_code and refresh_token grants
  - GET  /userinfo — claims bound to the access token's pseudonym
  - GET  /proofs/{proof_id} — raw proof bytes, unauthenticated, cacheable

The engine depends on internal/scope to parse zk:-prefixed scopes,
internal/nullifier to enforce replay protection, internal/proof to drive
attestation generation, internal/pseudonym to validate the wallet-supplied
subject, internal/crypto for ID token signing, and internal/audit to
record every outcome.
*/
package oidc
