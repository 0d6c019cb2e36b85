// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

/*
Package api provides the HTTP surface of the Fantasma OIDC provider.

It implements the OAuth2/OIDC authorization-code flow with PKCE, the
discovery and JWKS endpoints, and the admin surface used to manage
clients and inspect audit history and proof job state.

Key Components:

  - Router: Chi route configuration and middleware stack integration
  - Handlers: /authorize, /token, /userinfo, /.well-known/*, /admin/*
  - Response formatting: standardized JSON envelope with request metadata
  - Error handling: RFC 6749-shaped error bodies for token/authorize errors
  - Rate limiting: per-route token bucket limiting via go-chi/httprate
  - CORS: configurable allow-list for relying-party origins

Endpoint Categories:

1. Discovery (/.well-known/):
  - openid-configuration: issuer metadata
  - jwks.json: signing public keys

2. Protocol Endpoints:
  - GET  /authorize: begins the authorization-code + PKCE flow
  - POST /token: exchanges a code or refresh token for tokens
  - GET  /userinfo: returns claims bound to the access token's pseudonym

3. Admin Surface (/admin):
  - Client registration and lookup
  - Audit log query
  - Proof job and nullifier inspection

Security:

  - Constant-time admin key comparison
  - Rate limiting tuned per endpoint class (auth vs. admin vs. discovery)
  - No raw secrets ever logged; proof witnesses never leave the proving engine

See Also:

  - internal/oidc: protocol state machine and token issuance
  - internal/proof: asynchronous STARK proof orchestration
  - internal/repository: durable storage for clients, codes, and proofs
  - internal/middleware: HTTP middleware components
*/
package api
