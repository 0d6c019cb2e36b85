// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

// Package main is the entry point for the Fantasma identity provider.
//
// Fantasma is a zero-knowledge-attestation OpenID Connect provider: it
// issues ID tokens whose claims assert the outcome of a proof ("satisfies
// age >= 18", "holds an accredited-investor KYC tier") without ever
// learning or storing the attributes those proofs are about.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2, layered env > config file > defaults.
//  2. Repository: BadgerDB-backed storage for clients, codes, tokens,
//     proofs, nullifiers, issuers, and audit events.
//  3. Signer: Dilithium3 keypair, loaded from disk or generated on first run.
//  4. Proof orchestrator: circuit-breaker-wrapped prover backend, STARK
//     verifier, and a supervised worker pool.
//  5. OIDC protocol engine and admin surface, mounted on one HTTP router.
//  6. Supervisor tree: the proving layer (workers, stale-job reclaimer,
//     BadgerDB GC) and the API layer (HTTP server) run under independent
//     suture supervisors so a crash in one cannot take down the other.
//
// # Configuration
//
// See internal/config for the full set of FANTASMA_* environment
// variables and the optional config.yaml.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting new connections, waits for in-flight requests and proof jobs
// to finish within their configured timeouts, then closes the repository.
package main
