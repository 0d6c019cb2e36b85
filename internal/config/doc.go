// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

/*
Package config provides centralized configuration management for Fantasma.

This package handles loading, validation, and parsing of configuration for
the OIDC protocol engine, the proof orchestrator, the BadgerDB-backed
repository, and the admin surface. It uses Koanf v2 to layer three sources,
in increasing priority:

  1. Defaults: built-in sensible values for every optional setting.
  2. Config file: an optional YAML file (CONFIG_PATH or a well-known path).
  3. Environment variables: override any setting.

# Configuration Structure

  - IssuerConfig: OIDC issuer URL and pseudonym length
  - ServerConfig: HTTP listener and flow timeouts (consent, auth code, tokens)
  - RepositoryConfig: BadgerDB path and GC tuning
  - SignerConfig: Dilithium3 signing key path and optional at-rest encryption
  - ProofConfig: proof orchestrator worker pool and timeouts
  - AdminConfig: static admin key and pagination bounds
  - SecurityConfig: CORS, HTTP rate limiting, consent-endpoint rate limiting
  - LoggingConfig: zerolog level and format

# Environment Variables

	FANTASMA_ISSUER               Absolute issuer URL (required)
	FANTASMA_BIND                 Listen address (default: 0.0.0.0:8443)
	DATABASE_URL                  BadgerDB directory (empty = in-memory)
	FANTASMA_ADMIN_KEY            Static admin-surface key (required)
	FANTASMA_PROOF_WORKERS        Proof worker pool size (default: 4)
	FANTASMA_SIGNING_KEY_PATH     Path to the Dilithium3 private key file
	FANTASMA_SIGNING_KEY_SECRET   Optional at-rest encryption secret for the key
	CORS_ORIGINS                  Comma-separated allowed origins
	LOG_LEVEL, LOG_FORMAT         zerolog level/format

# Usage Example

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatalf("failed to load config: %v", err)
	}
	store, err := repository.Open(cfg.Repository.Path)

# Validation

Validate() is called automatically by LoadWithKoanf() and checks that the
issuer URL and admin key are present and well formed, that TTLs and worker
counts fall within sane bounds, and that production deployments don't carry
a CORS wildcard.
*/
package config
