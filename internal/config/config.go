// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package config

import "time"

// Config holds all application configuration loaded from environment variables
// and an optional config file. Provides centralized configuration for the
// issuer identity, storage, proof pipeline, admin surface, and ambient
// concerns (server, security, logging).
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings.
//  2. Config File: Optional YAML config file for persistent settings.
//  3. Environment Variables: Override any setting via environment variables.
//
// Example - Load configuration from environment:
//
//	cfg, err := config.LoadWithKoanf()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	store, err := repository.Open(cfg.Repository.Path)
//
// Validation:
// Load() validates all required fields and returns an error if:
//   - Required environment variables are missing (FANTASMA_ISSUER, DATABASE_URL)
//   - Values are malformed (invalid URL, out-of-range counts)
type Config struct {
	Issuer     IssuerConfig     `koanf:"issuer"`
	Server     ServerConfig     `koanf:"server"`
	Repository RepositoryConfig `koanf:"repository"`
	Signer     SignerConfig     `koanf:"signer"`
	Proof      ProofConfig      `koanf:"proof"`
	Admin      AdminConfig      `koanf:"admin"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// IssuerConfig identifies this deployment as an OIDC issuer.
type IssuerConfig struct {
	// URL is the absolute issuer URL ("iss" in every ID token and the
	// discovery document), from FANTASMA_ISSUER.
	URL string `koanf:"url"`
	// PseudonymLength is the number of raw digest bytes retained when
	// deriving a subject pseudonym, in bytes.
	PseudonymLength int `koanf:"pseudonym_length"`
}

// ServerConfig holds HTTP listener and timeout settings.
type ServerConfig struct {
	// BindAddr is host:port, from FANTASMA_BIND.
	BindAddr string `koanf:"bind_addr"`
	// Environment selects production-only hardening (e.g. CORS wildcard
	// rejection).
	Environment string `koanf:"environment"`

	ReadTimeout       time.Duration `koanf:"read_timeout"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`

	// ConsentTimeout bounds how long an AwaitingConsent flow may sit
	// before expiring (15 minutes by default).
	ConsentTimeout time.Duration `koanf:"consent_timeout"`
	// AuthCodeTTL bounds the lifetime of a minted authorization code
	// (600s by default).
	AuthCodeTTL time.Duration `koanf:"auth_code_ttl"`
	// AccessTokenTTL is the lifetime stamped as expires_in (1h default).
	AccessTokenTTL time.Duration `koanf:"access_token_ttl"`
	// RefreshTokenTTL is the lifetime of a minted refresh token (30d default).
	RefreshTokenTTL time.Duration `koanf:"refresh_token_ttl"`
}

// RepositoryConfig points at the BadgerDB-backed store.
type RepositoryConfig struct {
	// Path is the on-disk directory for BadgerDB, from DATABASE_URL. An
	// empty path opens an in-memory store (tests, ephemeral demos).
	Path string `koanf:"path"`
	// GCInterval is how often the reclaimer runs BadgerDB value-log GC.
	GCInterval time.Duration `koanf:"gc_interval"`
	// GCDiscardRatio is the badger value-log GC discard ratio threshold.
	GCDiscardRatio float64 `koanf:"gc_discard_ratio"`
}

// SignerConfig points at the Dilithium3 signing key material.
type SignerConfig struct {
	// KeyPath is the file holding the raw private key, from
	// FANTASMA_SIGNING_KEY_PATH. If the file does not exist at startup a
	// fresh keypair is generated and written there.
	KeyPath string `koanf:"key_path"`
	// KeyID is the JWKS `kid` stamped on tokens signed with this key.
	KeyID string `koanf:"key_id"`
	// EncryptionSecret, if set, wraps the on-disk private key with
	// AES-256-GCM (HKDF-derived from this secret) instead of storing it
	// in the clear. From FANTASMA_SIGNING_KEY_SECRET.
	EncryptionSecret string `koanf:"encryption_secret"`
}

// ProofConfig configures the proof orchestrator's worker pool.
type ProofConfig struct {
	// Workers is the number of concurrent proof-generation workers, from
	// FANTASMA_PROOF_WORKERS (default 4).
	Workers int `koanf:"workers"`
	// WaitTimeout bounds how long /authorize/consent blocks on proof
	// completion before returning a pending/async response (120s default).
	WaitTimeout time.Duration `koanf:"wait_timeout"`
	// JobHardCap is the orchestrator's absolute per-job ceiling (5min default).
	JobHardCap time.Duration `koanf:"job_hard_cap"`
	// ReclaimInterval is how often the reclaimer sweeps for stale Pending jobs.
	ReclaimInterval time.Duration `koanf:"reclaim_interval"`
	// StaleAfter marks a Pending job eligible for reclaiming once older than this.
	StaleAfter time.Duration `koanf:"stale_after"`
}

// AdminConfig configures the static-key admin surface.
type AdminConfig struct {
	// Key is the shared secret compared against the X-Admin-Key header.
	Key string `koanf:"key"`
	// DefaultPageLimit and MaxPageLimit bound admin listing pagination.
	DefaultPageLimit int `koanf:"default_page_limit"`
	MaxPageLimit     int `koanf:"max_page_limit"`
}

// SecurityConfig holds CORS and rate-limiting settings shared by both the
// protocol engine and the admin surface.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// ConsentRateLimitPerSecond and ConsentRateLimitBurst bound the
	// per-client_id token-bucket limiter guarding /authorize/consent
	// (consent approval triggers the proof pipeline, a more
	// expensive operation than ordinary HTTP traffic).
	ConsentRateLimitPerSecond float64 `koanf:"consent_rate_limit_per_second"`
	ConsentRateLimitBurst     int     `koanf:"consent_rate_limit_burst"`
}

// LoggingConfig controls the zerolog-backed logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
