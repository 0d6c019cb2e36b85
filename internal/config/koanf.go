// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/fantasma/config.yaml",
	"/etc/fantasma/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Issuer: IssuerConfig{
			URL:             "",
			PseudonymLength: 20,
		},
		Server: ServerConfig{
			BindAddr:          "0.0.0.0:8443",
			Environment:       "development",
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       120 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			ConsentTimeout:    15 * time.Minute,
			AuthCodeTTL:       10 * time.Minute,
			AccessTokenTTL:    time.Hour,
			RefreshTokenTTL:   30 * 24 * time.Hour,
		},
		Repository: RepositoryConfig{
			Path:           "",
			GCInterval:     10 * time.Minute,
			GCDiscardRatio: 0.5,
		},
		Signer: SignerConfig{
			KeyPath:          "/data/fantasma/signing.key",
			KeyID:            "fantasma-signing-key-1",
			EncryptionSecret: "",
		},
		Proof: ProofConfig{
			Workers:         4,
			WaitTimeout:     120 * time.Second,
			JobHardCap:      5 * time.Minute,
			ReclaimInterval: 30 * time.Second,
			StaleAfter:      2 * time.Minute,
		},
		Admin: AdminConfig{
			Key:              "",
			DefaultPageLimit: 50,
			MaxPageLimit:     200,
		},
		Security: SecurityConfig{
			CORSOrigins:               []string{},
			RateLimitReqs:             100,
			RateLimitWindow:           time.Minute,
			RateLimitDisabled:         false,
			ConsentRateLimitPerSecond: 1,
			ConsentRateLimitBurst:     5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// This function is the preferred way to load configuration and provides:
//   - Type-safe configuration unmarshaling
//   - Clear precedence: ENV > File > Defaults
//   - Support for nested configuration via koanf struct tags
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// Transform environment variable names to koanf paths:
	// FANTASMA_ISSUER -> issuer.url
	// FANTASMA_PROOF_WORKERS -> proof.workers
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	// Unmarshal into Config struct
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc transforms environment variable names to koanf config paths,
// mapping Fantasma's fixed env var surface onto the nested Config
// struct; anything unmapped is dropped so stray environment variables don't
// pollute configuration.
//
// Examples:
//   - FANTASMA_ISSUER -> issuer.url
//   - FANTASMA_BIND -> server.bind_addr
//   - DATABASE_URL -> repository.path
//   - FANTASMA_ADMIN_KEY -> admin.key
//   - FANTASMA_PROOF_WORKERS -> proof.workers
//   - FANTASMA_SIGNING_KEY_PATH -> signer.key_path
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		"fantasma_issuer":           "issuer.url",
		"fantasma_pseudonym_length": "issuer.pseudonym_length",

		"fantasma_bind":             "server.bind_addr",
		"environment":               "server.environment",
		"fantasma_read_timeout":     "server.read_timeout",
		"fantasma_write_timeout":    "server.write_timeout",
		"fantasma_idle_timeout":     "server.idle_timeout",
		"fantasma_shutdown_timeout": "server.shutdown_timeout",
		"fantasma_consent_timeout":  "server.consent_timeout",
		"fantasma_auth_code_ttl":    "server.auth_code_ttl",
		"fantasma_access_token_ttl": "server.access_token_ttl",
		"fantasma_refresh_token_ttl": "server.refresh_token_ttl",

		"database_url":               "repository.path",
		"fantasma_repository_gc_interval": "repository.gc_interval",

		"fantasma_signing_key_path":    "signer.key_path",
		"fantasma_signing_key_id":      "signer.key_id",
		"fantasma_signing_key_secret":  "signer.encryption_secret",

		"fantasma_proof_workers":          "proof.workers",
		"fantasma_proof_wait_timeout":     "proof.wait_timeout",
		"fantasma_proof_job_hard_cap":     "proof.job_hard_cap",
		"fantasma_proof_reclaim_interval": "proof.reclaim_interval",
		"fantasma_proof_stale_after":      "proof.stale_after",

		"fantasma_admin_key":          "admin.key",
		"fantasma_admin_page_limit":   "admin.default_page_limit",
		"fantasma_admin_max_page_limit": "admin.max_page_limit",

		"cors_origins":                 "security.cors_origins",
		"rate_limit_requests":          "security.rate_limit_requests",
		"rate_limit_window":            "security.rate_limit_window",
		"disable_rate_limit":           "security.rate_limit_disabled",
		"fantasma_consent_rate_limit":  "security.consent_rate_limit_per_second",
		"fantasma_consent_rate_burst":  "security.consent_rate_limit_burst",

		"log_level":  "logging.level",
		"log_format": "logging.format",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	return ""
}

// GetKoanfInstance returns a new Koanf instance for advanced usage (e.g. tests
// that want to assemble a Config from literal values rather than the
// environment).
func GetKoanfInstance() *koanf.Koanf {
	return koanf.New(".")
}
