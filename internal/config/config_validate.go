// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package config

import (
	"fmt"
	"strings"
)

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateIssuer(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateRepository(); err != nil {
		return err
	}
	if err := c.validateSigner(); err != nil {
		return err
	}
	if err := c.validateProof(); err != nil {
		return err
	}
	if err := c.validateAdmin(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

// validateIssuer validates the OIDC issuer identity.
func (c *Config) validateIssuer() error {
	if c.Issuer.URL == "" {
		return fmt.Errorf("FANTASMA_ISSUER is required")
	}
	if err := validateHTTPURL(c.Issuer.URL, "FANTASMA_ISSUER"); err != nil {
		return fmt.Errorf("FANTASMA_ISSUER is invalid: %w", err)
	}
	if containsPlaceholder(c.Issuer.URL) {
		return fmt.Errorf("FANTASMA_ISSUER looks like a placeholder value, set the real issuer URL")
	}
	if c.Issuer.PseudonymLength < 16 || c.Issuer.PseudonymLength > 32 {
		return fmt.Errorf("issuer pseudonym_length must be between 16 and 32 bytes, got %d", c.Issuer.PseudonymLength)
	}
	return nil
}

// validateServer validates the HTTP listener and flow timeout settings.
func (c *Config) validateServer() error {
	if c.Server.BindAddr == "" {
		return fmt.Errorf("FANTASMA_BIND is required")
	}

	if c.Server.ConsentTimeout <= 0 {
		return fmt.Errorf("server consent_timeout must be positive")
	}
	if c.Server.AuthCodeTTL <= 0 {
		return fmt.Errorf("server auth_code_ttl must be positive")
	}
	if c.Server.AccessTokenTTL <= 0 {
		return fmt.Errorf("server access_token_ttl must be positive")
	}
	if c.Server.RefreshTokenTTL <= 0 {
		return fmt.Errorf("server refresh_token_ttl must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server shutdown_timeout must be positive")
	}
	return nil
}

// validateRepository validates BadgerDB storage settings. An empty path is
// permitted: it opens an in-memory store, used by tests and ephemeral demos,
// but never by a production deployment (cmd/server logs a warning in that case).
func (c *Config) validateRepository() error {
	if c.Repository.GCDiscardRatio <= 0 || c.Repository.GCDiscardRatio >= 1 {
		return fmt.Errorf("repository gc_discard_ratio must be between 0 and 1 (exclusive), got %f", c.Repository.GCDiscardRatio)
	}
	if c.Repository.GCInterval <= 0 {
		return fmt.Errorf("repository gc_interval must be positive")
	}
	return nil
}

// validateSigner validates the Dilithium3 signing key configuration.
func (c *Config) validateSigner() error {
	if c.Signer.KeyPath == "" {
		return fmt.Errorf("FANTASMA_SIGNING_KEY_PATH is required")
	}
	if c.Signer.KeyID == "" {
		return fmt.Errorf("signer key_id is required")
	}
	if c.Signer.EncryptionSecret != "" && len(c.Signer.EncryptionSecret) < 16 {
		return fmt.Errorf("FANTASMA_SIGNING_KEY_SECRET must be at least 16 bytes when set")
	}
	return nil
}

// validateProof validates the proof orchestrator's worker pool settings
// (120s consent wait, 5min hard cap per job).
func (c *Config) validateProof() error {
	if c.Proof.Workers < 1 || c.Proof.Workers > 256 {
		return fmt.Errorf("FANTASMA_PROOF_WORKERS must be between 1 and 256, got %d", c.Proof.Workers)
	}
	if c.Proof.WaitTimeout <= 0 {
		return fmt.Errorf("proof wait_timeout must be positive")
	}
	if c.Proof.JobHardCap <= 0 {
		return fmt.Errorf("proof job_hard_cap must be positive")
	}
	if c.Proof.JobHardCap < c.Proof.WaitTimeout {
		return fmt.Errorf("proof job_hard_cap (%s) must be at least wait_timeout (%s)", c.Proof.JobHardCap, c.Proof.WaitTimeout)
	}
	if c.Proof.ReclaimInterval <= 0 {
		return fmt.Errorf("proof reclaim_interval must be positive")
	}
	if c.Proof.StaleAfter <= 0 {
		return fmt.Errorf("proof stale_after must be positive")
	}
	return nil
}

// validateAdmin validates the static-key admin surface.
func (c *Config) validateAdmin() error {
	if c.Admin.Key == "" {
		return fmt.Errorf("FANTASMA_ADMIN_KEY is required")
	}
	if len(c.Admin.Key) < 16 {
		return fmt.Errorf("FANTASMA_ADMIN_KEY must be at least 16 bytes")
	}
	if containsPlaceholder(c.Admin.Key) {
		return fmt.Errorf("FANTASMA_ADMIN_KEY looks like a placeholder value, set a real secret")
	}
	if c.Admin.DefaultPageLimit < 1 {
		return fmt.Errorf("admin default_page_limit must be at least 1")
	}
	if c.Admin.MaxPageLimit < c.Admin.DefaultPageLimit || c.Admin.MaxPageLimit > 200 {
		return fmt.Errorf("admin max_page_limit must be between default_page_limit and 200")
	}
	return nil
}

// validateSecurity validates CORS and rate-limiting settings.
func (c *Config) validateSecurity() error {
	if c.hasWildcardCORS() && c.Server.Environment == "production" {
		return fmt.Errorf("security cors_origins must not contain \"*\" in production, list explicit origins")
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs <= 0 {
			return fmt.Errorf("security rate_limit_requests must be positive unless rate limiting is disabled")
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security rate_limit_window must be positive unless rate limiting is disabled")
		}
	}
	if c.Security.ConsentRateLimitPerSecond <= 0 {
		return fmt.Errorf("security consent_rate_limit_per_second must be positive")
	}
	if c.Security.ConsentRateLimitBurst < 1 {
		return fmt.Errorf("security consent_rate_limit_burst must be at least 1")
	}
	return nil
}

// hasWildcardCORS reports whether any configured CORS origin is a wildcard.
func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// validLogLevels defines the allowed log levels.
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats.
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration.
func (c *Config) validateLogging() error {
	if err := c.validateLogLevel(); err != nil {
		return err
	}
	return c.validateLogFormat()
}

// validateLogLevel validates the log level configuration.
func (c *Config) validateLogLevel() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	return nil
}

// validateLogFormat validates the log format configuration.
func (c *Config) validateLogFormat() error {
	if c.Logging.Format == "" {
		return nil
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// placeholderPatterns defines common placeholder patterns that indicate
// the user forgot to set a real value. This prevents accidental deployment
// with insecure default secrets.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"YOUR_PASSWORD",
	"PLACEHOLDER",
	"TODO",
	"FIXME",
	"XXX",
	"EXAMPLE",
}

// containsPlaceholder checks if a value contains common placeholder patterns
// that indicate the user forgot to set a real value.
func containsPlaceholder(value string) bool {
	upperValue := strings.ToUpper(value)
	return containsAnyPattern(upperValue, placeholderPatterns)
}

// containsAnyPattern checks if a string contains any of the provided patterns.
func containsAnyPattern(s string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(s, pattern) {
			return true
		}
	}
	return false
}
