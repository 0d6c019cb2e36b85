// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

// Package audit provides security audit logging for the identity provider.
//
// It records every client registration/deletion, issuer change, each
// /authorize and /token outcome, each proof insert/verify, each nullifier
// insert, and each admin authentication failure, per a closed event
// taxonomy.
//
// # Overview
//
// The audit system provides:
//   - Structured event logging with a closed set of typed event categories
//   - BadgerDB persistence via internal/repository for durable storage
//   - Asynchronous buffered writes for minimal latency impact
//   - Automatic retention policy enforcement with configurable cleanup
//   - SIEM integration via Common Event Format (CEF) export
//   - Flexible querying with multi-dimensional filters
//
// # Event Types
//
// Client and issuer registry events:
//   - client.created, client.deleted
//   - issuer.created, issuer.updated, issuer.deleted
//
// Authorization flow events:
//   - authorize.requested, authorize.approved, authorize.denied, authorize.error
//
// Token endpoint events:
//   - token.issued, token.rejected, token.revoked
//
// Proof pipeline events:
//   - proof.submitted, proof.verified, proof.failed
//
// Nullifier events:
//   - nullifier.inserted, nullifier.replay
//
// Admin surface events:
//   - admin.action, admin.auth_failure
//
// # Architecture
//
// The audit system uses a producer-consumer pattern:
//
//	Logger.Log() -> Event Buffer (chan) -> Async Writer -> Store
//	                     |                      |
//	                 Non-blocking           Background goroutine
//
// Events are buffered in a channel to avoid blocking the caller. A background
// goroutine drains the buffer and persists events to the store.
//
// # Usage Example
//
// Basic audit logging:
//
//	// Initialize store and logger
//	store := repository.NewAuditStore(repo)
//	logger := audit.NewLogger(store, audit.DefaultConfig())
//	defer logger.Close()
//
//	// Log a proof verification
//	logger.LogProofVerified(ctx, audit.SystemActor(), proofID, circuitID)
//
//	// Log an authorize denial
//	logger.LogAuthorizeDenied(ctx, audit.SourceFromRequest(r), clientID, "invalid_scope")
//
//	// Log an admin authentication failure
//	logger.LogAdminAuthFailure(ctx, audit.SourceFromRequest(r))
//
// Querying audit logs:
//
//	filter := audit.QueryFilter{
//	    Types:      []audit.EventType{audit.EventTypeTokenRejected},
//	    StartTime:  &startTime,
//	    EndTime:    &endTime,
//	    Limit:      100,
//	    OrderDesc:  true,
//	}
//	events, err := logger.Query(ctx, filter)
//
// # Configuration
//
// The logger supports the following configuration options:
//
//	cfg := audit.Config{
//	    Enabled:         true,           // Enable audit logging
//	    LogLevel:        audit.SeverityInfo, // Minimum severity level
//	    RetentionDays:   90,             // Keep logs for 90 days
//	    CleanupInterval: 24 * time.Hour, // Run cleanup daily
//	    BufferSize:      1000,           // Event buffer size
//	    LogToStdout:     false,          // Also log to stdout
//	    IncludeDebug:    false,          // Include debug events
//	}
//
// # SIEM Integration
//
// Export events in Common Event Format (CEF) for SIEM integration:
//
//	exporter := audit.NewCEFExporter()
//	events, _ := logger.Query(ctx, filter)
//	cefData, _ := exporter.Export(events)
//
// # Retention Policy
//
// Automatic retention cleanup runs at the configured interval:
//
//	logger.StartCleanupRoutine(ctx)
//	// Events older than RetentionDays are automatically deleted
//
// # Thread Safety
//
// All exported functions are safe for concurrent use:
//   - Logger uses buffered channel for non-blocking writes
//   - Store implementations use appropriate synchronization
//   - Query operations use read locks for concurrent access
//
// # See Also
//
//   - internal/repository: BadgerDB-backed Store implementation
//   - internal/oidc: authorize/token event sources
//   - internal/proof: proof lifecycle event sources
//   - internal/api: admin handlers for audit query access
package audit
