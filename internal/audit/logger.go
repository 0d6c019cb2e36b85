// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fantasma/fantasma

package audit

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/fantasma/fantasma/internal/logging"
)

// Config holds configuration for the audit logger.
type Config struct {
	// Enabled controls whether audit logging is active.
	Enabled bool `json:"enabled"`

	// LogLevel filters events by minimum severity.
	LogLevel Severity `json:"log_level"`

	// RetentionDays is how long to keep audit logs.
	RetentionDays int `json:"retention_days"`

	// CleanupInterval is how often to run retention cleanup.
	CleanupInterval time.Duration `json:"cleanup_interval"`

	// BufferSize is the size of the async write buffer.
	BufferSize int `json:"buffer_size"`

	// LogToStdout also writes events to stdout.
	LogToStdout bool `json:"log_to_stdout"`

	// IncludeDebug includes debug-level events.
	IncludeDebug bool `json:"include_debug"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		LogLevel:        SeverityInfo,
		RetentionDays:   90,
		CleanupInterval: 24 * time.Hour,
		BufferSize:      1000,
		LogToStdout:     false,
		IncludeDebug:    false,
	}
}

// Logger is the main audit logging service.
type Logger struct {
	config    *Config
	store     Store
	eventChan chan *Event
	mu        sync.RWMutex
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// NewLogger creates a new audit logger.
func NewLogger(store Store, config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}

	l := &Logger{
		config:    config,
		store:     store,
		eventChan: make(chan *Event, config.BufferSize),
		stopChan:  make(chan struct{}),
	}

	// Start async writer
	l.wg.Add(1)
	go l.asyncWriter()

	return l
}

// asyncWriter processes events from the buffer.
func (l *Logger) asyncWriter() {
	defer l.wg.Done()

	for {
		select {
		case <-l.stopChan:
			// Drain remaining events
			for {
				select {
				case event := <-l.eventChan:
					l.writeEvent(event)
				default:
					return
				}
			}
		case event := <-l.eventChan:
			l.writeEvent(event)
		}
	}
}

// writeEvent persists an event to the store.
func (l *Logger) writeEvent(event *Event) {
	l.mu.RLock()
	config := l.config
	l.mu.RUnlock()

	if config.LogToStdout {
		l.logToStdout(event)
	}

	if l.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := l.store.Save(ctx, event); err != nil {
			logging.Error().Err(err).Msg("Failed to save audit event")
		}
	}
}

// logToStdout writes an event to stdout in JSON format.
func (l *Logger) logToStdout(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal audit event")
		return
	}
	logging.Info().RawJSON("event", data).Msg("Audit event")
}

// Log records an audit event.
func (l *Logger) Log(event *Event) {
	l.mu.RLock()
	config := l.config
	l.mu.RUnlock()

	if !config.Enabled {
		return
	}

	// Filter by severity
	if !l.shouldLog(event.Severity, config) {
		return
	}

	// Generate ID if not set
	if event.ID == "" {
		event.ID = generateEventID()
	}

	// Set timestamp if not set
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	// Send to async writer
	select {
	case l.eventChan <- event:
	default:
		logging.Warn().Str("event_id", event.ID).Msg("Audit event buffer full, dropping event")
	}
}

// shouldLog returns true if the event severity meets the minimum level.
func (l *Logger) shouldLog(severity Severity, config *Config) bool {
	if severity == SeverityDebug && !config.IncludeDebug {
		return false
	}

	severityOrder := map[Severity]int{
		SeverityDebug:    0,
		SeverityInfo:     1,
		SeverityWarning:  2,
		SeverityError:    3,
		SeverityCritical: 4,
	}

	return severityOrder[severity] >= severityOrder[config.LogLevel]
}

// Close shuts down the logger gracefully.
func (l *Logger) Close() error {
	close(l.stopChan)
	l.wg.Wait()
	return nil
}

// StartCleanupRoutine starts the retention cleanup routine.
func (l *Logger) StartCleanupRoutine(ctx context.Context) {
	l.mu.RLock()
	interval := l.config.CleanupInterval
	retention := l.config.RetentionDays
	l.mu.RUnlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().AddDate(0, 0, -retention)
				count, err := l.store.Delete(ctx, cutoff)
				if err != nil {
					logging.Error().Err(err).Msg("Audit cleanup error")
				} else if count > 0 {
					logging.Info().Int64("count", count).Msg("Cleaned up old audit events")
				}
			}
		}
	}()
}

// Query retrieves events matching the filter.
func (l *Logger) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	return l.store.Query(ctx, filter)
}

// Count returns the number of events matching the filter.
func (l *Logger) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	return l.store.Count(ctx, filter)
}

// SetEnabled enables or disables audit logging.
func (l *Logger) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config.Enabled = enabled
}

// Enabled returns whether audit logging is enabled.
func (l *Logger) Enabled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config.Enabled
}

// generateEventID generates a unique event ID.
func generateEventID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return time.Now().Format("20060102150405.000000000")
	}
	return hex.EncodeToString(b)
}

// Helper methods for common audit events

// LogClientCreated logs a client registration.
//
//nolint:gocritic // hugeParam: Actor passed by value for API simplicity
func (l *Logger) LogClientCreated(ctx context.Context, actor Actor, source Source, clientID string) {
	l.Log(&Event{
		Type:     EventTypeClientCreated,
		Severity: SeverityInfo,
		Outcome:  OutcomeSuccess,
		Actor:    actor,
		Source:   source,
		Action:   "create",
		Target: &Target{
			ID:   clientID,
			Type: "client",
		},
		Description: "Client registered: " + clientID,
		RequestID:   getRequestID(ctx),
	})
}

// LogClientDeleted logs a client deletion.
//
//nolint:gocritic // hugeParam: Actor passed by value for API simplicity
func (l *Logger) LogClientDeleted(ctx context.Context, actor Actor, source Source, clientID string) {
	l.Log(&Event{
		Type:     EventTypeClientDeleted,
		Severity: SeverityWarning,
		Outcome:  OutcomeSuccess,
		Actor:    actor,
		Source:   source,
		Action:   "delete",
		Target: &Target{
			ID:   clientID,
			Type: "client",
		},
		Description: "Client deleted: " + clientID,
		RequestID:   getRequestID(ctx),
	})
}

// LogIssuerChange logs an issuer registry create/update/delete.
//
//nolint:gocritic // hugeParam: Actor passed by value for API simplicity
func (l *Logger) LogIssuerChange(ctx context.Context, actor Actor, source Source, eventType EventType, issuerID string) {
	l.Log(&Event{
		Type:     eventType,
		Severity: SeverityWarning,
		Outcome:  OutcomeSuccess,
		Actor:    actor,
		Source:   source,
		Action:   "update",
		Target: &Target{
			ID:   issuerID,
			Type: "issuer",
		},
		Description: "Issuer " + string(eventType) + ": " + issuerID,
		RequestID:   getRequestID(ctx),
	})
}

// LogAuthorizeOutcome logs the outcome of an /authorize request.
func (l *Logger) LogAuthorizeOutcome(ctx context.Context, source Source, eventType EventType, clientID, reason string) {
	severity := SeverityInfo
	outcome := OutcomeSuccess
	if eventType == EventTypeAuthorizeDenied || eventType == EventTypeAuthorizeError {
		severity = SeverityWarning
		outcome = OutcomeFailure
	}
	l.Log(&Event{
		Type:     eventType,
		Severity: severity,
		Outcome:  outcome,
		Source:   source,
		Action:   "authorize",
		Target: &Target{
			ID:   clientID,
			Type: "client",
		},
		Description: "Authorization " + string(eventType) + " for client " + clientID,
		Metadata:    mustJSON(map[string]string{"reason": reason}),
		RequestID:   getRequestID(ctx),
	})
}

// LogTokenOutcome logs the outcome of a /token request.
func (l *Logger) LogTokenOutcome(ctx context.Context, source Source, eventType EventType, clientID, grantType, reason string) {
	severity := SeverityInfo
	outcome := OutcomeSuccess
	if eventType == EventTypeTokenRejected {
		severity = SeverityWarning
		outcome = OutcomeFailure
	}
	l.Log(&Event{
		Type:     eventType,
		Severity: severity,
		Outcome:  outcome,
		Source:   source,
		Action:   "token",
		Target: &Target{
			ID:   clientID,
			Type: "client",
		},
		Description: "Token " + string(eventType) + " for client " + clientID,
		Metadata: mustJSON(map[string]string{
			"grant_type": grantType,
			"reason":     reason,
		}),
		RequestID: getRequestID(ctx),
	})
}

// LogProofSubmitted logs a proof job being accepted into the pipeline.
func (l *Logger) LogProofSubmitted(ctx context.Context, proofID, circuitID string) {
	l.Log(&Event{
		Type:     EventTypeProofSubmitted,
		Severity: SeverityInfo,
		Outcome:  OutcomeSuccess,
		Actor:    SystemActor(),
		Action:   "submit",
		Target: &Target{
			ID:   proofID,
			Type: "proof",
		},
		Description: "Proof submitted: " + circuitID,
		Metadata:    mustJSON(map[string]string{"circuit_id": circuitID}),
		RequestID:   getRequestID(ctx),
	})
}

// LogProofVerified logs a completed proof passing verification.
func (l *Logger) LogProofVerified(ctx context.Context, proofID, circuitID string) {
	l.Log(&Event{
		Type:     EventTypeProofVerified,
		Severity: SeverityInfo,
		Outcome:  OutcomeSuccess,
		Actor:    SystemActor(),
		Action:   "verify",
		Target: &Target{
			ID:   proofID,
			Type: "proof",
		},
		Description: "Proof verified: " + circuitID,
		Metadata:    mustJSON(map[string]string{"circuit_id": circuitID}),
		RequestID:   getRequestID(ctx),
	})
}

// LogProofFailed logs a proof job ending in the Failed state.
func (l *Logger) LogProofFailed(ctx context.Context, proofID, circuitID, reason string) {
	l.Log(&Event{
		Type:     EventTypeProofFailed,
		Severity: SeverityError,
		Outcome:  OutcomeFailure,
		Actor:    SystemActor(),
		Action:   "verify",
		Target: &Target{
			ID:   proofID,
			Type: "proof",
		},
		Description: "Proof failed: " + reason,
		Metadata: mustJSON(map[string]string{
			"circuit_id": circuitID,
			"reason":     reason,
		}),
		RequestID: getRequestID(ctx),
	})
}

// LogNullifierInserted logs a fresh nullifier being recorded.
func (l *Logger) LogNullifierInserted(ctx context.Context, domain string) {
	l.Log(&Event{
		Type:     EventTypeNullifierInserted,
		Severity: SeverityInfo,
		Outcome:  OutcomeSuccess,
		Actor:    SystemActor(),
		Action:   "insert",
		Target: &Target{
			ID:   domain,
			Type: "nullifier",
		},
		Description: "Nullifier inserted for domain " + domain,
		RequestID:   getRequestID(ctx),
	})
}

// LogNullifierReplay logs a detected nullifier reuse attempt.
func (l *Logger) LogNullifierReplay(ctx context.Context, source Source, domain string) {
	l.Log(&Event{
		Type:     EventTypeNullifierReplay,
		Severity: SeverityCritical,
		Outcome:  OutcomeFailure,
		Actor:    SystemActor(),
		Source:   source,
		Action:   "insert",
		Target: &Target{
			ID:   domain,
			Type: "nullifier",
		},
		Description: "Nullifier replay detected for domain " + domain,
		RequestID:   getRequestID(ctx),
	})
}

// LogAdminAuthFailure logs a failed admin-key authentication attempt.
func (l *Logger) LogAdminAuthFailure(ctx context.Context, source Source) {
	l.Log(&Event{
		Type:        EventTypeAdminAuthFail,
		Severity:    SeverityCritical,
		Outcome:     OutcomeFailure,
		Source:      source,
		Action:      "authenticate",
		Description: "Admin authentication failed",
		RequestID:   getRequestID(ctx),
	})
}

// LogAdminAction logs an administrative action.
//
//nolint:gocritic // hugeParam: Actor passed by value for API simplicity
func (l *Logger) LogAdminAction(ctx context.Context, actor Actor, source Source, action, description string, metadata map[string]interface{}) {
	l.Log(&Event{
		Type:        EventTypeAdminAction,
		Severity:    SeverityWarning,
		Outcome:     OutcomeSuccess,
		Actor:       actor,
		Source:      source,
		Action:      action,
		Description: description,
		Metadata:    mustJSON(metadata),
		RequestID:   getRequestID(ctx),
	})
}

// mustJSON converts a value to JSON, returning empty object on error.
func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("{}")
	}
	return data
}

// getRequestID extracts the request ID from context.
func getRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		return reqID
	}
	return ""
}

// Context keys
type contextKey string

// RequestIDKey is the context key for request ID.
const RequestIDKey contextKey = "request_id"

// SourceFromRequest creates a Source from an HTTP request.
func SourceFromRequest(r *http.Request) Source {
	ip := r.RemoteAddr
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip = xff
	} else if xri := r.Header.Get("X-Real-IP"); xri != "" {
		ip = xri
	}

	return Source{
		IPAddress: ip,
		UserAgent: r.UserAgent(),
		Hostname:  r.Host,
	}
}

// ActorFromUser creates an Actor from user information.
func ActorFromUser(id, name string, roles []string, authMethod, sessionID string) Actor {
	return Actor{
		ID:         id,
		Type:       "user",
		Name:       name,
		Roles:      roles,
		AuthMethod: authMethod,
		SessionID:  sessionID,
	}
}

// SystemActor returns an Actor representing the system.
func SystemActor() Actor {
	return Actor{
		ID:   "system",
		Type: "system",
		Name: "Fantasma",
	}
}
