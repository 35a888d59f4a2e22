// SPDX-License-Identifier: MIT

// Package audit provides structured audit logging for security-sensitive
// operations. It follows the WHO/WHAT/WHEN pattern for compliance and
// forensics.
package audit

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/checkings/checkings/internal/log"
)

// EventType represents the type of audit event.
type EventType string

const (
	// Schema lifecycle events
	EventSchemaCreate EventType = "schema.create"
	EventSchemaUpdate EventType = "schema.update"
	EventSchemaDelete EventType = "schema.delete"

	// Validation events
	EventValidateReject EventType = "validate.reject"

	// Configuration events
	EventConfigReload      EventType = "config.reload"
	EventConfigReloadError EventType = "config.reload.error"

	// Authentication events
	EventAuthSuccess EventType = "auth.success"
	EventAuthFailure EventType = "auth.failure"
	EventAuthMissing EventType = "auth.missing"

	// API access events
	EventAPIRateLimit EventType = "api.ratelimit"
)

// Event represents a structured audit event.
type Event struct {
	Timestamp  time.Time         `json:"timestamp"`
	Type       EventType         `json:"type"`
	Actor      string            `json:"actor"`             // WHO: token owner, IP, or "system"
	Action     string            `json:"action"`            // WHAT: human-readable action description
	Resource   string            `json:"resource"`          // schema ID, endpoint, or config file
	Result     string            `json:"result"`            // success, failure, denied
	RemoteAddr string            `json:"remote_addr"`       // Client IP address
	RequestID  string            `json:"request_id"`        // Correlation ID
	Details    map[string]string `json:"details,omitempty"` // Additional context
}

// MarshalZerologObject flattens the event into top-level log fields, the
// shape log shippers index on.
func (e Event) MarshalZerologObject(ev *zerolog.Event) {
	ev.Time("timestamp", e.Timestamp).
		Str("event_type", string(e.Type)).
		Str("actor", e.Actor).
		Str("action", e.Action).
		Str("resource", e.Resource).
		Str("result", e.Result)

	if e.RemoteAddr != "" {
		ev.Str("remote_addr", e.RemoteAddr)
	}
	if e.RequestID != "" {
		ev.Str(log.FieldRequestID, e.RequestID)
	}
	for key, value := range e.Details {
		ev.Str(key, value)
	}
}

// Logger provides audit logging functionality.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger creates an audit logger with a dedicated "audit" component.
// The log_type field lets log shippers route audit entries separately.
func NewLogger() *Logger {
	auditLogger := log.WithComponent("audit").With().
		Str("log_type", "audit").
		Logger()

	return &Logger{logger: auditLogger}
}

// Log writes an audit event to the audit log.
func (l *Logger) Log(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	l.logger.Info().EmbedObject(event).Msg("audit event")
}

// LogFromContext logs an audit event, filling the request ID from the
// context when the event does not carry one.
func (l *Logger) LogFromContext(ctx context.Context, event Event) {
	if event.RequestID == "" {
		event.RequestID = log.RequestIDFromContext(ctx)
	}
	l.Log(event)
}

// SchemaCreated logs a schema registration.
func (l *Logger) SchemaCreated(ctx context.Context, actor, schemaID, name string) {
	l.LogFromContext(ctx, Event{
		Type:     EventSchemaCreate,
		Actor:    actor,
		Action:   "registered schema " + name,
		Resource: schemaID,
		Result:   "success",
	})
}

// SchemaUpdated logs a schema replacement.
func (l *Logger) SchemaUpdated(ctx context.Context, actor, schemaID string, version int) {
	l.LogFromContext(ctx, Event{
		Type:     EventSchemaUpdate,
		Actor:    actor,
		Action:   "updated schema",
		Resource: schemaID,
		Result:   "success",
		Details: map[string]string{
			"version": strconv.Itoa(version),
		},
	})
}

// SchemaDeleted logs a schema removal.
func (l *Logger) SchemaDeleted(ctx context.Context, actor, schemaID string) {
	l.LogFromContext(ctx, Event{
		Type:     EventSchemaDelete,
		Actor:    actor,
		Action:   "deleted schema",
		Resource: schemaID,
		Result:   "success",
	})
}

// ValidationRejected logs a payload that failed validation. Only
// rejections are audited; accepted payloads stay out of the audit trail.
func (l *Logger) ValidationRejected(ctx context.Context, actor, schemaID string, failures int) {
	l.LogFromContext(ctx, Event{
		Type:     EventValidateReject,
		Actor:    actor,
		Action:   "payload rejected",
		Resource: schemaID,
		Result:   "denied",
		Details: map[string]string{
			"failed_fields": strconv.Itoa(failures),
		},
	})
}

// ConfigReload logs a configuration reload event.
func (l *Logger) ConfigReload(actor, result string, details map[string]string) {
	eventType := EventConfigReload
	if result != "success" {
		eventType = EventConfigReloadError
	}
	l.Log(Event{
		Type:     eventType,
		Actor:    actor,
		Action:   "reloaded configuration",
		Resource: "config",
		Result:   result,
		Details:  details,
	})
}

// logAccess records an access-control decision against an endpoint.
func (l *Logger) logAccess(t EventType, remoteAddr, endpoint, action, result string, details map[string]string) {
	l.Log(Event{
		Type:       t,
		Actor:      remoteAddr,
		Action:     action,
		Resource:   endpoint,
		Result:     result,
		RemoteAddr: remoteAddr,
		Details:    details,
	})
}

// AuthSuccess logs a successful authentication.
func (l *Logger) AuthSuccess(remoteAddr, endpoint string) {
	l.logAccess(EventAuthSuccess, remoteAddr, endpoint, "authenticated successfully", "success", nil)
}

// AuthFailure logs a failed authentication attempt.
func (l *Logger) AuthFailure(remoteAddr, endpoint, reason string) {
	l.logAccess(EventAuthFailure, remoteAddr, endpoint, "authentication failed", "failure",
		map[string]string{"reason": reason})
}

// AuthMissing logs a request without credentials.
func (l *Logger) AuthMissing(remoteAddr, endpoint string) {
	l.logAccess(EventAuthMissing, remoteAddr, endpoint, "accessed endpoint without authentication", "denied", nil)
}

// RateLimitExceeded logs rate limit violations.
func (l *Logger) RateLimitExceeded(remoteAddr, endpoint string) {
	l.logAccess(EventAPIRateLimit, remoteAddr, endpoint, "rate limit exceeded", "denied", nil)
}
