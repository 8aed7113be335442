package authz

import (
	"context"
	"log/slog"
	"time"
)

// AuditEntry represents a single authorization decision for audit logging.
// Every decision rendered by the Authorizer flows through this structure
// when an audit sink is configured.
type AuditEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
	Principal  string    `json:"principal"`
	Email      string    `json:"email,omitempty"`
	Groups     []string  `json:"groups,omitempty"`
	Operation  string    `json:"operation"`
	Action     string    `json:"action,omitempty"` // Fine-grained action that granted (empty on deny)
	Tier       string    `json:"tier,omitempty"`
	Pid        string    `json:"pid,omitempty"`
	Decision   string    `json:"decision"` // "allow" or "deny"
	Reason     string    `json:"reason"`
	DurationUS int64     `json:"duration_us"`
}

// AuditLogger records authorization decisions for compliance and forensics.
type AuditLogger interface {
	// LogDecision records an authorization decision.
	LogDecision(ctx context.Context, entry AuditEntry) error
}

// SlogAuditLogger writes authorization decisions to structured logging. Use
// this for JSON log output compatible with SIEM/log aggregation tools.
type SlogAuditLogger struct {
	logger *slog.Logger
}

// NewSlogAuditLogger creates an audit logger that writes to slog.
func NewSlogAuditLogger(logger *slog.Logger) *SlogAuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAuditLogger{logger: logger}
}

// LogDecision writes an authorization decision to structured logging.
func (l *SlogAuditLogger) LogDecision(ctx context.Context, entry AuditEntry) error {
	level := slog.LevelInfo
	if entry.Decision == "deny" {
		level = slog.LevelWarn
	}

	l.logger.LogAttrs(ctx, level, "authorization decision",
		slog.String("event", "authorization_decision"),
		slog.Time("timestamp", entry.Timestamp),
		slog.String("request_id", entry.RequestID),
		slog.String("principal", entry.Principal),
		slog.String("operation", entry.Operation),
		slog.String("action", entry.Action),
		slog.String("tier", entry.Tier),
		slog.String("pid", entry.Pid),
		slog.String("decision", entry.Decision),
		slog.String("reason", entry.Reason),
		slog.Int64("duration_us", entry.DurationUS),
	)
	return nil
}

// MultiAuditLogger writes to multiple audit loggers.
type MultiAuditLogger struct {
	loggers []AuditLogger
}

// NewMultiAuditLogger creates an audit logger that writes to multiple
// destinations.
func NewMultiAuditLogger(loggers ...AuditLogger) *MultiAuditLogger {
	return &MultiAuditLogger{loggers: loggers}
}

// LogDecision writes to all configured loggers and returns the first error.
func (l *MultiAuditLogger) LogDecision(ctx context.Context, entry AuditEntry) error {
	var firstErr error
	for _, logger := range l.loggers {
		if err := logger.LogDecision(ctx, entry); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NopAuditLogger discards all audit entries. Use for testing.
type NopAuditLogger struct{}

// LogDecision does nothing.
func (NopAuditLogger) LogDecision(ctx context.Context, entry AuditEntry) error {
	return nil
}
