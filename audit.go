package forgeterm

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Security event types emitted by the executor and the command pipeline.
const (
	EventCommandRejected = "COMMAND_REJECTED"
	EventRealExecution   = "REAL_EXECUTION"
	EventExecutionError  = "EXECUTION_ERROR"
)

// SecurityEvent is the structured {eventType, details} record handed to the
// logging collaborator.
type SecurityEvent struct {
	Timestamp time.Time              `json:"timestamp"`
	SessionID string                 `json:"session_id,omitempty"`
	EventType string                 `json:"event_type"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// AuditLogger receives security events. Implementations decide how to format
// and store them.
type AuditLogger interface {
	Log(event SecurityEvent) error
}

// ZapAuditLogger writes each event as one structured zap entry.
type ZapAuditLogger struct {
	logger *zap.Logger
}

// NewZapAuditLogger wraps logger. A nil logger falls back to zap.NewNop().
func NewZapAuditLogger(logger *zap.Logger) *ZapAuditLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapAuditLogger{logger: logger.Named("security")}
}

// Log writes event at warn level for rejections and errors, info otherwise.
func (l *ZapAuditLogger) Log(event SecurityEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType),
		zap.Time("timestamp", event.Timestamp),
		zap.Any("details", event.Details),
	}
	if event.SessionID != "" {
		fields = append(fields, zap.String("session_id", event.SessionID))
	}

	switch event.EventType {
	case EventCommandRejected, EventExecutionError:
		l.logger.Warn("security event", fields...)
	default:
		l.logger.Info("security event", fields...)
	}
	return nil
}

// MemoryAuditLogger keeps events in memory.
type MemoryAuditLogger struct {
	mu     sync.Mutex
	events []SecurityEvent
}

// NewMemoryAuditLogger creates an empty in-memory audit log.
func NewMemoryAuditLogger() *MemoryAuditLogger {
	return &MemoryAuditLogger{}
}

// Log appends event.
func (l *MemoryAuditLogger) Log(event SecurityEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

// Events returns a copy of the recorded events.
func (l *MemoryAuditLogger) Events() []SecurityEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]SecurityEvent, len(l.events))
	copy(out, l.events)
	return out
}

// EventsOfType returns recorded events with the given type.
func (l *MemoryAuditLogger) EventsOfType(eventType string) []SecurityEvent {
	var out []SecurityEvent
	for _, e := range l.Events() {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// NopAuditLogger discards events.
type NopAuditLogger struct{}

// Log does nothing.
func (NopAuditLogger) Log(SecurityEvent) error { return nil }
