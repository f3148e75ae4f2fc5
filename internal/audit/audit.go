// Package audit provides structured logging for tool call events.
// Log entries follow a key=value format suitable for parsing and analysis.
package audit

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
)

// EventType represents the type of tool call event.
type EventType string

// Event types for tool call operations.
const (
	EventRequest  EventType = "REQUEST"
	EventDeny     EventType = "DENY"
	EventComplete EventType = "COMPLETE"
	EventTimeout  EventType = "TIMEOUT"
	EventError    EventType = "ERROR"
)

// Event represents a tool call audit log entry.
type Event struct {
	// Timestamp is when the event occurred.
	Timestamp time.Time

	// Type is the event type (REQUEST, DENY, etc.)
	Type EventType

	// RequestID correlates the events of one tool call.
	RequestID string

	// Client is the remote address the call came from.
	Client string

	// Tool is the tool name being invoked.
	Tool string

	// Detail is the command, script path, or other tool argument summary.
	Detail string

	// Reason is the denial or failure reason (for DENY and ERROR events).
	Reason string

	// ExitCode is the command exit code (for COMPLETE events).
	ExitCode int

	// Duration is the execution time (for COMPLETE and TIMEOUT events).
	Duration time.Duration
}

// Format returns the log entry as a formatted string.
// Format: 2024-01-15T14:32:05Z TOOLCALL REQUEST id=... client=... tool=run_shell detail="..."
func (e *Event) Format() string {
	var b strings.Builder

	b.WriteString(e.Timestamp.UTC().Format(time.RFC3339))
	b.WriteString(" TOOLCALL ")
	b.WriteString(string(e.Type))

	b.WriteString(" id=")
	b.WriteString(e.RequestID)
	b.WriteString(" client=")
	b.WriteString(e.Client)
	b.WriteString(" tool=")
	b.WriteString(e.Tool)

	if e.Detail != "" {
		b.WriteString(" detail=")
		b.WriteString(quoteValue(e.Detail))
	}

	switch e.Type {
	case EventDeny, EventError:
		writeOptionalField(&b, "reason", e.Reason)
	case EventComplete:
		b.WriteString(" exit=")
		b.WriteString(strconv.Itoa(e.ExitCode))
		b.WriteString(" duration=")
		b.WriteString(formatDuration(e.Duration))
	case EventTimeout:
		b.WriteString(" duration=")
		b.WriteString(formatDuration(e.Duration))
	}

	return b.String()
}

// writeOptionalField appends " key=quoted_value" to the builder if value is non-empty.
func writeOptionalField(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	b.WriteString(" ")
	b.WriteString(key)
	b.WriteString("=")
	b.WriteString(quoteValue(value))
}

// quoteValue returns a quoted string value.
// Values are always quoted for consistency and to handle spaces/special chars.
func quoteValue(s string) string {
	return fmt.Sprintf("%q", s)
}

// formatDuration formats a duration as a human-readable string (e.g., "2.3s", "1m30s").
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return d.Round(time.Second).String()
}

// Logger writes audit events to an io.Writer.
type Logger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLogger creates a new audit logger that writes to the given writer.
// A nil Logger (or nil writer) discards events, so callers never need to
// guard their logging sites.
func NewLogger(w io.Writer) *Logger {
	return &Logger{w: w}
}

// Log writes an event to the audit log.
func (l *Logger) Log(e *Event) error {
	if l == nil || l.w == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	line := e.Format() + "\n"
	_, err := l.w.Write([]byte(line))
	if err != nil {
		return fmt.Errorf("write audit event: %w", err)
	}
	return nil
}

// LogRequest logs a TOOLCALL REQUEST event.
func (l *Logger) LogRequest(id, client, tool, detail string) error {
	return l.Log(&Event{
		Timestamp: time.Now(),
		Type:      EventRequest,
		RequestID: id,
		Client:    client,
		Tool:      tool,
		Detail:    detail,
	})
}

// LogDeny logs a TOOLCALL DENY event.
func (l *Logger) LogDeny(id, client, tool, detail, reason string) error {
	return l.Log(&Event{
		Timestamp: time.Now(),
		Type:      EventDeny,
		RequestID: id,
		Client:    client,
		Tool:      tool,
		Detail:    detail,
		Reason:    reason,
	})
}

// LogComplete logs a TOOLCALL COMPLETE event.
func (l *Logger) LogComplete(id, client, tool, detail string, exitCode int, duration time.Duration) error {
	return l.Log(&Event{
		Timestamp: time.Now(),
		Type:      EventComplete,
		RequestID: id,
		Client:    client,
		Tool:      tool,
		Detail:    detail,
		ExitCode:  exitCode,
		Duration:  duration,
	})
}

// LogTimeout logs a TOOLCALL TIMEOUT event.
func (l *Logger) LogTimeout(id, client, tool, detail string, duration time.Duration) error {
	return l.Log(&Event{
		Timestamp: time.Now(),
		Type:      EventTimeout,
		RequestID: id,
		Client:    client,
		Tool:      tool,
		Detail:    detail,
		Duration:  duration,
	})
}

// LogError logs a TOOLCALL ERROR event.
func (l *Logger) LogError(id, client, tool, detail, reason string) error {
	return l.Log(&Event{
		Timestamp: time.Now(),
		Type:      EventError,
		RequestID: id,
		Client:    client,
		Tool:      tool,
		Detail:    detail,
		Reason:    reason,
	})
}
