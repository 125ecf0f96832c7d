// Package logger is a standardized event logging framework for the
// interpreter. Events are written as newline delimited JSON objects so the
// log can be processed a line at a time.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"time"
)

// LogEntry is a single logged event. Exactly one event field is set.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id,omitempty"`

	SessionStart *SessionStart `json:"session_start,omitempty"`
	SessionEnd   *SessionEnd   `json:"session_end,omitempty"`
	LineRejected *LineRejected `json:"line_rejected,omitempty"`
	PipelineRun  *PipelineRun  `json:"pipeline_run,omitempty"`
}

// Event is one of the concrete event payloads.
type Event interface {
	attach(le *LogEntry)
}

// SessionStart marks the beginning of an interactive session.
type SessionStart struct {
	User       string `json:"user,omitempty"`
	RemoteAddr string `json:"remote_addr,omitempty"`
	// PublicKeyFingerprint is set when the client offered a key.
	PublicKeyFingerprint string `json:"public_key_fingerprint,omitempty"`
}

func (e *SessionStart) attach(le *LogEntry) { le.SessionStart = e }

// SessionEnd marks the end of an interactive session.
type SessionEnd struct{}

func (e *SessionEnd) attach(le *LogEntry) { le.SessionEnd = e }

// LineRejected records an input line the validator refused.
type LineRejected struct {
	Line   string `json:"line"`
	Reason string `json:"reason"`
}

func (e *LineRejected) attach(le *LogEntry) { le.LineRejected = e }

// PipelineRun records one executed pipeline and how its stages exited.
type PipelineRun struct {
	Programs  []string `json:"programs"`
	ExitCodes []int    `json:"exit_codes,omitempty"`
	// Errors holds per-stage failure reasons, "" for stages that ran.
	Errors []string `json:"errors,omitempty"`
}

func (e *PipelineRun) attach(le *LogEntry) { le.PipelineRun = e }

// LogRecorder is a callback that stores events in an external datastore.
type LogRecorder func(le *LogEntry) error

// Logger captures interaction events for the interpreter.
type Logger struct {
	Record LogRecorder
}

// NewJsonLinesLogRecorder creates a Logger that exports logs in newline
// delimited JSON object format.
func NewJsonLinesLogRecorder(w io.Writer) *Logger {
	return &Logger{
		Record: func(le *LogEntry) error {
			entry, err := json.Marshal(le)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, string(entry))
			return err
		},
	}
}

// NewDiscardLogRecorder creates a Logger that drops every event.
func NewDiscardLogRecorder() *Logger {
	return &Logger{
		Record: func(le *LogEntry) error { return nil },
	}
}

func (l *Logger) recordEvent(sessionID string, event Event) error {
	le := &LogEntry{
		TimestampMicros: time.Now().UnixMicro(),
		SessionID:       sessionID,
	}
	event.attach(le)
	return l.Record(le)
}

// NewSession creates a logger with the attached session ID; a random ID is
// generated when id is empty.
func (l *Logger) NewSession(id string) *SessionLogger {
	if id == "" {
		id = fmt.Sprintf("%d", rand.Uint64())
	}
	return &SessionLogger{Logger: l, sessionID: id}
}

// SessionLogger logs events with a shared session ID.
type SessionLogger struct {
	*Logger
	sessionID string
}

// Record logs a single event under the session's ID.
func (l *SessionLogger) Record(event Event) error {
	return l.recordEvent(l.sessionID, event)
}
