// Package telemetry provides a JSONL event stream for recording join-flow
// transitions. Every bootstrap, submission, creation outcome, presented error
// and navigation is recorded as a structured JSON event so that a session can
// be audited after the screen has closed.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event kinds identify the type of telemetry event.
const (
	KindBootstrapRequested  = "bootstrap_requested"
	KindBootstrapFailed     = "bootstrap_failed"
	KindJoinSubmitted       = "join_submitted"
	KindJoinRejected        = "join_rejected"
	KindSpaceCreated        = "space_created"
	KindSpaceFailed         = "space_failed"
	KindErrorPresented      = "error_presented"
	KindErrorDismissed      = "error_dismissed"
	KindNavigated           = "navigated"
	KindIdentityWriteFailed = "identity_write_failed"
)

// Event represents a single telemetry record. Each event carries a timestamp,
// a kind tag, and optional context identifiers (session, attempt, space) along
// with arbitrary structured data.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Kind      string    `json:"kind"`
	SessionID string    `json:"session,omitempty"`
	AttemptID string    `json:"attempt,omitempty"`
	SpaceID   string    `json:"space,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// Emitter writes telemetry events to a JSONL file. It is safe for concurrent
// use by multiple goroutines. A nil *Emitter is a valid no-op emitter.
type Emitter struct {
	file      *os.File
	enc       *json.Encoder
	sessionID string
	now       func() time.Time
	mu        sync.Mutex
}

// NewEmitter creates a new Emitter that writes JSONL events to the file at
// path. The file is created if it does not exist, or appended to if it does.
func NewEmitter(path string) (*Emitter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	return &Emitter{
		file: f,
		enc:  json.NewEncoder(f),
		now:  time.Now,
	}, nil
}

// NewSessionEmitter creates dir if needed and opens <dir>/<sessionID>.jsonl.
// Every event emitted through the returned Emitter is stamped with sessionID.
// An empty dir disables telemetry and yields a nil Emitter.
func NewSessionEmitter(dir, sessionID string) (*Emitter, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("telemetry: create %s: %w", dir, err)
	}
	em, err := NewEmitter(filepath.Join(dir, sessionID+".jsonl"))
	if err != nil {
		return nil, err
	}
	em.sessionID = sessionID
	return em, nil
}

// Emit writes a single event to the JSONL file. It is safe for concurrent use.
// A zero Timestamp is filled with the current time and a missing SessionID
// with the emitter's session. Calling Emit on a nil Emitter is a no-op.
func (e *Emitter) Emit(evt Event) error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if evt.Timestamp.IsZero() {
		evt.Timestamp = e.now().UTC()
	}
	if evt.SessionID == "" {
		evt.SessionID = e.sessionID
	}
	if err := e.enc.Encode(evt); err != nil {
		return fmt.Errorf("telemetry: encode event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file. Calling Close on a nil
// Emitter is a no-op.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("telemetry: close: %w", err)
	}
	return nil
}
