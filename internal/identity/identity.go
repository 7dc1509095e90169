// Package identity holds the participant identity shared between screens:
// the display name a user joins with and whether the client still needs a
// user interaction before media can start.
package identity

import "sync"

// Identity is the participant's shared identity.
type Identity struct {
	ParticipantName     string `toml:"participant_name"`
	InteractionRequired bool   `toml:"interaction_required"`
}

// Default returns the identity used before anything has been recorded: no
// name, and an interaction still required.
func Default() Identity {
	return Identity{InteractionRequired: true}
}

// Memory is an in-process identity store. It is safe for concurrent use.
type Memory struct {
	mu sync.RWMutex
	id Identity
}

// NewMemory returns a store seeded with id.
func NewMemory(id Identity) *Memory {
	return &Memory{id: id}
}

// Snapshot returns a copy of the current identity.
func (m *Memory) Snapshot() Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.id
}

// ParticipantName returns the current display name.
func (m *Memory) ParticipantName() string {
	return m.Snapshot().ParticipantName
}

// InteractionRequired reports whether a user interaction is still required.
func (m *Memory) InteractionRequired() bool {
	return m.Snapshot().InteractionRequired
}

// SetParticipantName replaces the display name. It never fails.
func (m *Memory) SetParticipantName(name string) error {
	m.mu.Lock()
	m.id.ParticipantName = name
	m.mu.Unlock()
	return nil
}

// SetInteractionRequired sets the interaction-required flag. It never fails.
func (m *Memory) SetInteractionRequired(required bool) error {
	m.mu.Lock()
	m.id.InteractionRequired = required
	m.mu.Unlock()
	return nil
}

// replace swaps the whole identity and reports whether it changed.
func (m *Memory) replace(id Identity) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	changed := m.id != id
	m.id = id
	return changed
}
