package identity

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileStore is an identity store persisted as a TOML file so that separate
// haus processes observe the same participant. Reads are served from memory;
// every setter writes the whole file back.
type FileStore struct {
	Path string

	mem *Memory
}

// OpenFileStore loads the identity at path. A missing file yields the
// Default identity; the file is created on the first write.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{Path: path, mem: NewMemory(Default())}
	if _, err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the file and reports whether the identity changed.
func (s *FileStore) Reload() (bool, error) {
	id, err := readIdentity(s.Path)
	if err != nil {
		return false, err
	}
	return s.mem.replace(id), nil
}

// Snapshot returns a copy of the current identity.
func (s *FileStore) Snapshot() Identity {
	return s.mem.Snapshot()
}

// ParticipantName returns the current display name.
func (s *FileStore) ParticipantName() string {
	return s.mem.ParticipantName()
}

// InteractionRequired reports whether a user interaction is still required.
func (s *FileStore) InteractionRequired() bool {
	return s.mem.InteractionRequired()
}

// SetParticipantName updates the name in memory and persists it. The
// in-memory value is kept even when the write fails.
func (s *FileStore) SetParticipantName(name string) error {
	_ = s.mem.SetParticipantName(name)
	return s.persist()
}

// SetInteractionRequired updates the flag in memory and persists it.
func (s *FileStore) SetInteractionRequired(required bool) error {
	_ = s.mem.SetInteractionRequired(required)
	return s.persist()
}

func (s *FileStore) persist() error {
	data, err := toml.Marshal(s.mem.Snapshot())
	if err != nil {
		return fmt.Errorf("identity: marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("identity: create dir: %w", err)
	}
	// Write to a sibling temp file and rename so watchers never see a
	// half-written document.
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("identity: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("identity: rename %s: %w", s.Path, err)
	}
	return nil
}

func readIdentity(path string) (Identity, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Identity{}, fmt.Errorf("identity: read %s: %w", path, err)
	}
	id := Default()
	if err := toml.Unmarshal(data, &id); err != nil {
		return Identity{}, fmt.Errorf("identity: parse %s: %w", path, err)
	}
	return id, nil
}
