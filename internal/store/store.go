// Package store owns the files under the per-user state directory:
// the terminal settings document, the autonomous message queue, and the
// running-instance marker.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"alexterm/internal/api"
)

const (
	settingsFile = "terminal-config.json"
	queueFile    = "terminal-queue.json"
	markerFile   = "terminal-active"
)

// Settings is the whole persisted configuration document. It is rewritten
// in full on every change.
type Settings struct {
	VoiceEnabled *bool `json:"voice_enabled,omitempty"`
}

type Store struct {
	fs  afero.Fs
	dir string
}

func New(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

// Dir returns the state directory path.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// VoiceEnabled reads the persisted voice flag. Read failures fall back to
// the default (on) without surfacing an error.
func (s *Store) VoiceEnabled() bool {
	data, err := afero.ReadFile(s.fs, s.path(settingsFile))
	if err != nil {
		return true
	}
	var cfg Settings
	if err := json.Unmarshal(data, &cfg); err != nil {
		return true
	}
	if cfg.VoiceEnabled == nil {
		return true
	}
	return *cfg.VoiceEnabled
}

// SetVoiceEnabled persists the voice flag. Write failures are ignored.
func (s *Store) SetVoiceEnabled(enabled bool) {
	var cfg Settings
	if data, err := afero.ReadFile(s.fs, s.path(settingsFile)); err == nil {
		json.Unmarshal(data, &cfg)
	}
	cfg.VoiceEnabled = &enabled

	data, err := json.MarshalIndent(&cfg, "", "  ")
	if err != nil {
		return
	}
	s.fs.MkdirAll(s.dir, 0o755)
	afero.WriteFile(s.fs, s.path(settingsFile), data, 0o644)
}

// DrainQueue reads the queue file and, if it holds a non-empty list,
// truncates it to an empty list before returning the contents. A missing or
// malformed file yields nil and leaves the file untouched. There is no
// locking: a writer racing the read-then-clear can lose a message, which is
// accepted.
func (s *Store) DrainQueue() []api.Message {
	path := s.path(queueFile)

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil
	}

	var msgs []api.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil
	}
	if len(msgs) == 0 {
		return nil
	}

	// Clear first, then hand out, mirroring the producer contract.
	afero.WriteFile(s.fs, path, []byte("[]"), 0o644)
	return msgs
}

// AppendQueue adds a message to the end of the queue file, creating it if
// needed. Used by external producers (alexterm-queue).
func (s *Store) AppendQueue(msg api.Message) error {
	path := s.path(queueFile)

	var msgs []api.Message
	if data, err := afero.ReadFile(s.fs, path); err == nil {
		json.Unmarshal(data, &msgs)
	}
	msgs = append(msgs, msg)

	data, err := json.MarshalIndent(msgs, "", "  ")
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	return afero.WriteFile(s.fs, path, data, 0o644)
}

// WriteMarker records this process id in the marker file. Best-effort.
func (s *Store) WriteMarker() {
	s.fs.MkdirAll(s.dir, 0o755)
	afero.WriteFile(s.fs, s.path(markerFile), []byte(strconv.Itoa(os.Getpid())), 0o644)
}

// RemoveMarker deletes the marker file. Best-effort.
func (s *Store) RemoveMarker() {
	s.fs.Remove(s.path(markerFile))
}

// MarkerPID returns the pid recorded in the marker file, or 0 if there is
// no readable marker.
func (s *Store) MarkerPID() int {
	data, err := afero.ReadFile(s.fs, s.path(markerFile))
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}
