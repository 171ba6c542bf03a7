package store

import (
	"os"
	"testing"

	"github.com/spf13/afero"

	"alexterm/internal/api"
)

func newTestStore() *Store {
	return New(afero.NewMemMapFs(), "/home/lee/.alex")
}

func TestVoiceEnabled_DefaultsOn(t *testing.T) {
	s := newTestStore()
	if !s.VoiceEnabled() {
		t.Fatal("voice should default to enabled")
	}
}

func TestVoiceEnabled_ToggleTwiceRoundTrips(t *testing.T) {
	s := newTestStore()
	orig := s.VoiceEnabled()

	s.SetVoiceEnabled(!orig)
	if s.VoiceEnabled() == orig {
		t.Fatal("toggle did not persist")
	}
	s.SetVoiceEnabled(orig)
	if s.VoiceEnabled() != orig {
		t.Fatal("second toggle did not restore original value")
	}
}

func TestVoiceEnabled_MalformedFileFallsBack(t *testing.T) {
	s := newTestStore()
	afero.WriteFile(s.fs, s.path(settingsFile), []byte("{nope"), 0o644)
	if !s.VoiceEnabled() {
		t.Fatal("malformed settings should fall back to default")
	}
}

func TestDrainQueue_Missing(t *testing.T) {
	s := newTestStore()
	if msgs := s.DrainQueue(); msgs != nil {
		t.Fatalf("got %v, want nil for missing file", msgs)
	}
}

func TestDrainQueue_EmptiesFile(t *testing.T) {
	s := newTestStore()
	afero.WriteFile(s.fs, s.path(queueFile),
		[]byte(`[{"title":"A","body":"one"},{"title":"B","body":"two"}]`), 0o644)

	msgs := s.DrainQueue()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Title != "A" || msgs[0].Body != "one" || msgs[1].Body != "two" {
		t.Fatalf("content not preserved: %+v", msgs)
	}

	data, err := afero.ReadFile(s.fs, s.path(queueFile))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]" {
		t.Fatalf("file contains %q after drain, want []", data)
	}
}

func TestDrainQueue_MalformedLeftAlone(t *testing.T) {
	s := newTestStore()
	afero.WriteFile(s.fs, s.path(queueFile), []byte("{broken"), 0o644)

	if msgs := s.DrainQueue(); msgs != nil {
		t.Fatalf("got %v, want nil for malformed file", msgs)
	}
	data, _ := afero.ReadFile(s.fs, s.path(queueFile))
	if string(data) != "{broken" {
		t.Fatalf("malformed file was modified: %q", data)
	}
}

func TestAppendThenDrain(t *testing.T) {
	s := newTestStore()
	s.AppendQueue(api.Message{Title: "Heartbeat", Body: "first"})
	s.AppendQueue(api.Message{Title: "Heartbeat", Body: "second"})

	msgs := s.DrainQueue()
	if len(msgs) != 2 || msgs[0].Body != "first" || msgs[1].Body != "second" {
		t.Fatalf("round trip lost order or content: %+v", msgs)
	}
	if again := s.DrainQueue(); again != nil {
		t.Fatalf("second drain should be empty, got %+v", again)
	}
}

func TestMarker(t *testing.T) {
	s := newTestStore()
	if pid := s.MarkerPID(); pid != 0 {
		t.Fatalf("pid = %d before marker written", pid)
	}

	s.WriteMarker()
	if pid := s.MarkerPID(); pid != os.Getpid() {
		t.Fatalf("pid = %d, want %d", pid, os.Getpid())
	}

	s.RemoveMarker()
	if pid := s.MarkerPID(); pid != 0 {
		t.Fatalf("pid = %d after marker removed", pid)
	}
}
