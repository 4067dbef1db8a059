package termsession

import (
	"path/filepath"
	"testing"
	"time"
)

// Serialize then DeserializeSessionConfig must yield an equivalent config.
func TestSerializeDeserializeRoundTrip(t *testing.T) {
	c := SessionConfig{
		Title:           "build",
		ProfileName:     "dev",
		Shell:           "/bin/zsh",
		Args:            []string{"-l"},
		WorkingDir:      "/tmp",
		Rows:            40,
		Cols:            120,
		ScrollbackLines: 5000,
		TabIndex:        2,
	}
	c.applyDefaults()

	data, err := c.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	got := DeserializeSessionConfig(data)
	if got.Shell != c.Shell || got.Rows != c.Rows || got.Cols != c.Cols || got.TabIndex != c.TabIndex {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, c)
	}
}

func TestDeserializeMalformedYieldsDefaults(t *testing.T) {
	got := DeserializeSessionConfig([]byte("not: [valid yaml"))
	if got.Shell == "" || got.Rows != defaultRows || got.Cols != defaultCols {
		t.Fatalf("malformed document should still yield usable defaults, got %+v", got)
	}
}

func TestDeserializeEmptyAssignsFreshID(t *testing.T) {
	a := DeserializeSessionConfig(nil)
	b := DeserializeSessionConfig(nil)
	if a.ID == "" || b.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct generated IDs, got %q and %q", a.ID, b.ID)
	}
}

func TestSaveLoadSessionsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sessions.yaml")

	want := []SessionConfig{
		{Title: "one", Rows: 24, Cols: 80, TabIndex: 0},
		{Title: "two", Rows: 30, Cols: 100, TabIndex: 1},
	}
	if err := SaveSessions(path, want); err != nil {
		t.Fatalf("SaveSessions: %v", err)
	}

	got, err := LoadSessions(path)
	if err != nil {
		t.Fatalf("LoadSessions: %v", err)
	}
	if len(got) != 2 || got[0].Title != "one" || got[1].Title != "two" {
		t.Fatalf("LoadSessions round trip = %+v", got)
	}
}

func TestLoadSessionsMissingFileYieldsEmptySlice(t *testing.T) {
	got, err := LoadSessions(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadSessions: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("LoadSessions for missing file = %v, want empty non-nil slice", got)
	}
}

func TestSessionsWatcherFiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sessions.yaml")
	if err := SaveSessions(path, nil); err != nil {
		t.Fatalf("SaveSessions: %v", err)
	}

	changed := make(chan struct{}, 1)
	w, err := NewSessionsWatcher(path, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewSessionsWatcher: %v", err)
	}
	defer w.Stop()

	if err := SaveSessions(path, []SessionConfig{{Title: "x", Rows: 24, Cols: 80}}); err != nil {
		t.Fatalf("SaveSessions: %v", err)
	}

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatalf("watcher did not observe the write within the test timeout")
	}
}
