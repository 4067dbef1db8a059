package termsession

import (
	"strings"
	"sync"
	"testing"
	"time"

	"console3/internal/input"
	"console3/internal/vt"
)

func waitForExit(t *testing.T, done chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("session did not exit within the test timeout")
	}
}

// TestSessionRunsCommandAndUpdatesGrid exercises the full
// PTY-to-parser-to-grid pump end to end: a real child process writes text,
// the pump drains it through the parser into the grid.
func TestSessionRunsCommandAndUpdatesGrid(t *testing.T) {
	done := make(chan struct{})
	var mu sync.Mutex
	var damaged bool

	s := New(SessionConfig{
		Shell: "/bin/sh",
		Args:  []string{"-c", "printf hello"},
		Rows:  5,
		Cols:  20,
	}, Handlers{
		OnDamage: func(r vt.Rect) {
			mu.Lock()
			damaged = true
			mu.Unlock()
		},
		OnExit: func(code uint32) {
			close(done)
		},
	})

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	waitForExit(t, done)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.ProcessOutput()
		mu.Lock()
		d := damaged
		mu.Unlock()
		if d {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if got := s.Grid().RowText(0); !strings.Contains(got, "hello") {
		t.Fatalf("row 0 text = %q, want it to contain %q", got, "hello")
	}
}

// TestSessionResizePropagatesToPTYAndGrid checks that a resize of a running
// session succeeds through the PTY and leaves the grid at the new shape.
func TestSessionResizePropagatesToPTYAndGrid(t *testing.T) {
	done := make(chan struct{})
	s := New(SessionConfig{
		Shell: "/bin/cat",
		Rows:  10,
		Cols:  10,
	}, Handlers{OnExit: func(uint32) { close(done) }})

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	if err := s.Resize(30, 15); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if s.Grid().Rows() != 15 || s.Grid().Cols() != 30 {
		t.Fatalf("grid shape after resize = %dx%d, want 15x30", s.Grid().Rows(), s.Grid().Cols())
	}

	s.Stop()
	waitForExit(t, done)
}

func TestSessionWriteBeforeStartFails(t *testing.T) {
	s := New(SessionConfig{Shell: "/bin/sh", Rows: 10, Cols: 10}, Handlers{})
	if err := s.Write([]byte("x")); err != ErrNotRunning {
		t.Fatalf("Write before Start = %v, want ErrNotRunning", err)
	}
}

func TestSessionKeyboardUnicharSendsBytesToChild(t *testing.T) {
	done := make(chan struct{})

	s := New(SessionConfig{Shell: "/bin/cat", Rows: 10, Cols: 10}, Handlers{
		OnDamage: func(r vt.Rect) {},
		OnExit:   func(uint32) { close(done) },
	})
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	s.KeyboardUnichar('a', input.Modifiers{})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.ProcessOutput()
		if s.Grid().RowText(0) != "" {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if got := s.Grid().RowText(0); got != "a" {
		t.Fatalf("row 0 text after echoing 'a' = %q, want \"a\"", got)
	}
}

func TestSessionCopyRegionEncodesOSC52(t *testing.T) {
	done := make(chan struct{})

	s := New(SessionConfig{Shell: "/bin/sh", Args: []string{"-c", "printf hello"}, Rows: 5, Cols: 20}, Handlers{
		OnDamage: func(r vt.Rect) {},
		OnExit:   func(uint32) { close(done) },
	})
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitForExit(t, done)
	s.ProcessOutput()

	seq := s.CopyRegion(0, 1, 0, 20)
	if !strings.HasPrefix(string(seq), "\x1b]52;") {
		t.Fatalf("CopyRegion sequence = %q, want OSC 52 prefix", seq)
	}
	if !strings.Contains(string(seq), "\x1b\\") && !strings.HasSuffix(string(seq), "\a") {
		t.Fatalf("CopyRegion sequence = %q, want ST or BEL terminator", seq)
	}
}
