// Package ptysession owns the pseudo-console, the shell child process, and
// the reader thread. It knows nothing about VT parsing or cell grids; it
// only moves raw bytes in both directions and reports lifecycle transitions
// through callbacks.
package ptysession

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/creack/pty"
)

// State is the PTY session lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateExited
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	default:
		return "unknown"
	}
}

// Config describes how to spawn the child shell.
type Config struct {
	Shell      string
	Args       []string
	WorkingDir string
	Rows       int
	Cols       int
	// ExtraEnv overrides/augments the child's environment, inherited from
	// os.Environ() by default.
	ExtraEnv map[string]string
}

// Session owns one pseudo-console, its child process, and one reader
// thread. Start/Stop are not reentrant. Resize, Write, and the accessors
// are safe to call concurrently with each other and with the reader thread
// once Start has returned successfully.
type Session struct {
	// OnOutput is invoked from the reader thread with each chunk read from the
	// PTY. Implementations (the session layer) must not block for long — it is
	// meant to push into a ring buffer and return.
	OnOutput func(data []byte)
	// OnExit is invoked once, from the reader thread, when the child process
	// has exited and the reader loop is about to end.
	OnExit func(code uint32)
	// OnError is invoked from the reader thread for any I/O error other than a
	// clean shutdown (broken pipe / operation aborted).
	OnError func(err error)

	mu       sync.Mutex
	cmd      *exec.Cmd
	ptm      *os.File
	rows     int
	cols     int
	state    atomic.Int32
	lastErr  error
	pid      int
	exitCode uint32

	readerDone chan struct{}
	lastOutput atomic.Int64 // unix nanos, for IsIdle

	writeMu sync.Mutex
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Pid returns the child process id, or 0 if never started.
func (s *Session) Pid() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pid
}

// Size returns the last (cols, rows) applied via Start or Resize.
func (s *Session) Size() (cols, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cols, s.rows
}

// LastError returns the most recent error recorded by the reader thread or
// a failed Write, if any.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ExitCode returns the child's exit code, valid once State() ==
// StateExited.
func (s *Session) ExitCode() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitCode
}

// IsIdle reports whether more than d has elapsed since the last PTY output
// was observed. A session that has never produced output is never idle.
func (s *Session) IsIdle(d time.Duration) bool {
	last := s.lastOutput.Load()
	if last == 0 {
		return false
	}
	return time.Since(time.Unix(0, last)) > d
}

// Start creates the pipes, creates the pseudo-console at the requested
// size, spawns the shell with it attached, and launches the reader thread.
// On any failure all partial resources are released and no side effects
// remain.
func (s *Session) Start(cfg Config) error {
	s.mu.Lock()
	if State(s.state.Load()) != StateIdle {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.mu.Unlock()

	if cfg.Rows <= 0 || cfg.Cols <= 0 {
		return ErrInvalidGeometry
	}

	shell := cfg.Shell
	if shell == "" {
		shell = defaultShell()
	}

	cmd := exec.Command(shell, cfg.Args...)
	cmd.Dir = cfg.WorkingDir
	cmd.Env = mergeEnv(os.Environ(), cfg.ExtraEnv)

	ptm, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(cfg.Rows),
		Cols: uint16(cfg.Cols),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProcessLaunchFailed, err)
	}

	s.mu.Lock()
	s.cmd = cmd
	s.ptm = ptm
	s.rows = cfg.Rows
	s.cols = cfg.Cols
	s.pid = cmd.Process.Pid
	s.readerDone = make(chan struct{})
	s.mu.Unlock()

	s.state.Store(int32(StateRunning))

	go s.readLoop()
	return nil
}

func defaultShell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}

func mergeEnv(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return base
	}
	env := make([]string, 0, len(base)+len(extra))
	for _, kv := range base {
		key := kv
		for i, c := range kv {
			if c == '=' {
				key = kv[:i]
				break
			}
		}
		if _, overridden := extra[key]; !overridden {
			env = append(env, kv)
		}
	}
	for k, v := range extra {
		env = append(env, k+"="+v)
	}
	return env
}

// readLoop is the reader thread. It never touches the parser or the grid;
// it only reads, invokes OnOutput, and on termination invokes OnExit or
// OnError.
func (s *Session) readLoop() {
	defer close(s.readerDone)

	buf := make([]byte, 4096)
	for {
		n, err := s.ptm.Read(buf)
		if n > 0 {
			s.lastOutput.Store(time.Now().UnixNano())
			if s.OnOutput != nil {
				s.OnOutput(buf[:n])
			}
		}
		if err != nil {
			if isCleanReadEOF(err) {
				s.onChildGone()
				return
			}
			s.mu.Lock()
			s.lastErr = err
			s.mu.Unlock()
			if s.OnError != nil {
				s.OnError(err)
			}
			s.onChildGone()
			return
		}
	}
}

func (s *Session) onChildGone() {
	code := s.waitChild()
	s.mu.Lock()
	s.exitCode = code
	s.mu.Unlock()
	s.state.Store(int32(StateExited))
	if s.OnExit != nil {
		s.OnExit(code)
	}
}

func (s *Session) waitChild() uint32 {
	s.mu.Lock()
	cmd := s.cmd
	s.mu.Unlock()
	if cmd == nil {
		return 0
	}
	err := cmd.Wait()
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		if exitErr.ExitCode() >= 0 {
			return uint32(exitErr.ExitCode())
		}
	}
	return 1
}

// Write performs a blocking write to the PTY input pipe, bounded by
// timeout. If the child isn't reading its stdin the kernel pipe buffer
// fills and Write would otherwise block forever; on timeout it returns
// ErrWriteTimeout and the caller should treat the child as hung.
func (s *Session) Write(p []byte, timeout time.Duration) (int, error) {
	s.mu.Lock()
	ptm := s.ptm
	s.mu.Unlock()
	if ptm == nil {
		return 0, fmt.Errorf("ptysession: write: %w", os.ErrClosed)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	type result struct {
		n   int
		err error
	}
	ch := make(chan result, 1)
	go func() {
		n, err := ptm.Write(p)
		ch <- result{n, err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case r := <-ch:
		if r.err != nil {
			s.mu.Lock()
			s.lastErr = r.err
			s.mu.Unlock()
		}
		return r.n, r.err
	case <-timer.C:
		return 0, ErrWriteTimeout
	}
}

// Resize forwards to the pseudo-console's resize API and updates the cached
// size.
func (s *Session) Resize(cols, rows int) error {
	if cols <= 0 || rows <= 0 {
		return ErrInvalidGeometry
	}
	s.mu.Lock()
	ptm := s.ptm
	s.mu.Unlock()
	if ptm == nil {
		return nil
	}
	if err := pty.Setsize(ptm, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)}); err != nil {
		return fmt.Errorf("ptysession: resize: %w", err)
	}
	s.mu.Lock()
	s.cols, s.rows = cols, rows
	s.mu.Unlock()
	return nil
}

// Stop closes the pseudo-console first — the defined way to unblock the
// reader thread's blocking read — joins the reader with a bounded wait,
// force-terminates the child if still alive, then closes the pipe. Safe to
// call multiple times.
func (s *Session) Stop(joinTimeout time.Duration) {
	s.mu.Lock()
	ptm := s.ptm
	cmd := s.cmd
	done := s.readerDone
	s.mu.Unlock()

	if ptm == nil {
		return
	}

	ptm.Close() // unblocks the reader's blocking Read with os.ErrClosed

	if done != nil {
		select {
		case <-done:
		case <-time.After(joinTimeout):
			s.mu.Lock()
			s.lastErr = fmt.Errorf("ptysession: reader thread did not exit within %s", joinTimeout)
			s.mu.Unlock()
		}
	}

	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}

	if State(s.state.Load()) == StateRunning {
		s.state.Store(int32(StateIdle))
	}
}
