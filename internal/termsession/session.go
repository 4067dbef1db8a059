// Package termsession wires the PTY, the VT parser, and the cell grid
// together into the single per-tab object the UI layer drives.
package termsession

import (
	"sync"
	"time"

	"console3/internal/grid"
	"console3/internal/input"
	"console3/internal/ptysession"
	"console3/internal/ring"
	"console3/internal/vt"
)

const (
	writeTimeout   = 2 * time.Second
	stopJoinWindow = 2 * time.Second
	ringCapacity   = 1 << 16
)

// Handlers are the session-level callbacks the UI layer subscribes to. They
// are the host-facing subset of the parser's notifications; the rest is
// consumed internally to maintain the grid.
type Handlers struct {
	OnDamage func(r vt.Rect)
	OnBell   func()
	OnTitle  func(title string)
	OnExit   func(code uint32)
	OnError  func(err error)
}

// Session is the per-tab object: it owns a PTY child process, pumps its
// output through the VT parser, and keeps a grid in sync for rendering.
type Session struct {
	mu sync.Mutex

	cfg SessionConfig

	pty    *ptysession.Session
	parser *vt.Parser
	grid   *grid.Grid
	ring   *ring.Buffer

	handlers Handlers
}

// New constructs a Session from a persisted config and a set of UI
// callbacks. The PTY child is not started until Start is called.
func New(cfg SessionConfig, h Handlers) *Session {
	cfg.applyDefaults()
	s := &Session{
		cfg:      cfg,
		pty:      &ptysession.Session{},
		ring:     ring.New(ringCapacity),
		handlers: h,
	}
	g, err := grid.New(cfg.Rows, cfg.Cols, cfg.ScrollbackLines)
	if err != nil {
		// applyDefaults guarantees positive Rows/Cols; this would be a
		// programming error, not a runtime condition.
		panic(err)
	}
	s.grid = g
	s.parser = vt.New(cfg.Rows, cfg.Cols, s.callbacks())
	s.pty.OnOutput = s.onPTYOutput
	s.pty.OnExit = s.onPTYExit
	s.pty.OnError = s.onPTYError
	return s
}

func (s *Session) callbacks() vt.Callbacks {
	return vt.Callbacks{
		OnDamage:     s.onDamage,
		OnMoveRect:   nil, // no renderer-side blit optimization; fall back to damage
		OnMoveCursor: nil,
		OnSetProp:    s.onSetProp,
		OnBell:       s.onBell,
		OnResize:     nil,
		OnScrollbackPush: func(row vt.Row) {
			s.grid.PushScrollback(row)
		},
		OnOutput: s.onParserOutput,
	}
}

// Start launches the PTY child and begins the session.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pty.Start(ptysession.Config{
		Shell:      s.cfg.Shell,
		Args:       s.cfg.Args,
		WorkingDir: s.cfg.WorkingDir,
		Rows:       s.cfg.Rows,
		Cols:       s.cfg.Cols,
	})
}

// onPTYOutput is invoked from the PTY reader thread. It only enqueues bytes
// into the lock-free ring; the parser never runs on the reader thread.
func (s *Session) onPTYOutput(data []byte) {
	for len(data) > 0 {
		n := s.ring.Write(data)
		if n == 0 {
			// Ring is full; the owning UI thread isn't draining fast enough. Drop
			// rather than block the reader, matching the ring's own overflow
			// contract.
			return
		}
		data = data[n:]
	}
}

func (s *Session) onPTYExit(code uint32) {
	if s.handlers.OnExit != nil {
		s.handlers.OnExit(code)
	}
}

func (s *Session) onPTYError(err error) {
	if s.handlers.OnError != nil {
		s.handlers.OnError(err)
	}
}

// ProcessOutput is the pump: it drains whatever the PTY reader has enqueued
// into the ring, feeds it to the parser, and flushes accumulated damage in
// one pass. The UI thread calls this once per frame tick or whenever it's
// notified the ring is non-empty.
func (s *Session) ProcessOutput() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf [4096]byte
	for {
		n := s.ring.ReadInto(buf[:])
		if n == 0 {
			break
		}
		s.parser.Write(buf[:n])
	}
	s.parser.FlushDamage()
	s.grid.SetScrollRegionUsed(s.parser.ScrollRegionUsed())
}

// onDamage mirrors a damaged rectangle of the parser's active screen into
// the grid, then forwards it to the UI.
func (s *Session) onDamage(r vt.Rect) {
	for row := r.RowStart; row < r.RowEnd; row++ {
		cells := s.parser.RowCells(row)
		for col := r.ColStart; col < r.ColEnd && col < len(cells); col++ {
			s.grid.Set(row, col, cells[col])
		}
	}
	if s.handlers.OnDamage != nil {
		s.handlers.OnDamage(r)
	}
}

// onSetProp forwards a terminal-property change to the UI. The parser
// already tracks DECCKM, mouse mode, and bracketed paste internally and
// consults them directly in KeyboardKey/Mouse/Paste, so the session only
// needs to surface title changes here.
func (s *Session) onSetProp(p vt.Properties) {
	if s.handlers.OnTitle != nil && p.Title != "" {
		s.handlers.OnTitle(p.Title)
	}
}

func (s *Session) onBell() {
	if s.handlers.OnBell != nil {
		s.handlers.OnBell()
	}
}

// onParserOutput is invoked synchronously when the parser needs to write a
// reply back to the child (DA/DSR/OSC color query responses). It is
// forwarded straight to the PTY write path.
func (s *Session) onParserOutput(data []byte) {
	_, _ = s.pty.Write(data, writeTimeout)
}

// Write sends raw bytes to the PTY child, e.g. pre-encoded input sequences
// from internal/input. It returns ErrNotRunning without writing anything
// unless the PTY child is running (before Start and after exit alike).
func (s *Session) Write(data []byte) error {
	if s.pty.State() != ptysession.StateRunning {
		return ErrNotRunning
	}
	_, err := s.pty.Write(data, writeTimeout)
	return err
}

// KeyboardKey translates and sends a named key, honoring the parser's live
// DECCKM mode. The parser routes the encoded bytes to the PTY via its
// OnOutput callback.
func (s *Session) KeyboardKey(key input.Key, mods input.Modifiers) {
	s.parser.KeyboardKey(key, mods)
}

// KeyboardUnichar translates and sends a printable or control character.
func (s *Session) KeyboardUnichar(r rune, mods input.Modifiers) {
	s.parser.KeyboardUnichar(r, mods)
}

// Paste sends pasted text, wrapping it in bracketed-paste markers if the
// child has enabled that mode.
func (s *Session) Paste(data []byte) {
	s.parser.Paste(data)
}

// Mouse translates and sends a mouse event, honoring the parser's current
// mouse-reporting mode.
func (s *Session) Mouse(btn input.MouseButton, mods input.Modifiers, row, col int, pressed bool) {
	s.parser.Mouse(btn, mods, row, col, pressed)
}

// Resize propagates a terminal resize through the PTY, the parser, and the
// grid in that order. The grid evicts to scrollback only when the primary
// screen is the one being resized.
func (s *Session) Resize(cols, rows int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.pty.Resize(cols, rows); err != nil {
		return err
	}
	s.parser.Resize(rows, cols)
	return s.grid.Resize(rows, cols, !s.parser.AltScreenActive())
}

// PopScrollback performs a UI-driven scroll into history.
func (s *Session) PopScrollback() (vt.Row, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.PopScrollback()
}

// Cursor returns the parser's current cursor state, for a renderer that
// needs to place the real cursor after drawing a frame.
func (s *Session) Cursor() vt.Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parser.Cursor()
}

// Grid exposes the renderer-facing cell grid for read access.
func (s *Session) Grid() *grid.Grid { return s.grid }

// CopyRegion extracts a row range as text and encodes it as an OSC 52
// clipboard-set sequence for the host to write to the real terminal. The
// actual clipboard transport stays outside the core.
func (s *Session) CopyRegion(rowStart, rowEnd, colStart, colEnd int) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	var text string
	for row := rowStart; row < rowEnd; row++ {
		if row > rowStart {
			text += "\n"
		}
		text += s.grid.RegionText(row, colStart, colEnd)
	}
	return input.EncodeClipboardCopy([]byte(text))
}

// Config returns the session's launch configuration.
func (s *Session) Config() SessionConfig { return s.cfg }

// Stop terminates the PTY child and waits up to a bounded window for its
// reader thread to finish.
func (s *Session) Stop() {
	s.pty.Stop(stopJoinWindow)
}

// IsIdle reports whether the child has produced no output for d.
func (s *Session) IsIdle(d time.Duration) bool {
	return s.pty.IsIdle(d)
}
