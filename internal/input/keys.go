// Package input translates user key events and mouse events into the byte
// sequences a shell expects. It is pure and stateless: callers supply the
// terminal's current modes (cursor-key application mode, bracketed paste,
// mouse reporting mode) explicitly rather than the package tracking any
// state itself.
package input

// Modifiers mirrors the shift/alt/ctrl chord on a key or mouse event.
type Modifiers struct {
	Shift bool
	Alt   bool
	Ctrl  bool
}

// param returns the modifier bits shift + 2*alt + 4*ctrl, or 0 when no
// modifier is held (baseline form, no parameter). The CSI modifier
// parameter sent on the wire is this value plus 1.
func (m Modifiers) param() int {
	p := 0
	if m.Shift {
		p += 1
	}
	if m.Alt {
		p += 2
	}
	if m.Ctrl {
		p += 4
	}
	return p
}

// Key enumerates the named keys with dedicated escape sequences. Printable
// characters go through EncodeRune instead.
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyRight
	KeyLeft
	KeyHome
	KeyEnd
	KeyInsert
	KeyDelete
	KeyPageUp
	KeyPageDown
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyEscape
	KeyShiftTab
	KeyBackspace
	KeyEnter
)

// MouseButton identifies the button or wheel direction of a mouse event.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseMiddle
	MouseRight
	MouseRelease
	MouseWheelUp
	MouseWheelDown
)

// MouseMode mirrors vt.MouseMode without importing the vt package, so that
// vt can import this package without an import cycle.
type MouseMode int

const (
	MouseModeOff MouseMode = iota
	MouseModeX10
	MouseModeNormal
	MouseModeSGR
)
