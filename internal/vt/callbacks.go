package vt

// Properties is the terminal-properties snapshot delivered by OnSetProp.
type Properties struct {
	Title          string
	IconName       string
	CursorVisible  bool
	CursorBlink    bool
	CursorShape    CursorShape
	AltScreen      bool
	MouseMode      MouseMode
	BracketedPaste bool
}

type CursorShape uint8

const (
	CursorBlock CursorShape = iota
	CursorUnderline
	CursorBar
)

type MouseMode uint8

const (
	MouseOff MouseMode = iota
	MouseX10
	MouseNormal
	MouseSGR
)

// Rect is a half-open damage rectangle: rows [RowStart,RowEnd), columns
// [ColStart,ColEnd).
type Rect struct {
	RowStart, RowEnd int
	ColStart, ColEnd int
}

// Point is a (row, col) move-rect endpoint.
type Point struct {
	Row, Col int
}

// Callbacks is the capability object a Parser is constructed with; the
// session layer is the only intended subscriber. Any field may be left nil:
// a nil callback is simply not invoked (a nil OnMoveRect falls back to
// damage for both regions).
type Callbacks struct {
	OnDamage         func(r Rect)
	OnMoveRect       func(dest, src Rect)
	OnMoveCursor     func(row, col int, visible bool)
	OnSetProp        func(p Properties)
	OnBell           func()
	OnResize         func(rows, cols int)
	OnScrollbackPush func(row Row)
	OnOutput         func(data []byte)
}

func (c Callbacks) damage(r Rect) {
	if c.OnDamage != nil {
		c.OnDamage(r)
	}
}

func (c Callbacks) moveRect(dest, src Rect) {
	if c.OnMoveRect != nil {
		c.OnMoveRect(dest, src)
		return
	}
	// No optimization implemented by the subscriber: both regions must be
	// treated as damaged.
	c.damage(dest)
	c.damage(src)
}

func (c Callbacks) moveCursor(row, col int, visible bool) {
	if c.OnMoveCursor != nil {
		c.OnMoveCursor(row, col, visible)
	}
}

func (c Callbacks) setProp(p Properties) {
	if c.OnSetProp != nil {
		c.OnSetProp(p)
	}
}

func (c Callbacks) bell() {
	if c.OnBell != nil {
		c.OnBell()
	}
}

func (c Callbacks) resize(rows, cols int) {
	if c.OnResize != nil {
		c.OnResize(rows, cols)
	}
}

func (c Callbacks) scrollbackPush(row Row) {
	if c.OnScrollbackPush != nil {
		c.OnScrollbackPush(row)
	}
}

func (c Callbacks) output(data []byte) {
	if c.OnOutput != nil && len(data) > 0 {
		c.OnOutput(data)
	}
}
