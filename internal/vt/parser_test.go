package vt

import (
	"strings"
	"testing"
)

// Plain text followed by CRLF lands in row 0 and moves the cursor to
// the start of row 1.
func TestHello(t *testing.T) {
	var rects []Rect
	p := New(25, 80, Callbacks{OnDamage: func(r Rect) { rects = append(rects, r) }})
	p.Write([]byte("Hello\r\n"))
	p.FlushDamage()

	want := "Hello"
	for i, r := range want {
		if got := p.CellAt(0, i).Rune; got != r {
			t.Fatalf("cell (0,%d) = %q, want %q", i, got, r)
		}
	}
	c := p.Cursor()
	if c.Row != 1 || c.Col != 0 {
		t.Fatalf("cursor = (%d,%d), want (1,0)", c.Row, c.Col)
	}
	sawRow0, sawRow1 := false, false
	for _, r := range rects {
		if r.RowStart <= 0 && r.RowEnd > 0 {
			sawRow0 = true
		}
		if r.RowStart <= 1 && r.RowEnd > 1 {
			sawRow1 = true
		}
	}
	if !sawRow0 || !sawRow1 {
		t.Fatalf("damage rects %v must cover row 0 and row 1", rects)
	}
}

// Writing 30 lines to a 10-row screen must push exactly the first 20
// to scrollback and leave the last 10 visible.
func TestScrollIntoScrollback(t *testing.T) {
	var pushed []Row
	p := New(10, 20, Callbacks{
		OnScrollbackPush: func(row Row) { pushed = append(pushed, row.Clone()) },
	})
	for n := 0; n < 30; n++ {
		p.Write([]byte{'L'})
		p.Write([]byte(itoa(n)))
		p.Write([]byte("\r\n"))
	}
	p.FlushDamage()

	if len(pushed) != 20 {
		t.Fatalf("pushed %d rows, want 20", len(pushed))
	}
	// The 10 remaining visible lines are L20..L29, one per row.
	rowPrefix := func(row int) string {
		return string(p.CellAt(row, 0).Rune) + string(p.CellAt(row, 1).Rune) + string(p.CellAt(row, 2).Rune)
	}
	if got := rowPrefix(0); got != "L20" {
		t.Fatalf("row 0 starts %q, want \"L20\"", got)
	}
	if got := rowPrefix(9); got != "L29" {
		t.Fatalf("row 9 starts %q, want \"L29\"", got)
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// SGR attributes apply to cells written after them and stop at SGR 0.
func TestSGRThenReset(t *testing.T) {
	p := New(25, 80, Callbacks{})
	p.Write([]byte("\x1b[1;31mX\x1b[0mY"))
	p.FlushDamage()

	c0 := p.CellAt(0, 0)
	if c0.Rune != 'X' || !c0.Attrs.Bold || c0.FG.Kind != ColorIndexed || c0.FG.Index != 1 {
		t.Fatalf("cell 0 = %+v, want bold red X", c0)
	}
	c1 := p.CellAt(0, 1)
	if c1.Rune != 'Y' || c1.Attrs.Bold || c1.FG.Kind != ColorDefault {
		t.Fatalf("cell 1 = %+v, want default Y", c1)
	}
}

// An East Asian wide character occupies a width-2 cell followed by a
// width-0 companion.
func TestWideChar(t *testing.T) {
	p := New(25, 80, Callbacks{})
	p.Write([]byte("\xe3\x81\x82")) // U+3042, East Asian Wide
	p.FlushDamage()

	c0 := p.CellAt(0, 0)
	if c0.Rune != 0x3042 || c0.Width != 2 {
		t.Fatalf("cell 0 = %+v, want width-2 U+3042", c0)
	}
	c1 := p.CellAt(0, 1)
	if c1.Width != 0 {
		t.Fatalf("cell 1 width = %d, want 0", c1.Width)
	}
}

// Entering and leaving the alternate screen notifies property changes
// and never leaks rows into scrollback.
func TestAltScreenRestore(t *testing.T) {
	var props []Properties
	var pushed int
	p := New(10, 20, Callbacks{
		OnSetProp:        func(pr Properties) { props = append(props, pr) },
		OnScrollbackPush: func(Row) { pushed++ },
	})
	p.Write([]byte("before\r\n"))
	p.FlushDamage()

	p.Write([]byte("\x1b[?1049h\x1b[2J\x1b[?1049l"))
	p.FlushDamage()

	if len(props) < 2 {
		t.Fatalf("expected at least 2 prop notifications, got %d", len(props))
	}
	sawEnter, sawExit := false, false
	for _, pr := range props {
		if pr.AltScreen {
			sawEnter = true
		} else {
			sawExit = true
		}
	}
	if !sawEnter || !sawExit {
		t.Fatalf("expected both alt-screen enter and exit prop notifications, got %+v", props)
	}
	if p.AltScreenActive() {
		t.Fatal("alt screen should be inactive after 1049l")
	}
	if pushed != 0 {
		t.Fatalf("pushed %d rows during alt-screen episode, want 0", pushed)
	}
}

func TestCursorStaysInBoundsUnderArbitraryMotion(t *testing.T) {
	p := New(5, 5, Callbacks{})
	p.Write([]byte("\x1b[100;100H"))
	c := p.Cursor()
	if c.Row < 0 || c.Row >= 5 || c.Col < 0 || c.Col >= 5 {
		t.Fatalf("cursor %+v escaped screen bounds", c)
	}
}

func TestUnknownSequenceIgnoredWithoutLeakingBytes(t *testing.T) {
	p := New(5, 5, Callbacks{})
	p.Write([]byte("\x1b[9999zAB"))
	if p.CellAt(0, 0).Rune != 'A' || p.CellAt(0, 1).Rune != 'B' {
		t.Fatalf("unknown CSI sequence leaked into the grid: %q %q", p.CellAt(0, 0).Rune, p.CellAt(0, 1).Rune)
	}
}

func TestMalformedUTF8BecomesReplacementChar(t *testing.T) {
	p := New(5, 5, Callbacks{})
	p.Write([]byte{0xff, 'A'})
	if p.CellAt(0, 0).Rune != 0xFFFD {
		t.Fatalf("cell 0 = %q, want U+FFFD", p.CellAt(0, 0).Rune)
	}
	if p.CellAt(0, 1).Rune != 'A' {
		t.Fatalf("cell 1 = %q, want A", p.CellAt(0, 1).Rune)
	}
}

func TestCombiningCharacterAttachesToBase(t *testing.T) {
	p := New(5, 5, Callbacks{})
	// 'e' + combining acute accent (U+0301).
	p.Write([]byte("é"))
	c0 := p.CellAt(0, 0)
	if c0.Rune != 'e' {
		t.Fatalf("base rune = %q, want e", c0.Rune)
	}
	if len(c0.CombiningRunes()) != 1 || c0.CombiningRunes()[0] != 0x301 {
		t.Fatalf("combining runes = %v, want [U+0301]", c0.CombiningRunes())
	}
}

func TestResizeMarksEverythingDirtyAndPadsCells(t *testing.T) {
	p := New(5, 5, Callbacks{})
	p.Write([]byte("hi"))
	var rects []Rect
	p.cb.OnDamage = func(r Rect) { rects = append(rects, r) }
	p.Resize(8, 10)
	p.FlushDamage()

	if p.Rows() != 8 || p.Cols() != 10 {
		t.Fatalf("Rows/Cols = %d/%d, want 8/10", p.Rows(), p.Cols())
	}
	if len(rects) != 8 {
		t.Fatalf("resize should dirty every row, got %d dirty rects for 8 rows", len(rects))
	}
}

func TestScrollRegionUsedTracksDECSTBM(t *testing.T) {
	p := New(10, 20, Callbacks{})
	if p.ScrollRegionUsed() {
		t.Fatal("fresh parser must not report a scroll region in use")
	}
	p.Write([]byte("\x1b[2;8r"))
	if !p.ScrollRegionUsed() {
		t.Fatal("DECSTBM sub-region must set ScrollRegionUsed")
	}
	p.Reset()
	if p.ScrollRegionUsed() {
		t.Fatal("Reset must clear ScrollRegionUsed")
	}
}

func TestFullScreenDECSTBMDoesNotMarkRegionUsed(t *testing.T) {
	p := New(10, 20, Callbacks{})
	p.Write([]byte("\x1b[1;10r"))
	if p.ScrollRegionUsed() {
		t.Fatal("a full-screen DECSTBM is not a sub-region")
	}
}

// A line longer than the screen is wide must flow onto the next row: the
// wrap is deferred while the cursor sits on the last column and performed
// when the next glyph arrives.
func TestAutowrapFlowsOntoNextRow(t *testing.T) {
	p := New(25, 80, Callbacks{})
	p.Write([]byte(strings.Repeat("x", 85)))

	for c := 0; c < 80; c++ {
		if p.CellAt(0, c).Rune != 'x' {
			t.Fatalf("row 0 col %d = %q, want x", c, p.CellAt(0, c).Rune)
		}
	}
	for c := 0; c < 5; c++ {
		if p.CellAt(1, c).Rune != 'x' {
			t.Fatalf("row 1 col %d = %q, want x (wrapped tail)", c, p.CellAt(1, c).Rune)
		}
	}
	if p.CellAt(1, 5).Rune != ' ' {
		t.Fatalf("row 1 col 5 = %q, want blank", p.CellAt(1, 5).Rune)
	}
	cur := p.Cursor()
	if cur.Row != 1 || cur.Col != 5 {
		t.Fatalf("cursor = (%d,%d), want (1,5)", cur.Row, cur.Col)
	}
}

// CR/LF after exactly filling a row must cancel the deferred wrap, not
// stack an extra blank line on top of it.
func TestPendingWrapCanceledByCRLF(t *testing.T) {
	p := New(25, 10, Callbacks{})
	p.Write([]byte(strings.Repeat("x", 10)))
	p.Write([]byte("\r\nY"))
	if p.CellAt(1, 0).Rune != 'Y' {
		t.Fatalf("cell (1,0) = %q, want Y", p.CellAt(1, 0).Rune)
	}
	if p.CellAt(2, 0).Rune != ' ' {
		t.Fatalf("cell (2,0) = %q, want blank (no double line feed)", p.CellAt(2, 0).Rune)
	}
}

// A wide glyph that doesn't fit in the last column wraps whole onto the
// next row rather than splitting across the right edge.
func TestWideCharWrapsWholeAtRightEdge(t *testing.T) {
	p := New(25, 10, Callbacks{})
	p.Write([]byte("\x1b[1;10H"))   // park the cursor on the last column
	p.Write([]byte("\xe3\x81\x82")) // U+3042, width 2
	if p.CellAt(1, 0).Rune != 0x3042 || p.CellAt(1, 0).Width != 2 {
		t.Fatalf("cell (1,0) = %+v, want width-2 U+3042", p.CellAt(1, 0))
	}
	if p.CellAt(1, 1).Width != 0 {
		t.Fatalf("cell (1,1) width = %d, want 0", p.CellAt(1, 1).Width)
	}
}

// Wrapping off the bottom row scrolls the screen and lands the glyph on a
// fresh last row.
func TestAutowrapAtBottomScrolls(t *testing.T) {
	var pushed int
	p := New(3, 5, Callbacks{OnScrollbackPush: func(Row) { pushed++ }})
	p.Write([]byte("top\r\n\r\n")) // cursor to row 2
	p.Write([]byte(strings.Repeat("z", 6)))
	p.FlushDamage()
	if pushed != 1 {
		t.Fatalf("pushed %d rows, want 1 (the wrap evicted the top line)", pushed)
	}
	if p.CellAt(2, 0).Rune != 'z' {
		t.Fatalf("cell (2,0) = %q, want z (wrapped tail)", p.CellAt(2, 0).Rune)
	}
	if p.CellAt(1, 4).Rune != 'z' {
		t.Fatalf("cell (1,4) = %q, want z (filled line shifted up)", p.CellAt(1, 4).Rune)
	}
}

// Colon-subparameter SGR color forms select colors the same way the
// semicolon forms do.
func TestSGRColonSubparameterColors(t *testing.T) {
	p := New(5, 20, Callbacks{})
	p.Write([]byte("\x1b[38:2:10:20:30mA\x1b[0m\x1b[48:5:21mB"))

	a := p.CellAt(0, 0)
	if a.FG.Kind != ColorRGB || a.FG.R != 10 || a.FG.G != 20 || a.FG.B != 30 {
		t.Fatalf("cell A fg = %+v, want rgb(10,20,30)", a.FG)
	}
	b := p.CellAt(0, 1)
	if b.BG.Kind != ColorIndexed || b.BG.Index != 21 {
		t.Fatalf("cell B bg = %+v, want indexed 21", b.BG)
	}
	if b.FG.Kind != ColorDefault {
		t.Fatalf("cell B fg = %+v, want default after SGR 0", b.FG)
	}
}
