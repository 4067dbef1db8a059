package vt

import (
	"strconv"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

type parserState uint8

const (
	stGround parserState = iota
	stEscape
	stCSI
	stOSC
	stOSCEsc
	stDCS
	stDCSEsc
)

type dirtyRange struct{ lo, hi int } // half-open [lo,hi); lo<0 means clean

// Parser is the VT byte-stream state machine. It owns the primary and
// alternate screens, the cursor, scroll region, and terminal properties,
// and emits notifications through a Callbacks capability object rather than
// mutating a grid directly.
type Parser struct {
	rows, cols int

	primary *screen
	alt     *screen
	active  *screen
	altMode bool

	cursor      Cursor
	savedCursor Cursor

	scrollTop, scrollBottom int // inclusive, 0-based, within the active screen
	scrollRegionUsed        bool

	// pendingWrap is the DECAWM deferred-wrap state: after a glyph fills the
	// last column the cursor stays put and the wrap to the next row happens
	// only when another glyph arrives; control characters, escapes and CSI
	// sequences cancel it. pendingScroll is the same deferral for a line feed
	// at the bottom margin; it is carried out before the next glyph, line
	// feed, reverse index or CSI sequence (cursor motion included) is applied.
	pendingWrap   bool
	pendingScroll bool

	curFG, curBG Color
	curAttrs     Attrs

	title, iconName string
	mouseMode       MouseMode
	bracketedPaste  bool
	cursorAppMode   bool // DECCKM

	// defaultFG/BG back OSC 10/11 query responses only; the parser never uses
	// them to resolve a cell's "default" color for rendering.
	defaultFG, defaultBG Color

	cb Callbacks

	state    parserState
	params   []string
	curParam []byte
	private  byte // '?' when the CSI sequence has a private-mode prefix
	oscBuf   []byte

	utf8buf []byte

	haveLastBase             bool
	lastBaseRow, lastBaseCol int
	lastBaseRune             rune

	dirty         []dirtyRange
	pendingPushes []Row
}

// New constructs a Parser over a rows x cols screen pair, both flavors
// starting blank with the primary screen active and all rows dirty.
func New(rows, cols int, cb Callbacks) *Parser {
	p := &Parser{
		rows: rows, cols: cols,
		primary: newScreen(rows, cols),
		alt:     newScreen(rows, cols),
		cb:      cb,
		curFG:   DefaultColor, curBG: DefaultColor,
		defaultFG: DefaultColor, defaultBG: DefaultColor,
		scrollBottom: rows - 1,
	}
	p.active = p.primary
	p.cursor.Visible = true
	p.resetDirty()
	p.markAllDirty()
	return p
}

// SetDefaultColors supplies the colors OSC 10/11 queries should report.
func (p *Parser) SetDefaultColors(fg, bg Color) {
	p.defaultFG, p.defaultBG = fg, bg
}

func (p *Parser) resetDirty() {
	p.dirty = make([]dirtyRange, p.rows)
	for i := range p.dirty {
		p.dirty[i] = dirtyRange{-1, -1}
	}
}

func (p *Parser) markAllDirty() {
	for r := 0; r < p.rows; r++ {
		p.markDirty(r, 0, p.cols)
	}
}

func (p *Parser) markDirty(row, colStart, colEnd int) {
	if row < 0 || row >= len(p.dirty) {
		return
	}
	d := p.dirty[row]
	if d.lo < 0 {
		p.dirty[row] = dirtyRange{colStart, colEnd}
		return
	}
	if colStart < d.lo {
		d.lo = colStart
	}
	if colEnd > d.hi {
		d.hi = colEnd
	}
	p.dirty[row] = d
}

// FlushDamage emits queued OnScrollbackPush callbacks (in the order they
// occurred) followed by OnDamage rectangles for every row touched since
// the last flush, then clears both queues. The session's output pump calls
// this once per tick, after feeding all pending bytes to Write.
func (p *Parser) FlushDamage() {
	for _, row := range p.pendingPushes {
		p.cb.scrollbackPush(row)
	}
	p.pendingPushes = p.pendingPushes[:0]

	for r, d := range p.dirty {
		if d.lo < 0 {
			continue
		}
		p.cb.damage(Rect{RowStart: r, RowEnd: r + 1, ColStart: d.lo, ColEnd: d.hi})
		p.dirty[r] = dirtyRange{-1, -1}
	}
}

// Reset restores the parser to its just-constructed state.
func (p *Parser) Reset() {
	p.primary.clear()
	p.alt.clear()
	p.active = p.primary
	p.altMode = false
	p.cursor = Cursor{Visible: true}
	p.savedCursor = Cursor{}
	p.scrollTop, p.scrollBottom = 0, p.rows-1
	p.scrollRegionUsed = false
	p.curFG, p.curBG = DefaultColor, DefaultColor
	p.curAttrs = Attrs{}
	p.title, p.iconName = "", ""
	p.mouseMode = MouseOff
	p.bracketedPaste = false
	p.cursorAppMode = false
	p.state = stGround
	p.haveLastBase = false
	p.pendingWrap = false
	p.pendingScroll = false
	p.markAllDirty()
}

// Resize reshapes both screens and marks the whole visible area dirty for a
// full repaint; it does not itself push evicted rows to scrollback — that
// eviction is the cell grid's job on its own resize.
func (p *Parser) Resize(rows, cols int) {
	if rows == p.rows && cols == p.cols {
		return
	}
	p.primary.resize(rows, cols)
	p.alt.resize(rows, cols)
	p.rows, p.cols = rows, cols
	if p.scrollBottom >= rows {
		p.scrollBottom = rows - 1
	}
	if p.scrollTop >= rows {
		p.scrollTop = 0
	}
	if p.cursor.Row >= rows {
		p.cursor.Row = rows - 1
	}
	if p.cursor.Col >= cols {
		p.cursor.Col = cols - 1
	}
	p.pendingWrap = false
	p.pendingScroll = false
	p.resetDirty()
	p.markAllDirty()
	p.cb.resize(rows, cols)
}

// Write feeds raw PTY output into the parser. It always consumes the entire
// buffer.
func (p *Parser) Write(data []byte) int {
	for _, b := range data {
		p.feed(b)
	}
	return len(data)
}

func (p *Parser) feed(b byte) {
	switch p.state {
	case stGround:
		p.feedGround(b)
	case stEscape:
		p.feedEscape(b)
	case stCSI:
		p.feedCSI(b)
	case stOSC:
		p.feedOSC(b)
	case stOSCEsc:
		if b == '\\' {
			p.dispatchOSC()
		}
		p.state = stGround
	case stDCS:
		if b == esc {
			p.state = stDCSEsc
		}
	case stDCSEsc:
		p.state = stGround // DCS payloads are ignored; ST ends it either way
	}
}

const esc = 0x1b

func (p *Parser) feedGround(b byte) {
	if b == esc {
		p.flushUTF8Invalid()
		p.state = stEscape
		return
	}
	if b < 0x20 || b == 0x7f {
		p.flushUTF8Invalid()
		p.control(b)
		return
	}
	p.utf8buf = append(p.utf8buf, b)
	p.drainUTF8()
}

// drainUTF8 decodes as many complete runes as are currently buffered,
// leaving a genuinely incomplete trailing sequence in the buffer for the
// next Write call.
func (p *Parser) drainUTF8() {
	for len(p.utf8buf) > 0 {
		if !utf8.FullRune(p.utf8buf) && len(p.utf8buf) < utf8.UTFMax {
			return // wait for more bytes
		}
		r, size := utf8.DecodeRune(p.utf8buf)
		if r == utf8.RuneError && size <= 1 {
			p.emitRune(utf8.RuneError)
			p.utf8buf = p.utf8buf[1:]
			continue
		}
		p.emitRune(r)
		p.utf8buf = p.utf8buf[size:]
	}
}

// flushUTF8Invalid is called when a control character or ESC interrupts a
// partially buffered multi-byte sequence, which can only mean the sequence
// was malformed.
func (p *Parser) flushUTF8Invalid() {
	if len(p.utf8buf) == 0 {
		return
	}
	p.emitRune(utf8.RuneError)
	p.utf8buf = p.utf8buf[:0]
}

func (p *Parser) control(b byte) {
	p.haveLastBase = false
	p.pendingWrap = false
	switch b {
	case '\r':
		p.cursor.Col = 0
		p.moveCursorNotify()
	case '\n':
		p.lineFeed()
	case '\b':
		if p.cursor.Col > 0 {
			p.cursor.Col--
			p.moveCursorNotify()
		}
	case '\t':
		next := ((p.cursor.Col / 8) + 1) * 8
		if next >= p.cols {
			next = p.cols - 1
		}
		p.cursor.Col = next
		p.moveCursorNotify()
	case 0x07: // BEL
		p.cb.bell()
	}
}

func (p *Parser) feedEscape(b byte) {
	p.haveLastBase = false
	p.pendingWrap = false
	switch b {
	case '[':
		p.state = stCSI
		p.params = p.params[:0]
		p.curParam = p.curParam[:0]
		p.private = 0
	case ']':
		p.state = stOSC
		p.oscBuf = p.oscBuf[:0]
	case 'P', 'X', '^', '_':
		p.state = stDCS
	case 'O':
		// SS3: the next byte selects a single-shift function-key glyph in input
		// from a real terminal; the core never originates these on the output
		// side of Write, so treat as consumed no-op framing.
		p.state = stGround
	case 'c':
		p.Reset()
		p.state = stGround
	case 'M': // reverse index
		p.reverseIndex()
		p.state = stGround
	case '7': // DECSC
		p.savedCursor = p.cursor
		p.state = stGround
	case '8': // DECRC
		p.cursor = p.savedCursor
		p.moveCursorNotify()
		p.state = stGround
	default:
		p.state = stGround
	}
}

func (p *Parser) reverseIndex() {
	p.flushPendingScroll()
	if p.cursor.Row == p.scrollTop {
		p.scrollDown(p.scrollTop, p.scrollBottom, 1)
	} else if p.cursor.Row > 0 {
		p.cursor.Row--
		p.moveCursorNotify()
	}
}

func (p *Parser) feedCSI(b byte) {
	switch {
	case b == '?' && len(p.params) == 0 && len(p.curParam) == 0:
		p.private = '?'
	case b >= '0' && b <= '9', b == ':':
		p.curParam = append(p.curParam, b)
	case b == ';':
		p.params = append(p.params, string(p.curParam))
		p.curParam = p.curParam[:0]
	case b >= 0x40 && b <= 0x7e:
		p.params = append(p.params, string(p.curParam))
		p.curParam = p.curParam[:0]
		p.dispatchCSI(b)
		p.state = stGround
	default:
		// Ignore intermediates we don't model; stay in CSI state.
	}
}

func (p *Parser) feedOSC(b byte) {
	if b == 0x07 { // BEL terminator
		p.dispatchOSC()
		p.state = stGround
		return
	}
	if b == esc {
		p.state = stOSCEsc
		return
	}
	p.oscBuf = append(p.oscBuf, b)
}

// --- parameter helpers ---

func paramAt(params []string, i, def int) int {
	if i < 0 || i >= len(params) || params[i] == "" {
		return def
	}
	n, err := strconv.Atoi(params[i])
	if err != nil || n < 0 {
		return def
	}
	return n
}

func (p *Parser) clampRow(r int) int {
	if r < 0 {
		return 0
	}
	if r >= p.rows {
		return p.rows - 1
	}
	return r
}

func (p *Parser) clampCol(c int) int {
	if c < 0 {
		return 0
	}
	if c >= p.cols {
		return p.cols - 1
	}
	return c
}

func (p *Parser) moveCursorNotify() {
	p.cb.moveCursor(p.cursor.Row, p.cursor.Col, p.cursor.Visible)
}

func (p *Parser) dispatchCSI(final byte) {
	p.haveLastBase = false
	p.pendingWrap = false
	p.flushPendingScroll()
	n := func(i, def int) int { return paramAt(p.params, i, def) }

	switch final {
	case 'A': // CUU
		p.cursor.Row = p.clampRow(p.cursor.Row - max1(n(0, 1)))
		p.moveCursorNotify()
	case 'B': // CUD
		p.cursor.Row = p.clampRow(p.cursor.Row + max1(n(0, 1)))
		p.moveCursorNotify()
	case 'C': // CUF
		p.cursor.Col = p.clampCol(p.cursor.Col + max1(n(0, 1)))
		p.moveCursorNotify()
	case 'D': // CUB
		p.cursor.Col = p.clampCol(p.cursor.Col - max1(n(0, 1)))
		p.moveCursorNotify()
	case 'H', 'f': // CUP / HVP, 1-based in the wire format
		p.cursor.Row = p.clampRow(n(0, 1) - 1)
		p.cursor.Col = p.clampCol(n(1, 1) - 1)
		p.moveCursorNotify()
	case 'G': // CHA
		p.cursor.Col = p.clampCol(n(0, 1) - 1)
		p.moveCursorNotify()
	case 'd': // VPA
		p.cursor.Row = p.clampRow(n(0, 1) - 1)
		p.moveCursorNotify()
	case 'K': // EL
		p.eraseLine(n(0, 0))
	case 'J': // ED
		p.eraseDisplay(n(0, 0))
	case 'L': // IL
		p.scrollDown(p.cursor.Row, p.scrollBottom, max1(n(0, 1)))
	case 'M': // DL
		p.scrollUp(p.cursor.Row, p.scrollBottom, max1(n(0, 1)))
	case '@': // ICH
		p.insertChars(max1(n(0, 1)))
	case 'P': // DCH
		p.deleteChars(max1(n(0, 1)))
	case 'S': // SU
		p.scrollUp(p.scrollTop, p.scrollBottom, max1(n(0, 1)))
	case 'T': // SD
		p.scrollDown(p.scrollTop, p.scrollBottom, max1(n(0, 1)))
	case 'r': // DECSTBM
		top := n(0, 1) - 1
		bottom := n(1, p.rows) - 1
		if top < 0 {
			top = 0
		}
		if bottom >= p.rows {
			bottom = p.rows - 1
		}
		if top < bottom {
			p.scrollTop, p.scrollBottom = top, bottom
			if top > 0 || bottom < p.rows-1 {
				p.scrollRegionUsed = true
			}
		} else {
			p.scrollTop, p.scrollBottom = 0, p.rows-1
		}
		p.cursor.Row, p.cursor.Col = 0, 0
		p.moveCursorNotify()
	case 'm': // SGR
		p.applySGR(p.params)
	case 'h':
		p.setMode(true)
	case 'l':
		p.setMode(false)
	case 'n': // DSR
		switch n(0, 0) {
		case 6:
			p.cb.output([]byte("\x1b[" + strconv.Itoa(p.cursor.Row+1) + ";" + strconv.Itoa(p.cursor.Col+1) + "R"))
		case 5:
			p.cb.output([]byte("\x1b[0n"))
		}
	case 'c': // DA
		if p.private != '?' {
			p.cb.output([]byte("\x1b[?1;2c"))
		}
	case 'Z': // CBT, treat as shift-tab's screen-side equivalent: no-op text-wise
	}
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func (p *Parser) eraseLine(mode int) {
	row := p.cursor.Row
	switch mode {
	case 0:
		p.clearCells(row, p.cursor.Col, p.cols)
	case 1:
		p.clearCells(row, 0, p.cursor.Col+1)
	case 2:
		p.clearCells(row, 0, p.cols)
	}
}

func (p *Parser) eraseDisplay(mode int) {
	switch mode {
	case 0:
		p.clearCells(p.cursor.Row, p.cursor.Col, p.cols)
		for r := p.cursor.Row + 1; r < p.rows; r++ {
			p.clearCells(r, 0, p.cols)
		}
	case 1:
		for r := 0; r < p.cursor.Row; r++ {
			p.clearCells(r, 0, p.cols)
		}
		p.clearCells(p.cursor.Row, 0, p.cursor.Col+1)
	case 2, 3:
		for r := 0; r < p.rows; r++ {
			p.clearCells(r, 0, p.cols)
		}
	}
}

func (p *Parser) clearCells(row, colStart, colEnd int) {
	if row < 0 || row >= len(p.active.rows) {
		return
	}
	r := p.active.rows[row]
	for c := colStart; c < colEnd && c < len(r); c++ {
		r[c] = DefaultCell()
	}
	p.markDirty(row, colStart, colEnd)
}

func (p *Parser) insertChars(n int) {
	row := p.active.rows[p.cursor.Row]
	c := p.cursor.Col
	if c >= len(row) {
		return
	}
	end := len(row) - n
	if end < c {
		end = c
	}
	copy(row[c+n:], row[c:end])
	for i := c; i < c+n && i < len(row); i++ {
		row[i] = DefaultCell()
	}
	p.markDirty(p.cursor.Row, c, p.cols)
}

func (p *Parser) deleteChars(n int) {
	row := p.active.rows[p.cursor.Row]
	c := p.cursor.Col
	if c >= len(row) {
		return
	}
	copy(row[c:], row[min(c+n, len(row)):])
	for i := max(c, len(row)-n); i < len(row); i++ {
		row[i] = DefaultCell()
	}
	p.markDirty(p.cursor.Row, c, p.cols)
}

// scrollUp shifts rows [top,bottom] up by n, discarding from the top and
// introducing blank rows at the bottom. When top==0 and the primary screen
// is active, each discarded row is queued for scrollback; queued pushes are
// always delivered ahead of damage at the next FlushDamage.
func (p *Parser) scrollUp(top, bottom, n int) {
	if n <= 0 || top > bottom {
		return
	}
	pushEligible := top == 0 && p.active == p.primary && !p.altMode
	region := bottom - top + 1
	if n > region {
		n = region
	}
	for i := 0; i < n; i++ {
		if pushEligible {
			p.pendingPushes = append(p.pendingPushes, p.active.rows[top].Clone())
		}
		copy(p.active.rows[top:bottom], p.active.rows[top+1:bottom+1])
		p.active.rows[bottom] = newRow(p.cols)
	}
	for r := top; r <= bottom; r++ {
		p.markDirty(r, 0, p.cols)
	}
}

// scrollDown shifts rows [top,bottom] down by n, discarding from the bottom
// and introducing blank rows at the top. It never touches scrollback;
// popping history back onto the screen is a UI-driven grid operation, not a
// parser behavior.
func (p *Parser) scrollDown(top, bottom, n int) {
	if n <= 0 || top > bottom {
		return
	}
	region := bottom - top + 1
	if n > region {
		n = region
	}
	for i := 0; i < n; i++ {
		copy(p.active.rows[top+1:bottom+1], p.active.rows[top:bottom])
		p.active.rows[top] = newRow(p.cols)
	}
	for r := top; r <= bottom; r++ {
		p.markDirty(r, 0, p.cols)
	}
}

// lineFeed moves the cursor down one row. At the bottom margin the scroll
// is deferred rather than performed: the cursor stays on the margin row and
// pendingScroll is raised, so the region shifts only when something is
// actually written, another line feed arrives, or a reverse index or CSI
// sequence is processed. A line that ends with a
// trailing newline therefore stays fully visible until more output needs
// the room.
func (p *Parser) lineFeed() {
	if p.cursor.Row == p.scrollBottom {
		p.flushPendingScroll()
		p.pendingScroll = true
	} else if p.cursor.Row < p.rows-1 {
		p.cursor.Row++
	}
	p.moveCursorNotify()
}

func (p *Parser) flushPendingScroll() {
	if !p.pendingScroll {
		return
	}
	p.pendingScroll = false
	p.scrollUp(p.scrollTop, p.scrollBottom, 1)
}

// emitRune places a decoded codepoint at the cursor, deciding whether it
// combines with the previously placed base character (grapheme-cluster
// aware via uniseg) or starts a new cell, and advances the cursor using
// go-runewidth for wide/zero-width classification. Filling the last column
// raises pendingWrap instead of moving the cursor, so the wrap to the next
// row happens only once a further glyph arrives.
func (p *Parser) emitRune(r rune) {
	if p.haveLastBase && p.runeCombinesWithLastBase(r) {
		row := p.active.rows[p.lastBaseRow]
		if p.lastBaseCol < len(row) {
			cell := row[p.lastBaseCol]
			cell.AddCombining(r)
			row[p.lastBaseCol] = cell
			p.markDirty(p.lastBaseRow, p.lastBaseCol, p.lastBaseCol+1)
		}
		return
	}

	width := runewidth.RuneWidth(r)
	if width == 0 {
		width = 1 // a non-combining zero-width rune still occupies a cell
	}

	if p.pendingWrap {
		p.pendingWrap = false
		p.cursor.Col = 0
		p.lineFeed()
	}
	if p.cursor.Col+width > p.cols {
		// A wide glyph that doesn't fit in the remaining columns wraps
		// immediately; the last cell stays as-is.
		p.cursor.Col = 0
		p.lineFeed()
	}
	p.flushPendingScroll()

	row := p.active.rows[p.cursor.Row]
	cell := DefaultCell()
	cell.Rune = r
	cell.FG, cell.BG, cell.Attrs = p.curFG, p.curBG, p.curAttrs
	cell.Width = uint8(width)
	row[p.cursor.Col] = cell
	p.markDirty(p.cursor.Row, p.cursor.Col, p.cursor.Col+width)

	p.haveLastBase = true
	p.lastBaseRow, p.lastBaseCol = p.cursor.Row, p.cursor.Col
	p.lastBaseRune = r

	if width == 2 && p.cursor.Col+1 < len(row) {
		row[p.cursor.Col+1] = WidthZeroCompanion()
	}

	p.cursor.Col += width
	if p.cursor.Col >= p.cols {
		p.cursor.Col = p.cols - 1
		p.pendingWrap = true
	}
}

// runeCombinesWithLastBase reports whether r attaches to the last placed
// base rune as part of the same grapheme cluster, using uniseg's streaming
// cluster boundary detection on the two runes' encoded bytes.
func (p *Parser) runeCombinesWithLastBase(r rune) bool {
	buf := make([]byte, 0, 8)
	buf = utf8.AppendRune(buf, p.lastBaseRune)
	baseLen := len(buf)
	buf = utf8.AppendRune(buf, r)
	cluster, _, _, _ := uniseg.FirstGraphemeCluster(buf, -1)
	return len(cluster) > baseLen
}
