package vt

// UnderlineStyle enumerates SGR 4 / 4:n underline variants.
type UnderlineStyle uint8

const (
	UnderlineNone UnderlineStyle = iota
	UnderlineSingle
	UnderlineDouble
	UnderlineCurly
)

// Attrs is the cell attribute set.
type Attrs struct {
	Bold          bool
	Italic        bool
	Underline     UnderlineStyle
	Blink         bool
	Reverse       bool
	Strikethrough bool
	Conceal       bool
}

// maxCombining is the number of combining codepoints a cell retains beyond
// its base rune; further combiners are dropped.
const maxCombining = 3

// Cell is one logical screen position. The zero value is not a default
// cell (its rune is 0 and its width 0); DefaultCell builds the blank one:
// space, default colors, no attributes, width 1.
type Cell struct {
	Rune       rune
	Combining  [maxCombining]rune
	numCombine uint8
	FG         Color
	BG         Color
	Attrs      Attrs
	Width      uint8 // 0, 1, or 2
}

// DefaultCell is what clear/new rows fill with.
func DefaultCell() Cell {
	return Cell{Rune: ' ', FG: DefaultColor, BG: DefaultColor, Width: 1}
}

// AddCombining appends a combining codepoint, dropping it silently once
// maxCombining has been reached.
func (c *Cell) AddCombining(r rune) {
	if int(c.numCombine) >= maxCombining {
		return
	}
	c.Combining[c.numCombine] = r
	c.numCombine++
}

// CombiningRunes returns the combining codepoints attached to this cell, in
// append order.
func (c Cell) CombiningRunes() []rune {
	return c.Combining[:c.numCombine]
}

// WidthZeroCompanion builds the paired width-0 cell that follows a width-2
// cell.
func WidthZeroCompanion() Cell {
	c := DefaultCell()
	c.Width = 0
	return c
}
