package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"console3/internal/grid"
	"console3/internal/vt"
)

// terminalRenderer draws a session's dirty rows to a real terminal using
// plain ANSI/SGR sequences. It exists only in the demo CLI host: the core
// itself never renders glyphs and makes no rendering decisions for
// "default" colors; resolving those is the renderer's call, and this is
// exactly the kind of external collaborator the core is built to feed.
type terminalRenderer struct {
	out            *strings.Builder
	lastAttrs      vt.Attrs
	lastFG, lastBG vt.Color
	haveAttrs      bool
}

func newTerminalRenderer() *terminalRenderer {
	return &terminalRenderer{out: &strings.Builder{}}
}

// DrawRect renders one damage rectangle: move to its first cell, then emit
// each cell's text with SGR changes only where the attribute/color state
// actually changes. Width-0 companion cells are never independently
// rendered and are skipped.
func (r *terminalRenderer) DrawRect(g *grid.Grid, rect vt.Rect) {
	for row := rect.RowStart; row < rect.RowEnd; row++ {
		r.moveTo(row, rect.ColStart)
		for col := rect.ColStart; col < rect.ColEnd; col++ {
			cell := g.Get(row, col)
			if cell.Width == 0 {
				continue
			}
			r.applySGR(cell)
			r.out.WriteRune(cell.Rune)
			for _, comb := range cell.CombiningRunes() {
				r.out.WriteRune(comb)
			}
		}
	}
}

func (r *terminalRenderer) moveTo(row, col int) {
	fmt.Fprintf(r.out, "\x1b[%d;%dH", row+1, col+1)
}

// applySGR emits only the escape sequence for attributes/colors that differ
// from the last cell drawn, rather than a full reset-then-set on every
// cell.
func (r *terminalRenderer) applySGR(cell vt.Cell) {
	if r.haveAttrs && cell.Attrs == r.lastAttrs && cell.FG == r.lastFG && cell.BG == r.lastBG {
		return
	}
	codes := []string{"0"}
	if cell.Attrs.Bold {
		codes = append(codes, "1")
	}
	if cell.Attrs.Italic {
		codes = append(codes, "3")
	}
	switch cell.Attrs.Underline {
	case vt.UnderlineSingle:
		codes = append(codes, "4")
	case vt.UnderlineDouble:
		codes = append(codes, "4:2")
	case vt.UnderlineCurly:
		codes = append(codes, "4:3")
	}
	if cell.Attrs.Blink {
		codes = append(codes, "5")
	}
	if cell.Attrs.Reverse {
		codes = append(codes, "7")
	}
	if cell.Attrs.Conceal {
		codes = append(codes, "8")
	}
	if cell.Attrs.Strikethrough {
		codes = append(codes, "9")
	}
	codes = append(codes, colorSGR(cell.FG, true)...)
	codes = append(codes, colorSGR(cell.BG, false)...)
	fmt.Fprintf(r.out, "\x1b[%sm", strings.Join(codes, ";"))
	r.lastAttrs, r.lastFG, r.lastBG, r.haveAttrs = cell.Attrs, cell.FG, cell.BG, true
}

// colorSGR returns the SGR parameter tokens for a foreground (fg=true) or
// background color, empty for ColorDefault (the terminal's own default
// stands in, matching the core's refusal to resolve "default" itself).
func colorSGR(c vt.Color, fg bool) []string {
	base := 30
	if !fg {
		base = 40
	}
	switch c.Kind {
	case vt.ColorIndexed:
		if c.Index < 8 {
			return []string{strconv.Itoa(base + int(c.Index))}
		}
		if c.Index < 16 {
			return []string{strconv.Itoa(base + 60 + int(c.Index) - 8)}
		}
		return []string{strconv.Itoa(base + 8), "5", strconv.Itoa(int(c.Index))}
	case vt.ColorRGB:
		return []string{strconv.Itoa(base + 8), "2", strconv.Itoa(int(c.R)), strconv.Itoa(int(c.G)), strconv.Itoa(int(c.B))}
	default:
		return nil
	}
}

// Flush returns the accumulated escape/text output and resets the buffer.
func (r *terminalRenderer) Flush() string {
	s := r.out.String()
	r.out.Reset()
	return s
}
