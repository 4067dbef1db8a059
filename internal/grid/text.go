package grid

import "strings"

// RegionText extracts UTF-8 text from row between [colStart,colEnd),
// skipping width-0 cells, appending combining characters after their base,
// and trimming trailing spaces. The column bounds are honored per row
// rather than returning the whole line.
func (g *Grid) RegionText(row, colStart, colEnd int) string {
	if row < 0 || row >= len(g.rows) {
		return ""
	}
	if colStart < 0 {
		colStart = 0
	}
	if colEnd > g.cols {
		colEnd = g.cols
	}
	var b strings.Builder
	for c := colStart; c < colEnd; c++ {
		cell := g.rows[row][c]
		if cell.Width == 0 {
			continue
		}
		b.WriteRune(cell.Rune)
		for _, comb := range cell.CombiningRunes() {
			b.WriteRune(comb)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// RowText extracts the full row's text.
func (g *Grid) RowText(row int) string {
	return g.RegionText(row, 0, g.cols)
}

// AllText extracts every visible row's text joined by newlines.
func (g *Grid) AllText() string {
	lines := make([]string, len(g.rows))
	for r := range g.rows {
		lines[r] = g.RowText(r)
	}
	return strings.Join(lines, "\n")
}
