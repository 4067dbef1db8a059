package vt

// Cursor returns the parser's current cursor state.
func (p *Parser) Cursor() Cursor {
	return p.cursor
}

// Rows and Cols report the current screen shape.
func (p *Parser) Rows() int { return p.rows }
func (p *Parser) Cols() int { return p.cols }

// AltScreenActive reports whether the alternate screen is current.
func (p *Parser) AltScreenActive() bool { return p.altMode }

// RowCells returns the live cell slice for the given row of the active
// screen. The session uses this in its OnDamage handler to copy cells into
// the grid; callers must treat the slice as read-only and copy out of it
// rather than retaining it, since the parser mutates rows in place.
func (p *Parser) RowCells(row int) []Cell {
	if row < 0 || row >= len(p.active.rows) {
		return nil
	}
	return p.active.rows[row]
}

// CellAt returns a single cell of the active screen, or a default cell if
// out of range.
func (p *Parser) CellAt(row, col int) Cell {
	cells := p.RowCells(row)
	if col < 0 || col >= len(cells) {
		return DefaultCell()
	}
	return cells[col]
}

// ScrollRegionUsed reports whether any DECSTBM sequence has established a
// sub-region of the screen since construction or the last Reset. Full-screen
// scrollback capture is unreliable for applications that scroll inside a
// region, so a renderer can consult this before trusting history.
func (p *Parser) ScrollRegionUsed() bool { return p.scrollRegionUsed }

// Title and IconName report the last values set via OSC 0/1/2.
func (p *Parser) Title() string    { return p.title }
func (p *Parser) IconName() string { return p.iconName }
