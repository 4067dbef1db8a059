package grid

import (
	"testing"

	"console3/internal/vt"
)

func TestNewRejectsNonPositiveDimensions(t *testing.T) {
	if _, err := New(0, 10, 100); err != ErrInvalidDimensions {
		t.Fatalf("New(0,10,..) = %v, want ErrInvalidDimensions", err)
	}
	if _, err := New(10, 0, 100); err != ErrInvalidDimensions {
		t.Fatalf("New(10,0,..) = %v, want ErrInvalidDimensions", err)
	}
}

// After Resize(r, c) every row must have exactly c cells and every dirty
// bit must be set.
func TestResizeInvariant(t *testing.T) {
	g, _ := New(5, 5, 100)
	if err := g.Resize(8, 12, true); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if g.Rows() != 8 {
		t.Fatalf("Rows = %d, want 8", g.Rows())
	}
	for r := 0; r < g.Rows(); r++ {
		if len(g.RowCells(r)) != 12 {
			t.Fatalf("row %d has %d cells, want 12", r, len(g.RowCells(r)))
		}
		if !g.IsDirty(r) {
			t.Fatalf("row %d not dirty after resize", r)
		}
	}
}

func TestShrinkEvictsTopRowsToScrollback(t *testing.T) {
	g, _ := New(5, 5, 100)
	g.Set(0, 0, mkCell('A'))
	g.Set(1, 0, mkCell('B'))
	if err := g.Resize(3, 5, true); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if g.ScrollbackLen() != 2 {
		t.Fatalf("ScrollbackLen = %d, want 2", g.ScrollbackLen())
	}
	// B (originally row 1) left the screen after A (originally row 0) in the
	// equivalent sequential-shrink ordering, so it is the more recently
	// evicted line and sits at the scrollback front.
	if g.ScrollbackRow(0)[0].Rune != 'B' || g.ScrollbackRow(1)[0].Rune != 'A' {
		t.Fatalf("scrollback content wrong: %v %v", g.ScrollbackRow(0), g.ScrollbackRow(1))
	}
}

func TestShrinkWithoutEvictDiscardsRows(t *testing.T) {
	g, _ := New(5, 5, 100)
	g.Set(0, 0, mkCell('A'))
	if err := g.Resize(3, 5, false); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if g.ScrollbackLen() != 0 {
		t.Fatalf("ScrollbackLen = %d, want 0 (alt-screen resize should not populate scrollback)", g.ScrollbackLen())
	}
}

// TestWideCharCompanionInvariant checks that width-0 cells are always
// preceded by width-2 cells, even after a resize truncates a row.
func TestWideCharCompanionInvariant(t *testing.T) {
	g, _ := New(2, 4, 10)
	wide := vt.DefaultCell()
	wide.Rune = 0x3042
	wide.Width = 2
	companion := vt.DefaultCell()
	companion.Width = 0
	g.Set(0, 2, wide)
	g.Set(0, 3, companion)

	// Truncating to 3 columns splits the wide char from its companion; the
	// resize must degrade it to a default cell rather than leaving a dangling
	// width-2 cell in the last column.
	if err := g.Resize(2, 3, true); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	last := g.Get(0, 2)
	if last.Width == 2 {
		t.Fatalf("wide cell survived truncation with its companion cut off: %+v", last)
	}
}

func TestOutOfRangeAccessIsInfallible(t *testing.T) {
	g, _ := New(2, 2, 10)
	if got := g.Get(100, 100); got.Rune != ' ' {
		t.Fatalf("Get out of range = %+v, want sentinel empty cell", got)
	}
	g.Set(100, 100, mkCell('Z')) // must not panic
}

func TestScrollUpPushesAtTopZero(t *testing.T) {
	g, _ := New(3, 3, 10)
	g.Set(0, 0, mkCell('1'))
	g.Set(1, 0, mkCell('2'))
	g.Set(2, 0, mkCell('3'))
	g.Scroll(1, 0, 2)
	if g.ScrollbackLen() != 1 || g.ScrollbackRow(0)[0].Rune != '1' {
		t.Fatalf("scroll(1,0,2) should push row 0 ('1') to scrollback, got len=%d", g.ScrollbackLen())
	}
	if g.Get(0, 0).Rune != '2' {
		t.Fatalf("row 0 after scroll = %q, want '2'", g.Get(0, 0).Rune)
	}
}

func TestPopScrollbackSwapsWithBottomRow(t *testing.T) {
	g, _ := New(2, 2, 10)
	g.Set(0, 0, mkCell('T')) // top row, will scroll out
	g.Set(1, 0, mkCell('B')) // bottom row
	g.Scroll(1, 0, 1)        // pushes 'T' to scrollback, row0 becomes old row1 ('B')

	popped, ok := g.PopScrollback()
	if !ok || popped[0].Rune != 'T' {
		t.Fatalf("PopScrollback = %v, %v, want 'T' row, true", popped, ok)
	}
	if g.Get(0, 0).Rune != 'T' {
		t.Fatalf("row 0 after pop = %q, want 'T'", g.Get(0, 0).Rune)
	}
	if g.ScrollbackLen() != 1 {
		t.Fatalf("ScrollbackLen after pop = %d, want 1 (displaced bottom row re-pushed)", g.ScrollbackLen())
	}
}

func TestRegionTextHonorsColumnBounds(t *testing.T) {
	g, _ := New(1, 10, 10)
	for i, r := range "hello world" {
		if i >= 10 {
			break
		}
		g.Set(0, i, mkCell(r))
	}
	if got := g.RegionText(0, 0, 5); got != "hello" {
		t.Fatalf("RegionText(0,5) = %q, want \"hello\"", got)
	}
}

func TestRowTextSkipsWidthZeroAndTrimsTrailingSpace(t *testing.T) {
	g, _ := New(1, 5, 10)
	wide := vt.DefaultCell()
	wide.Rune = 0x3042
	wide.Width = 2
	companion := vt.DefaultCell()
	companion.Width = 0
	g.Set(0, 0, wide)
	g.Set(0, 1, companion)
	g.Set(0, 2, mkCell('!'))
	if got := g.RowText(0); got != "あ!" {
		t.Fatalf("RowText = %q, want %q", got, "あ!")
	}
}

func mkCell(r rune) vt.Cell {
	c := vt.DefaultCell()
	c.Rune = r
	return c
}
