package ptysession

import (
	"github.com/vito/midterm"
)

// Emulator wraps a midterm.Terminal, the VT emulator §4.4 requires. It reads
// DECTCEM cursor visibility directly off midterm's own Screen fields rather
// than re-deriving it, so it can never diverge from the child's actual view.
// Scroll regions are handled inside midterm; the wrapper does not read them.
type Emulator struct {
	term *midterm.Terminal
	size GridSize

	scrollback []string
}

// NewEmulator creates an emulator sized rows×cols with the cursor initially
// visible, per terminal convention.
func NewEmulator(size GridSize) *Emulator {
	t := midterm.NewTerminal(int(size.Rows), int(size.Cols))
	e := &Emulator{term: t, size: size}
	t.OnScrollback(func(l midterm.Line) {
		e.scrollback = append(e.scrollback, l.Display())
	})
	return e
}

// Write applies bytes to the emulator in arrival order, per §4.4's contract.
// It never returns an error: malformed sequences are tolerated as no-ops by
// midterm.
func (e *Emulator) Write(p []byte) {
	_, _ = e.term.Write(p)
}

// Resize changes the authoritative size and reflows the underlying
// terminal. Must be called before the next batch is processed, per §4.8.
func (e *Emulator) Resize(size GridSize) {
	e.size = size
	e.term.Resize(int(size.Rows), int(size.Cols))
}

// Size returns the current authoritative grid size.
func (e *Emulator) Size() GridSize { return e.size }

// CursorVisible reports whether DECTCEM is currently showing the cursor,
// read straight off midterm's own Screen state.
func (e *Emulator) CursorVisible() bool { return e.term.CursorVisible }

// CursorPos returns the current cursor position, clamped to the grid.
func (e *Emulator) CursorPos() Pos {
	x, y := e.term.Cursor.X, e.term.Cursor.Y
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x >= int(e.size.Cols) {
		x = int(e.size.Cols) - 1
	}
	if y >= int(e.size.Rows) {
		y = int(e.size.Rows) - 1
	}
	return Pos{Row: uint16(y), Col: uint16(x)}
}

// Cell returns the current Cell at (row,col), or EmptyCell if out of range
// or blank.
func (e *Emulator) Cell(row, col uint16) Cell {
	if int(row) >= len(e.term.Content) {
		return EmptyCell
	}
	line := e.term.Content[row]
	if int(col) >= len(line) {
		return EmptyCell
	}
	ch := line[col]
	if ch == 0 {
		ch = ' '
	}

	cell := Cell{Ch: string(ch)}
	for region := range e.term.Format.Regions(int(row)) {
		// Regions iterate left to right; find the one covering col.
		if int(col) < region.Size {
			applySGR(&cell, region.F.Render())
			break
		}
		col -= uint16(region.Size)
	}
	if cell.Ch == "" {
		cell.Ch = " "
	}
	return cell
}

// NonEmptyPositions returns every position currently holding a non-empty
// cell, scanning the full grid. Used by the Grid Differ's candidate-set
// computation and by on-demand keyframe synthesis.
func (e *Emulator) NonEmptyPositions() map[Pos]Cell {
	out := make(map[Pos]Cell)
	for r := uint16(0); r < e.size.Rows; r++ {
		for c := uint16(0); c < e.size.Cols; c++ {
			cell := e.Cell(r, c)
			if !cell.IsEmpty() {
				out[Pos{Row: r, Col: c}] = cell
			}
		}
	}
	return out
}
