package ptysession

import "testing"

func TestCellIsEmpty(t *testing.T) {
	if !EmptyCell.IsEmpty() {
		t.Fatal("EmptyCell should be empty")
	}
	red := Indexed(1)
	cell := Cell{Ch: " ", Fg: &red}
	if cell.IsEmpty() {
		t.Fatal("cell with a foreground color should not be empty")
	}
}

func TestCellEqual(t *testing.T) {
	red := Indexed(1)
	red2 := Indexed(1)
	a := Cell{Ch: "X", Fg: &red, Bold: true}
	b := Cell{Ch: "X", Fg: &red2, Bold: true}
	if !a.Equal(b) {
		t.Fatal("cells with equal dereferenced colors should be equal")
	}
	blue := Indexed(4)
	c := Cell{Ch: "X", Fg: &blue, Bold: true}
	if a.Equal(c) {
		t.Fatal("cells with different colors should not be equal")
	}
	if a.Equal(Cell{Ch: "X", Bold: true}) {
		t.Fatal("nil fg should not equal non-nil fg")
	}
}

func TestDiffIsEmpty(t *testing.T) {
	d := Diff{}
	if !d.IsEmpty() {
		t.Fatal("zero-value diff should be empty")
	}
	pos := Pos{Row: 0, Col: 0}
	d2 := Diff{Changes: []CellEntry{{Pos: pos, Cell: EmptyCell}}}
	if d2.IsEmpty() {
		t.Fatal("diff with a change should not be empty")
	}
}
