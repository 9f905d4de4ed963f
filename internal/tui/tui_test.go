package tui

import (
	"strings"
	"testing"

	"github.com/muesli/termenv"

	"agentmux/internal/ptysession"
)

func TestGridApplyKeyframeThenDiff(t *testing.T) {
	g := NewGrid()
	g.Apply(ptysession.Update{Keyframe: &ptysession.Keyframe{
		Size: ptysession.GridSize{Rows: 1, Cols: 5},
		Cells: []ptysession.CellEntry{
			{Pos: ptysession.Pos{Row: 0, Col: 0}, Cell: ptysession.Cell{Ch: "H"}},
		},
		Cursor:        ptysession.Pos{Row: 0, Col: 1},
		CursorVisible: true,
	}})

	out := g.Render(termenv.Ascii)
	// Render also emits "\x1b[H" and a cursor move ending in 'H', so look for
	// the cell text right after the style reset that precedes it.
	if !strings.Contains(out, "\x1b[0mH") {
		t.Fatalf("expected rendered output to contain H, got %q", out)
	}

	cursor := ptysession.Pos{Row: 0, Col: 2}
	visible := false
	g.Apply(ptysession.Update{Diff: &ptysession.Diff{
		Changes: []ptysession.CellEntry{
			{Pos: ptysession.Pos{Row: 0, Col: 0}, Cell: ptysession.EmptyCell},
		},
		Cursor:        &cursor,
		CursorVisible: &visible,
	}})

	out2 := g.Render(termenv.Ascii)
	if strings.Contains(out2, "\x1b[0mH") {
		t.Fatalf("expected H to be cleared after diff, got %q", out2)
	}
	if !strings.Contains(out2, "?25l") {
		t.Fatalf("expected cursor-hide sequence, got %q", out2)
	}
}
