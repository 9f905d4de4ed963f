// Package ptysession owns a single agent's PTY: spawning the child, parsing
// its output through a VT emulator, and fanning out keyframes and diffs to
// any number of subscribers while serializing input back into the child.
package ptysession

import "time"

// ColorKind discriminates the variants of Color.
type ColorKind uint8

const (
	ColorDefault ColorKind = iota
	ColorIndexed
	ColorPalette
	ColorRGB
)

// Color is a tagged union over the terminal color space: the default pen
// color, a 0-15 ANSI index, a 0-255 palette index, or a truecolor RGB triple.
type Color struct {
	Kind    ColorKind `json:"kind"`
	Index   uint8     `json:"index,omitempty"` // valid for ColorIndexed, ColorPalette
	R       uint8     `json:"r,omitempty"`      // valid for ColorRGB
	G       uint8     `json:"g,omitempty"`
	B       uint8     `json:"b,omitempty"`
}

// DefaultColor is the zero value: the terminal's default foreground/background.
var DefaultColor = Color{Kind: ColorDefault}

// Indexed returns an ANSI 0-15 color.
func Indexed(i uint8) Color { return Color{Kind: ColorIndexed, Index: i} }

// Palette returns a 256-color palette entry.
func Palette(i uint8) Color { return Color{Kind: ColorPalette, Index: i} }

// RGB returns a truecolor value.
func RGB(r, g, b uint8) Color { return Color{Kind: ColorRGB, R: r, G: g, B: b} }

// Cell is one screen position's text and visual attributes. The empty cell
// is EmptyCell: a single space with no color or attribute set. The zero
// value has Ch == "" and is not empty by IsEmpty.
type Cell struct {
	Ch        string `json:"ch"`
	Fg        *Color `json:"fg,omitempty"`
	Bg        *Color `json:"bg,omitempty"`
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty"`
	Reverse   bool   `json:"reverse,omitempty"`
}

// EmptyCell is the canonical empty cell value.
var EmptyCell = Cell{Ch: " "}

// IsEmpty reports whether c has no visible content: a single space, no
// color, no attribute flags. Absent map entries are implicitly empty cells
// per spec — this is the predicate that decides what gets stored/published.
func (c Cell) IsEmpty() bool {
	return c.Ch == " " && c.Fg == nil && c.Bg == nil &&
		!c.Bold && !c.Italic && !c.Underline && !c.Reverse
}

// Equal compares two cells field-by-field, including pointer-dereferenced
// color equality (nil Fg/Bg on both sides counts as equal).
func (c Cell) Equal(o Cell) bool {
	if c.Ch != o.Ch || c.Bold != o.Bold || c.Italic != o.Italic ||
		c.Underline != o.Underline || c.Reverse != o.Reverse {
		return false
	}
	return colorEqual(c.Fg, o.Fg) && colorEqual(c.Bg, o.Bg)
}

func colorEqual(a, b *Color) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// GridSize is a terminal's row/column extent.
type GridSize struct {
	Rows uint16 `json:"rows"`
	Cols uint16 `json:"cols"`
}

// Pos identifies a cell by zero-based row and column.
type Pos struct {
	Row uint16 `json:"row"`
	Col uint16 `json:"col"`
}

// Cursor is the emulator's cursor position and visibility.
type Cursor struct {
	Row     uint16 `json:"row"`
	Col     uint16 `json:"col"`
	Visible bool   `json:"visible"`
}

// CellEntry pairs a position with the Cell at it, used by both Keyframe and
// Diff wire representations.
type CellEntry struct {
	Pos  Pos  `json:"pos"`
	Cell Cell `json:"cell"`
}

// Keyframe is a complete grid snapshot: every non-empty cell, sufficient to
// initialize a new subscriber from scratch. No entry in Cells is ever empty.
type Keyframe struct {
	Size          GridSize    `json:"size"`
	Cells         []CellEntry `json:"cells"`
	Cursor        Pos         `json:"cursor"`
	CursorVisible bool        `json:"cursor_visible"`
	Timestamp     time.Time   `json:"timestamp"`
}

// Diff is an incremental change set: an ordered list of cell overwrites
// (a cell reverting to empty is represented explicitly, as EmptyCell, not
// omitted) plus optional cursor position/visibility changes.
type Diff struct {
	Changes       []CellEntry `json:"changes"`
	Cursor        *Pos        `json:"cursor,omitempty"`
	CursorVisible *bool       `json:"cursor_visible,omitempty"`
	Timestamp     time.Time   `json:"timestamp"`
}

// IsEmpty reports whether the diff carries no changes at all, i.e. nothing
// worth publishing.
func (d Diff) IsEmpty() bool {
	return len(d.Changes) == 0 && d.Cursor == nil && d.CursorVisible == nil
}

// Update is the sum type published by the Grid Differ to the Fan-out Hub:
// exactly one of Keyframe or Diff is set.
type Update struct {
	Keyframe *Keyframe
	Diff     *Diff
}
