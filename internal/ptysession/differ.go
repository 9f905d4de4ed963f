package ptysession

import "time"

// Differ holds the previous snapshot and cursor state used to compute
// incremental updates per §4.5. It is owned exclusively by the processor
// goroutine. The on-demand keyframe path in control.go calls Keyframe, which
// reads the emulator directly and neither reads nor changes the stored
// snapshot.
type Differ struct {
	started bool
	prev    map[Pos]Cell
	cursor  Pos
	visible bool
}

// NewDiffer returns a Differ with no prior snapshot; the next call to Diff
// always yields a Keyframe, per §4.5's "P was empty" first-emission rule.
func NewDiffer() *Differ {
	return &Differ{prev: map[Pos]Cell{}}
}

// Diff compares the emulator's current state to the stored snapshot and
// returns the update to publish, if any, per §4.5's emit policy.
func (d *Differ) Diff(emu *Emulator) (Update, bool) {
	now := time.Now()
	current := emu.NonEmptyPositions()
	cursor := emu.CursorPos()
	visible := emu.CursorVisible()

	if !d.started {
		d.started = true
		d.prev = current
		d.cursor = cursor
		d.visible = visible
		return Update{Keyframe: &Keyframe{
			Size:          emu.Size(),
			Cells:         entriesOf(current),
			Cursor:        cursor,
			CursorVisible: visible,
			Timestamp:     now,
		}}, true
	}

	changes := computeChanges(d.prev, current)
	cursorChanged := cursor != d.cursor
	visibleChanged := visible != d.visible

	d.prev = current
	d.cursor = cursor
	d.visible = visible

	if len(changes) == 0 && !cursorChanged && !visibleChanged {
		return Update{}, false
	}

	diff := &Diff{Changes: changes, Timestamp: now}
	if cursorChanged {
		c := cursor
		diff.Cursor = &c
	}
	if visibleChanged {
		v := visible
		diff.CursorVisible = &v
	}
	return Update{Diff: diff}, true
}

// Keyframe synthesizes a full snapshot from the emulator's current state
// independently of the stored P, per §4.6's on-demand request path. It does
// not mutate the differ's tracked state.
func (d *Differ) Keyframe(emu *Emulator) Keyframe {
	current := emu.NonEmptyPositions()
	return Keyframe{
		Size:          emu.Size(),
		Cells:         entriesOf(current),
		Cursor:        emu.CursorPos(),
		CursorVisible: emu.CursorVisible(),
		Timestamp:     time.Now(),
	}
}

func computeChanges(prev, current map[Pos]Cell) []CellEntry {
	var changes []CellEntry
	for pos, cell := range current {
		if p, ok := prev[pos]; !ok || !p.Equal(cell) {
			changes = append(changes, CellEntry{Pos: pos, Cell: cell})
		}
	}
	for pos := range prev {
		if _, ok := current[pos]; !ok {
			changes = append(changes, CellEntry{Pos: pos, Cell: EmptyCell})
		}
	}
	return changes
}

func entriesOf(m map[Pos]Cell) []CellEntry {
	out := make([]CellEntry, 0, len(m))
	for pos, cell := range m {
		out = append(out, CellEntry{Pos: pos, Cell: cell})
	}
	return out
}
