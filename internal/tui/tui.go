// Package tui renders a ptysession.Session's keyframe/diff stream onto the
// operator's local terminal in raw mode, and forwards keystrokes back into
// the session. Grounded on the teacher's internal/session/client
// (render.go's RenderLineFrom/RenderStatusBar, overlay.go's Run/WatchResize).
package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"agentmux/internal/ptysession"
)

// Grid is a local mirror of the session's authoritative screen, rebuilt
// from keyframes and kept current by diffs, entirely client-side — it
// never feeds back into the core.
type Grid struct {
	mu            sync.Mutex
	size          ptysession.GridSize
	cells         map[ptysession.Pos]ptysession.Cell
	cursor        ptysession.Pos
	cursorVisible bool
}

// NewGrid returns an empty local grid mirror.
func NewGrid() *Grid {
	return &Grid{cells: map[ptysession.Pos]ptysession.Cell{}}
}

// Apply folds a keyframe or diff into the mirror.
func (g *Grid) Apply(u ptysession.Update) {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch {
	case u.Keyframe != nil:
		g.size = u.Keyframe.Size
		g.cells = make(map[ptysession.Pos]ptysession.Cell, len(u.Keyframe.Cells))
		for _, ce := range u.Keyframe.Cells {
			g.cells[ce.Pos] = ce.Cell
		}
		g.cursor = u.Keyframe.Cursor
		g.cursorVisible = u.Keyframe.CursorVisible
	case u.Diff != nil:
		for _, ce := range u.Diff.Changes {
			if ce.Cell.IsEmpty() {
				delete(g.cells, ce.Pos)
			} else {
				g.cells[ce.Pos] = ce.Cell
			}
		}
		if u.Diff.Cursor != nil {
			g.cursor = *u.Diff.Cursor
		}
		if u.Diff.CursorVisible != nil {
			g.cursorVisible = *u.Diff.CursorVisible
		}
	}
}

// Render produces a full-screen ANSI redraw of the current mirror state.
func (g *Grid) Render(p termenv.Profile) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var b strings.Builder
	b.WriteString("\x1b[2J\x1b[H")
	for r := uint16(0); r < g.size.Rows; r++ {
		if r > 0 {
			b.WriteString("\r\n")
		}
		var lastStyle *ptysession.Cell
		for c := uint16(0); c < g.size.Cols; c++ {
			cell, ok := g.cells[ptysession.Pos{Row: r, Col: c}]
			if !ok {
				cell = ptysession.EmptyCell
			}
			if lastStyle == nil || !stylesEqual(*lastStyle, cell) {
				b.WriteString(renderStyle(p, cell))
			}
			if cell.Ch == "" {
				b.WriteString(" ")
			} else {
				b.WriteString(cell.Ch)
			}
			s := cell
			lastStyle = &s
		}
		b.WriteString("\x1b[0m")
	}
	b.WriteString(fmt.Sprintf("\x1b[%d;%dH", g.cursor.Row+1, g.cursor.Col+1))
	if g.cursorVisible {
		b.WriteString("\x1b[?25h")
	} else {
		b.WriteString("\x1b[?25l")
	}
	return b.String()
}

func stylesEqual(a, b ptysession.Cell) bool {
	return a.Bold == b.Bold && a.Italic == b.Italic && a.Underline == b.Underline &&
		a.Reverse == b.Reverse && colorPtrEqual(a.Fg, b.Fg) && colorPtrEqual(a.Bg, b.Bg)
}

func colorPtrEqual(a, b *ptysession.Color) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func renderStyle(p termenv.Profile, cell ptysession.Cell) string {
	var sb strings.Builder
	sb.WriteString("\x1b[0m")
	if cell.Bold {
		sb.WriteString("\x1b[1m")
	}
	if cell.Italic {
		sb.WriteString("\x1b[3m")
	}
	if cell.Underline {
		sb.WriteString("\x1b[4m")
	}
	if cell.Reverse {
		sb.WriteString("\x1b[7m")
	}
	if cell.Fg != nil {
		sb.WriteString(termenv.String().Foreground(colorToTermenv(p, *cell.Fg)).String())
	}
	if cell.Bg != nil {
		sb.WriteString(termenv.String().Background(colorToTermenv(p, *cell.Bg)).String())
	}
	return sb.String()
}

func colorToTermenv(p termenv.Profile, c ptysession.Color) termenv.Color {
	switch c.Kind {
	case ptysession.ColorIndexed:
		return p.Color(fmt.Sprintf("%d", c.Index))
	case ptysession.ColorPalette:
		return p.Color(fmt.Sprintf("%d", c.Index))
	case ptysession.ColorRGB:
		return p.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
	default:
		return p.Color("")
	}
}

// Attach runs the local TUI against a session until ctx is canceled or the
// session terminates: it puts the controlling terminal into raw mode,
// forwards stdin bytes as raw input, watches SIGWINCH for resizes, and
// redraws on every keyframe/diff.
func Attach(ctx context.Context, sess *ptysession.Session, in *os.File, out io.Writer) error {
	if term.IsTerminal(int(in.Fd())) {
		restore, err := term.MakeRaw(int(in.Fd()))
		if err != nil {
			return fmt.Errorf("tui: enter raw mode: %w", err)
		}
		defer term.Restore(int(in.Fd()), restore)
	}

	profile := termenv.NewOutput(out).ColorProfile()
	grid := NewGrid()

	sub := sess.Subscribe()
	defer sess.Unsubscribe(sub)

	resize := make(chan os.Signal, 1)
	signal.Notify(resize, syscall.SIGWINCH)
	defer signal.Stop(resize)

	stdin := make(chan []byte, 64)
	go readStdin(in, stdin)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sess.Done():
			return nil
		case u, ok := <-sub.Updates:
			if !ok {
				return nil
			}
			grid.Apply(u)
			fmt.Fprint(out, grid.Render(profile))
		case <-resize:
			if cols, rows, err := term.GetSize(int(in.Fd())); err == nil {
				size := ptysession.GridSize{Rows: uint16(rows), Cols: uint16(cols)}
				go func() {
					if err := sess.Resize(size); err != nil {
						fmt.Fprintf(os.Stderr, "tui: resize to %dx%d: %v\n", rows, cols, err)
					}
				}()
			}
		case data, ok := <-stdin:
			if !ok {
				return nil
			}
			sess.InputTx <- ptysession.InputMessage{ClientID: "tui", Raw: data}
		}
	}
}

func readStdin(in *os.File, out chan<- []byte) {
	defer close(out)
	buf := make([]byte, 1024)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			cp := make([]byte, n)
			copy(cp, buf[:n])
			out <- cp
		}
		if err != nil {
			return
		}
	}
}
