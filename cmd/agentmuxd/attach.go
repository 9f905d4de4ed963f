package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"agentmux/internal/config"
	"agentmux/internal/gateway"
	"agentmux/internal/ptysession"
	"agentmux/internal/tui"
)

// newAttachCmd dials a running daemon's gateway as a WebSocket client and
// drives the same local-render loop tui.Grid uses for in-process sessions,
// since an already-running daemon's Session lives in a different process
// and can only be reached over the wire protocol.
func newAttachCmd(cfg **config.Config) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "attach <session-id>",
		Short: "Attach the local TUI to a session served by a running daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := addr
			if a == "" {
				a = (*cfg).Gateway.Addr
			}
			return attachSession(a, args[0])
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "gateway address to dial (defaults to config)")
	return cmd
}

func attachSession(addr, sessionID string) error {
	u := url.URL{Scheme: "ws", Host: hostPart(addr), Path: "/ws", RawQuery: "session=" + sessionID}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("agentmuxd attach: dial %s: %w", u.String(), err)
	}
	defer conn.Close()

	var restore func()
	if term.IsTerminal(int(os.Stdin.Fd())) {
		prev, err := term.MakeRaw(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("agentmuxd attach: enter raw mode: %w", err)
		}
		restore = func() { term.Restore(int(os.Stdin.Fd()), prev) }
		defer restore()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	profile := termenv.NewOutput(os.Stdout).ColorProfile()
	grid := tui.NewGrid()

	stdin := make(chan []byte, 64)
	go readStdinLoop(stdin)

	incoming := make(chan gateway.ServerMessage, 64)
	go readServerLoop(conn, incoming)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-incoming:
			if !ok {
				return nil
			}
			applyServerMessage(grid, msg)
			fmt.Fprint(os.Stdout, grid.Render(profile))
		case data, ok := <-stdin:
			if !ok {
				return nil
			}
			for _, b := range data {
				if err := conn.WriteJSON(keyClientMessage(decodeRawByte(b))); err != nil {
					return nil
				}
			}
		}
	}
}

func hostPart(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "127.0.0.1" + addr
	}
	return addr
}

func readStdinLoop(out chan<- []byte) {
	defer close(out)
	buf := make([]byte, 1024)
	for {
		n, err := os.Stdin.Read(buf)
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

func readServerLoop(conn *websocket.Conn, out chan<- gateway.ServerMessage) {
	defer close(out)
	for {
		var msg gateway.ServerMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		out <- msg
	}
}

// applyServerMessage folds a GridUpdate frame into the local grid. Output
// and PtySize frames are cosmetic/debug-only for this client and ignored.
func applyServerMessage(grid *tui.Grid, msg gateway.ServerMessage) {
	if msg.Type != gateway.TypeGridUpdate {
		return
	}
	raw, err := json.Marshal(msg.Data)
	if err != nil {
		return
	}
	var kf ptysession.Keyframe
	if err := json.Unmarshal(raw, &kf); err == nil && kf.Size.Rows > 0 {
		grid.Apply(ptysession.Update{Keyframe: &kf})
		return
	}
	var diff ptysession.Diff
	if err := json.Unmarshal(raw, &diff); err == nil {
		grid.Apply(ptysession.Update{Diff: &diff})
	}
}

func keyClientMessage(ev ptysession.KeyEvent) gateway.ClientMessage {
	data, _ := json.Marshal(gateway.KeyData{Code: ev.Code, Modifiers: ev.Modifiers})
	return gateway.ClientMessage{Type: gateway.TypeKey, Data: data}
}

// decodeRawByte approximates a raw terminal byte back into the structured
// KeyEvent the gateway wire protocol carries, the inverse of the common
// cases of ptysession.EncodeKey.
func decodeRawByte(b byte) ptysession.KeyEvent {
	switch b {
	case '\r', '\n':
		return ptysession.KeyEvent{Code: ptysession.NamedKey(ptysession.KeyEnter)}
	case '\t':
		return ptysession.KeyEvent{Code: ptysession.NamedKey(ptysession.KeyTab)}
	case 0x7F:
		return ptysession.KeyEvent{Code: ptysession.NamedKey(ptysession.KeyBackspace)}
	case 0x1B:
		return ptysession.KeyEvent{Code: ptysession.NamedKey(ptysession.KeyEsc)}
	}
	if b < 0x20 {
		c := b | 0x40
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		return ptysession.KeyEvent{Code: ptysession.CharKey(c), Modifiers: ptysession.Modifiers{Ctrl: true}}
	}
	return ptysession.KeyEvent{Code: ptysession.CharKey(b)}
}
