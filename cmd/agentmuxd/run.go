package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"agentmux/internal/config"
	"agentmux/internal/ptysession"
	"agentmux/internal/registry"
	"agentmux/internal/replay"
	"agentmux/internal/tui"
)

// newRunCmd constructs a session and attaches the local TUI to it,
// grounded on the teacher's internal/cmd/run.go flag/RunE style.
func newRunCmd(cfg **config.Config) *cobra.Command {
	var name string
	var agent string
	var extraArgs string

	cmd := &cobra.Command{
		Use:   "run --agent=<agent> [-- args...]",
		Short: "Start an agent under a new PTY session and attach the local TUI",
		Args:  cobra.MinimumNArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			rest := cmd.Flags().Args()
			a := agent
			if a == "" && len(rest) > 0 {
				a, rest = rest[0], rest[1:]
			}
			return runAgent(*cfg, name, a, rest, extraArgs)
		},
	}
	cmd.Flags().StringVar(&agent, "agent", "", "agent binary to spawn (defaults to the first positional argument)")
	cmd.Flags().StringVar(&name, "name", "", "human-readable session name (defaults to a generated ID)")
	cmd.Flags().StringVar(&extraArgs, "extra-args", "", "additional shell-tokenized arguments appended to the agent command")
	return cmd
}

func runAgent(cfg *config.Config, name, agent string, args []string, extraArgs string) error {
	if agent == "" {
		return fmt.Errorf("agentmuxd run: no agent command given")
	}
	if !cfg.AgentAllowed(agent) {
		return fmt.Errorf("agentmuxd run: agent %q is not in the configured allow-list", agent)
	}

	// The controlling terminal's ioctl size is only a fallback hint here:
	// ptysession.Construct gives the COLUMNS/LINES environment variables
	// precedence over it, per §4.1/§6.
	size := ptysession.GridSize{}
	if isatty.IsTerminal(os.Stdin.Fd()) {
		if cols, rows, err := term.GetSize(int(os.Stdin.Fd())); err == nil {
			size = ptysession.GridSize{Rows: uint16(rows), Cols: uint16(cols)}
		}
	}

	reg, err := registry.New(cfg.Session.RootDir)
	if err != nil {
		return err
	}
	sessionID := registry.NewSessionID()
	if name != "" {
		sessionID = name
	}
	lock, err := reg.Lock(sessionID)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	sess, err := ptysession.Construct(sessionID, agent, args, extraArgs, size, cfg.Gateway.DebugOutput)
	if err != nil {
		return err
	}
	defer reg.Remove(sessionID)

	if err := reg.Write(registry.SessionMeta{
		ID:        sessionID,
		Agent:     agent,
		Args:      args,
		Dir:       sessionDir(cfg, sessionID),
		StartedAt: time.Now(),
		Size:      size,
	}); err != nil {
		return err
	}

	rec, err := replay.Open(sessionDir(cfg, sessionID))
	if err == nil {
		defer rec.Close()
		go recordTimeline(sess, rec)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		_ = sess.Start()
	}()

	return tui.Attach(ctx, sess, os.Stdin, os.Stdout)
}

func sessionDir(cfg *config.Config, id string) string {
	return filepath.Join(cfg.Session.RootDir, id)
}

func recordTimeline(sess *ptysession.Session, rec *replay.Recorder) {
	sub := sess.Subscribe()
	defer sess.Unsubscribe(sub)
	for u := range sub.Updates {
		_ = rec.RecordUpdate(u)
	}
}
