package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"agentmux/internal/config"
	"agentmux/internal/gateway"
	"agentmux/internal/ptysession"
	"agentmux/internal/registry"
	"agentmux/internal/replay"
)

// newServeCmd runs a single agent session behind the WebSocket gateway only,
// with no local TUI attached — for remote-only operation.
func newServeCmd(cfg **config.Config) *cobra.Command {
	var addr, agent, name string

	cmd := &cobra.Command{
		Use:   "serve --agent=<agent> [--addr=:7890]",
		Short: "Run the WebSocket gateway for one agent session, with no local TUI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveAgent(*cfg, addr, name, agent, cmd.Flags().Args())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "gateway bind address (defaults to config)")
	cmd.Flags().StringVar(&agent, "agent", "", "agent binary to spawn")
	cmd.Flags().StringVar(&name, "name", "", "session ID (defaults to a generated one)")
	return cmd
}

func serveAgent(cfg *config.Config, addr, name, agent string, args []string) error {
	if agent == "" {
		return fmt.Errorf("agentmuxd serve: --agent is required")
	}
	if !cfg.AgentAllowed(agent) {
		return fmt.Errorf("agentmuxd serve: agent %q is not in the configured allow-list", agent)
	}
	if addr == "" {
		addr = cfg.Gateway.Addr
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

	sess, err := ptysession.Construct(sessionID, agent, args, "", ptysession.GridSize{}, cfg.Gateway.DebugOutput)
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
	}); err != nil {
		return err
	}

	rec, err := replay.Open(sessionDir(cfg, sessionID))
	if err == nil {
		defer rec.Close()
		go recordTimeline(sess, rec)
	}

	srv := gateway.NewServer(func(id string) (*ptysession.Session, bool) {
		if id != sessionID {
			return nil, false
		}
		return sess, true
	}, cfg.Gateway.DebugOutput)

	httpSrv := &http.Server{Addr: addr, Handler: srv.Handler()}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintln(os.Stderr, "agentmuxd serve: gateway error:", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() { _ = sess.Start() }()

	select {
	case <-ctx.Done():
	case <-sess.Done():
	}
	return httpSrv.Close()
}
