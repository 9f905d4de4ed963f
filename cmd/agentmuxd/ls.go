package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"agentmux/internal/config"
	"agentmux/internal/registry"
)

// newLsCmd lists every session the registry knows about on this host.
func newLsCmd(cfg **config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List known sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listSessions(*cfg)
		},
	}
}

func listSessions(cfg *config.Config) error {
	reg, err := registry.New(cfg.Session.RootDir)
	if err != nil {
		return err
	}
	metas, err := reg.List()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAGENT\tSIZE\tSTARTED")
	for _, m := range metas {
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%s\n", m.ID, m.Agent, m.Size.Cols, m.Size.Rows, m.StartedAt.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}
