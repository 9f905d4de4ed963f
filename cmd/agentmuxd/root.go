package main

import (
	"github.com/spf13/cobra"

	"agentmux/internal/config"
	"agentmux/internal/version"
)

// newRootCmd builds the agentmuxd command tree, grounded on the teacher's
// internal/cmd.NewRootCmd pattern.
func newRootCmd() *cobra.Command {
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:     "agentmuxd",
		Short:   "Multiplex an interactive CLI agent over a PTY to local and remote clients",
		Version: version.DisplayVersion(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}

	rootCmd.AddCommand(newRunCmd(&cfg))
	rootCmd.AddCommand(newServeCmd(&cfg))
	rootCmd.AddCommand(newAttachCmd(&cfg))
	rootCmd.AddCommand(newLsCmd(&cfg))
	return rootCmd
}
