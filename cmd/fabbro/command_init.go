package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fabbro/internal/config"
)

func (c *cli) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize fabbro in the current directory",
		Long: `Create the .fabbro/ directory that holds review sessions and settings.
Re-running init in an initialized directory is safe.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if config.IsInitialized() {
				fmt.Fprintln(out, "fabbro already initialized")
				return nil
			}
			if err := config.Init(); err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			fmt.Fprintf(out, "Initialized fabbro in %s/\n", config.DataDir())
			return nil
		},
	}
}
