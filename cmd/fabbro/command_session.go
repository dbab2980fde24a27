package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fabbro/internal/fem"
	"fabbro/internal/logging"
	"fabbro/internal/types"
)

func (c *cli) newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage review sessions",
	}
	cmd.AddCommand(c.newSessionListCmd(), c.newSessionShowCmd(), c.newSessionDeleteCmd())
	return cmd
}

func (c *cli) newSessionListCmd() *cobra.Command {
	var jsonFlag bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List review sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			sessions, err := env.repo.Sessions().List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list sessions: %w", err)
			}
			summaries := make([]types.SessionSummary, 0, len(sessions))
			for _, session := range sessions {
				annotations, _, _ := fem.Parse(session.Content)
				summaries = append(summaries, session.Summary(len(annotations)))
			}

			out := cmd.OutOrStdout()
			if jsonFlag {
				return writeJSON(out, summaries)
			}
			if len(summaries) == 0 {
				fmt.Fprintln(out, "No sessions found.")
				return nil
			}
			printSessions(out, summaries)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "output as JSON")
	return cmd
}

func (c *cli) newSessionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print a session as a .fem document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			session, err := loadSession(cmd.Context(), env.repo.Sessions(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), fem.Serialize(session.Content, fem.Metadata{
				SessionID:  session.ID,
				CreatedAt:  session.CreatedAt,
				SourceFile: session.SourceFile,
			}))
			return err
		},
	}
}

func (c *cli) newSessionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a review session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.repo.Sessions().Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete session %q: %w", args[0], err)
			}
			env.logger.Info("session deleted", logging.F(logging.KeySession, args[0]))
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted session: %s\n", args[0])
			return nil
		},
	}
}
