package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fabbro/internal/fem"
)

type applyOutput struct {
	SessionID   string           `json:"sessionId"`
	SourceFile  string           `json:"sourceFile"`
	Annotations []fem.Annotation `json:"annotations"`
}

func (c *cli) newApplyCmd() *cobra.Command {
	var (
		jsonFlag bool
		fileFlag string
	)
	cmd := &cobra.Command{
		Use:   "apply [session-id]",
		Short: "List the annotations recorded in a session",
		Long: `Parse a session's markers and print the annotations they carry, one per
line or as JSON. Markers whose text contains another opening delimiter are
left in place and reported as warnings.`,
		Example: `  fabbro apply 20260101-0a1b2c3d4e5f6a7b
  fabbro apply --file main.go --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			session, err := resolveSession(cmd.Context(), env.repo.Sessions(), args, fileFlag)
			if err != nil {
				return err
			}
			parsed := fem.ParseDetailed(session.Content)
			reportSkipped(env.logger, session.ID, parsed.Skipped)

			annotations := make([]fem.Annotation, 0, len(parsed.Annotations))
			for _, a := range parsed.Annotations {
				a.Text = fem.DecodeText(a.Text)
				annotations = append(annotations, a)
			}

			out := cmd.OutOrStdout()
			if jsonFlag {
				return writeJSON(out, applyOutput{
					SessionID:   session.ID,
					SourceFile:  session.SourceFile,
					Annotations: annotations,
				})
			}

			styled := c.wiring.isTerminal(out)
			fmt.Fprintf(out, "Session: %s\n", session.ID)
			if session.SourceFile != "" {
				fmt.Fprintf(out, "Source: %s\n", session.SourceFile)
			}
			fmt.Fprintf(out, "Annotations: %d\n", len(annotations))
			for _, a := range annotations {
				if a.StartLine == a.EndLine {
					fmt.Fprintf(out, "  Line %d: %s %s\n", a.StartLine, kindBadge(a.Kind, styled), a.Text)
				} else {
					fmt.Fprintf(out, "  Lines %d-%d: %s %s\n", a.StartLine, a.EndLine, kindBadge(a.Kind, styled), a.Text)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "output as JSON")
	cmd.Flags().StringVar(&fileFlag, "file", "", "use the latest session for this source file")
	return cmd
}
