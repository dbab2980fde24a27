package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"fabbro/internal/config"
	"fabbro/internal/logging"
	"fabbro/internal/review"
)

func (c *cli) newExportCmd() *cobra.Command {
	var (
		fileFlag string
		copyFlag bool
		rawFlag  bool
	)
	cmd := &cobra.Command{
		Use:   "export [session-id]",
		Short: "Print a review summary for a session",
		Long: `Build a markdown review summary (one entry per annotation, with the
annotated snippet) and print it. On a terminal the summary is rendered
unless --raw is given; --copy also places the markdown on the clipboard.`,
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
			entries, skipped := review.FromDocument(session.Content)
			reportSkipped(env.logger, session.ID, skipped)
			markdown := review.Markdown(entries)

			if copyFlag {
				method, err := c.wiring.copyText(markdown)
				if err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
				env.logger.Info("summary copied", logging.F(logging.KeySession, session.ID), logging.F("method", method))
				fmt.Fprintf(cmd.ErrOrStderr(), "Copied review summary to clipboard (%s)\n", method)
			}

			out := cmd.OutOrStdout()
			if rawFlag || !c.shouldRender(env.cfg, out) {
				fmt.Fprintln(out, markdown)
				return nil
			}
			width := env.cfg.RenderWidth()
			if width == 0 {
				width = c.wiring.terminalWidth(out)
			}
			fmt.Fprintln(out, strings.TrimRight(review.Render(markdown, width, c.darkRendering(env.cfg)), "\n"))
			return nil
		},
	}
	cmd.Flags().StringVar(&fileFlag, "file", "", "use the latest session for this source file")
	cmd.Flags().BoolVar(&copyFlag, "copy", false, "copy the markdown summary to the clipboard")
	cmd.Flags().BoolVar(&rawFlag, "raw", false, "print markdown without terminal rendering")
	return cmd
}

func (c *cli) shouldRender(cfg config.Config, out io.Writer) bool {
	if cfg.RenderStyle() == config.RenderStylePlain {
		return false
	}
	return c.wiring.isTerminal(out)
}

func (c *cli) darkRendering(cfg config.Config) bool {
	switch cfg.RenderStyle() {
	case config.RenderStyleDark:
		return true
	case config.RenderStyleLight:
		return false
	default:
		return c.wiring.darkBackground()
	}
}
