package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fabbro/internal/fem"
	"fabbro/internal/logging"
)

type annotateOptions struct {
	kind  string
	text  string
	line  int
	start int
	end   int
}

func (c *cli) newAnnotateCmd() *cobra.Command {
	opts := annotateOptions{}
	cmd := &cobra.Command{
		Use:   "annotate <session-id>",
		Short: "Add an annotation to a session",
		Long: `Attach a note to a line or to a character range of the session's clean
content. Existing notes are re-anchored to the end of the line they were
found on; notes whose text contains marker syntax are rejected.`,
		Example: `  fabbro annotate 20260101-0a1b2c3d4e5f6a7b --line 12 --kind question --text "why retry here?"
  fabbro annotate 20260101-0a1b2c3d4e5f6a7b --start 40 --end 52 --kind suggest --text "use a map"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := fem.NormalizeKind(strings.ToLower(strings.TrimSpace(opts.kind)))
			if !ok {
				return fmt.Errorf("unknown annotation kind %q", opts.kind)
			}
			if fem.HasMarkerSyntax(opts.text) {
				return errors.New("annotation text must not contain marker delimiters")
			}

			env, err := c.openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			sessions := env.repo.Sessions()
			session, err := loadSession(cmd.Context(), sessions, args[0])
			if err != nil {
				return err
			}

			parsed := fem.ParseDetailed(session.Content)
			reportSkipped(env.logger, session.ID, parsed.Skipped)

			start, end, err := opts.span(parsed.Clean)
			if err != nil {
				return err
			}
			anns := fem.ToOffsets(parsed.Clean, parsed.Annotations)
			anns = append(anns, fem.OffsetAnnotation{
				Kind:        kind,
				Text:        opts.text,
				StartOffset: start,
				EndOffset:   end,
			})
			session.Content = fem.Insert(parsed.Clean, anns)
			if _, err := sessions.Save(cmd.Context(), session); err != nil {
				return fmt.Errorf("failed to save session %q: %w", session.ID, err)
			}

			line := fem.OffsetToLine(parsed.Clean, start)
			env.logger.Info("annotation added",
				logging.F(logging.KeySession, session.ID),
				logging.F("kind", kind),
				logging.F("line", line),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s at line %d (%d annotations)\n", kind, session.ID, line, len(anns))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.kind, "kind", string(fem.KindComment), "annotation kind: comment|delete|question|expand|keep|unclear|change|suggest")
	flags.StringVar(&opts.text, "text", "", "annotation text")
	flags.IntVar(&opts.line, "line", 0, "1-based line to annotate")
	flags.IntVar(&opts.start, "start", -1, "start offset (characters) into the clean content")
	flags.IntVar(&opts.end, "end", -1, "end offset (characters, exclusive) into the clean content")
	_ = cmd.MarkFlagRequired("text")
	cmd.MarkFlagsMutuallyExclusive("line", "start")
	cmd.MarkFlagsMutuallyExclusive("line", "end")
	return cmd
}

// span resolves the target range against clean content.
func (o annotateOptions) span(clean string) (int, int, error) {
	if o.line != 0 {
		if o.line < 1 || o.line > fem.LineCount(clean) {
			return 0, 0, fmt.Errorf("line %d out of range (1-%d)", o.line, fem.LineCount(clean))
		}
		start, end := fem.LineSpan(clean, o.line)
		return start, end, nil
	}
	if o.start < 0 || o.end < 0 {
		return 0, 0, errors.New("provide --line or both --start and --end")
	}
	length := fem.RuneLen(clean)
	if o.start > o.end || o.end > length {
		return 0, 0, fmt.Errorf("invalid range [%d, %d) for content of length %d", o.start, o.end, length)
	}
	return o.start, o.end, nil
}
