package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"fabbro/internal/logging"
)

func (c *cli) newReviewCmd() *cobra.Command {
	var (
		stdinFlag bool
		jsonFlag  bool
	)
	cmd := &cobra.Command{
		Use:   "review [file]",
		Short: "Start a review session",
		Long: `Start a new review session from a file or from stdin. The session id is
printed so notes can be added with 'fabbro annotate' or by editing the
stored document directly.`,
		Example: `  fabbro review main.go
  git show HEAD:main.go | fabbro review --stdin --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if stdinFlag && len(args) == 1 {
				return errors.New("cannot use both --stdin and a file path")
			}
			if !stdinFlag && len(args) == 0 {
				return errors.New("no input file specified. Provide a file path or pipe content via --stdin")
			}

			env, err := c.openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			limit := env.cfg.MaxInputBytes()
			var content, sourceFile string
			if stdinFlag {
				content, err = readLimited(cmd.InOrStdin(), limit)
				if err != nil {
					return err
				}
			} else {
				sourceFile = args[0]
				content, err = readSourceFile(sourceFile, limit)
				if err != nil {
					return err
				}
			}
			content = normalizeLineEndings(content)

			session, err := env.repo.Sessions().Create(cmd.Context(), content, sourceFile)
			if err != nil {
				return fmt.Errorf("failed to create session: %w", err)
			}
			env.logger.Info("session created",
				logging.F(logging.KeySession, session.ID),
				logging.F("source", session.SourceFile),
				logging.F("bytes", len(content)),
			)

			if jsonFlag {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"sessionId": session.ID})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created session: %s\n", session.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&stdinFlag, "stdin", false, "read content from stdin")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "print the session id as JSON")
	return cmd
}

func readLimited(r io.Reader, limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("input too large: exceeds %s", humanize.IBytes(uint64(limit)))
	}
	return string(data), nil
}

func readSourceFile(path string, limit int64) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("file not found: %s", path)
		}
		return "", fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > limit {
		return "", fmt.Errorf("file too large: %s exceeds %s", path, humanize.IBytes(uint64(limit)))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}

// normalizeLineEndings converts CRLF and lone CR to LF; markers and offsets
// only understand \n line boundaries.
func normalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
