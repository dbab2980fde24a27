package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"fabbro/internal/config"
	"fabbro/internal/review"
	"fabbro/internal/store"
)

type commandWiring struct {
	stdin          io.Reader
	stdout         io.Writer
	stderr         io.Writer
	openRepository func(cfg config.Config) (store.Repository, error)
	copyText       func(text string) (review.ClipboardMethod, error)
	isTerminal     func(w io.Writer) bool
	terminalWidth  func(w io.Writer) int
	darkBackground func() bool
	version        string
}

func defaultCommandWiring(stdin io.Reader, stdout, stderr io.Writer) commandWiring {
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return commandWiring{
		stdin:          stdin,
		stdout:         stdout,
		stderr:         stderr,
		openRepository: openConfiguredRepository,
		copyText:       review.Copy,
		isTerminal:     writerIsTerminal,
		terminalWidth:  writerWidth,
		darkBackground: hasDarkBackground,
		version:        buildVersion(),
	}
}

// cli holds state shared by every subcommand for one invocation.
type cli struct {
	wiring   commandWiring
	logLevel string
}

func buildRootCmd(wiring commandWiring) *cobra.Command {
	c := &cli{wiring: wiring}
	root := &cobra.Command{
		Use:   "fabbro",
		Short: "Annotate text with inline review markers",
		Long: `fabbro records review notes inside the reviewed text itself, as inline
markers such as {>> comment <<} or {?? question ??}, and turns them back
into a structured list for whoever has to act on them.`,
		Version:       wiring.version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(wiring.stdin)
	root.SetOut(wiring.stdout)
	root.SetErr(wiring.stderr)
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override the configured log level (debug|info|warn|error|off)")

	root.AddCommand(
		c.newInitCmd(),
		c.newReviewCmd(),
		c.newAnnotateCmd(),
		c.newApplyCmd(),
		c.newExportCmd(),
		c.newSessionCmd(),
		c.newConfigCmd(),
		c.newPrimeCmd(),
		newCompletionCmd(),
	)
	return root
}
