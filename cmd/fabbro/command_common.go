package main

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"fabbro/internal/config"
	"fabbro/internal/fem"
	"fabbro/internal/logging"
	"fabbro/internal/store"
	"fabbro/internal/types"
)

const version = "dev"

var errNotInitialized = errors.New("fabbro not initialized. Run 'fabbro init' first")

type commandEnv struct {
	cfg    config.Config
	logger logging.Logger
	repo   store.Repository
}

func (e *commandEnv) Close() error {
	if e == nil || e.repo == nil {
		return nil
	}
	return e.repo.Close()
}

// openEnv loads settings and opens the configured session repository.
// Callers must Close the returned env.
func (c *cli) openEnv(ctx context.Context) (*commandEnv, error) {
	if !config.IsInitialized() {
		return nil, errNotInitialized
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := c.newLogger(cfg)
	repo, err := c.wiring.openRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s repository: %w", cfg.StorageBackend(), err)
	}
	imported, err := store.SeedRepositoryFromFiles(ctx, repo, repositoryPaths())
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("import sessions: %w", err)
	}
	if imported > 0 {
		logger.Info("imported sessions", logging.F("count", imported), logging.F("backend", repo.Backend()))
	}
	logger.Debug("repository opened", logging.F("backend", repo.Backend()))
	return &commandEnv{cfg: cfg, logger: logger, repo: repo}, nil
}

func (c *cli) newLogger(cfg config.Config) logging.Logger {
	level := cfg.LogLevel()
	if c.logLevel != "" {
		level = c.logLevel
	}
	return logging.New(c.wiring.stderr, logging.ParseLevel(level))
}

func repositoryPaths() store.RepositoryPaths {
	return store.RepositoryPaths{
		SessionsDir: config.SessionsDir(),
		DBPath:      config.DBPath(),
	}
}

func openConfiguredRepository(cfg config.Config) (store.Repository, error) {
	return store.OpenRepository(repositoryPaths(), cfg.StorageBackend())
}

// resolveSession finds the session named by a positional id or by --file.
func resolveSession(ctx context.Context, sessions store.SessionStore, args []string, file string) (*types.Session, error) {
	if file != "" && len(args) > 0 {
		return nil, errors.New("cannot use both session-id and --file")
	}
	if file != "" {
		session, err := sessions.FindBySourceFile(ctx, file)
		if err != nil {
			return nil, fmt.Errorf("failed to find session for file %q: %w", file, err)
		}
		return session, nil
	}
	if len(args) == 0 {
		return nil, errors.New("no session specified. Provide a session ID or use --file. Run 'fabbro session list' to see available sessions")
	}
	return loadSession(ctx, sessions, args[0])
}

func loadSession(ctx context.Context, sessions store.SessionStore, id string) (*types.Session, error) {
	session, ok, err := sessions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %q: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("failed to load session %q: %w", id, store.ErrSessionNotFound)
	}
	return session, nil
}

func reportSkipped(logger logging.Logger, sessionID string, skipped []fem.Skipped) {
	if len(skipped) == 0 {
		return
	}
	logger = logging.ForSession(logger, sessionID)
	for _, s := range skipped {
		logging.MarkerSkipped(logger, s.Line, string(s.Kind), s.Full)
	}
}

func writeJSON(out io.Writer, payload any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

var kindColors = map[fem.Kind]lipgloss.Color{
	fem.KindComment:  lipgloss.Color("12"),
	fem.KindDelete:   lipgloss.Color("9"),
	fem.KindQuestion: lipgloss.Color("11"),
	fem.KindExpand:   lipgloss.Color("13"),
	fem.KindKeep:     lipgloss.Color("10"),
	fem.KindUnclear:  lipgloss.Color("214"),
	fem.KindChange:   lipgloss.Color("14"),
}

func kindBadge(kind fem.Kind, styled bool) string {
	label := "[" + string(kind) + "]"
	color, ok := kindColors[kind]
	if !styled || !ok {
		return label
	}
	return lipgloss.NewStyle().Bold(true).Foreground(color).Render(label)
}

func printSessions(output io.Writer, summaries []types.SessionSummary) {
	writer := tabwriter.NewWriter(output, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tCREATED\tUPDATED\tNOTES\tSOURCE")
	for _, s := range summaries {
		source := s.SourceFile
		if source == "" {
			source = "(stdin)"
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%d\t%s\n",
			s.ID,
			s.CreatedAt.Local().Format("2006-01-02 15:04"),
			humanize.Time(s.UpdatedAt),
			s.AnnotationCount,
			source,
		)
	}
	_ = writer.Flush()
}

func writerIsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func writerWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok {
		return 0
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return 0
	}
	return width
}

func hasDarkBackground() bool {
	return lipgloss.HasDarkBackground()
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		var revision string
		var modified string
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				revision = setting.Value
			case "vcs.modified":
				modified = setting.Value
			}
		}
		if revision != "" {
			if modified == "true" {
				return revision + "-dirty"
			}
			return revision
		}
	}

	exe, err := os.Executable()
	if err == nil {
		file, err := os.Open(exe)
		if err == nil {
			defer file.Close()
			hasher := sha256.New()
			if _, err := io.Copy(hasher, file); err == nil {
				sum := hasher.Sum(nil)
				return fmt.Sprintf("bin-%x", sum[:6])
			}
		}
	}

	return version
}
