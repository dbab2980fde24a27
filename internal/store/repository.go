package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fabbro/internal/types"
)

const (
	RepositoryBackendFile  = "file"
	RepositoryBackendBbolt = "bbolt"
)

type Repository interface {
	Sessions() SessionStore
	Backend() string
	Close() error
}

type RepositoryPaths struct {
	SessionsDir string
	DBPath      string
}

type fileRepository struct {
	sessions SessionStore
}

func NewFileRepository(paths RepositoryPaths) Repository {
	return &fileRepository{sessions: NewFileSessionStore(paths.SessionsDir)}
}

func (r *fileRepository) Sessions() SessionStore {
	return r.sessions
}

func (r *fileRepository) Backend() string {
	return RepositoryBackendFile
}

func (r *fileRepository) Close() error {
	return nil
}

func OpenRepository(paths RepositoryPaths, backend string) (Repository, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", RepositoryBackendFile:
		if strings.TrimSpace(paths.SessionsDir) == "" {
			return nil, errors.New("sessions dir is required for file repository")
		}
		return NewFileRepository(paths), nil
	case RepositoryBackendBbolt:
		if strings.TrimSpace(paths.DBPath) == "" {
			return nil, errors.New("db path is required for bbolt repository")
		}
		return NewBboltRepository(paths.DBPath)
	default:
		return nil, fmt.Errorf("unsupported repository backend: %s", backend)
	}
}

type sessionImporter interface {
	Import(ctx context.Context, session *types.Session) error
}

// SeedRepositoryFromFiles copies .fem sessions into dst when dst is empty, so
// switching the storage backend keeps existing reviews visible.
func SeedRepositoryFromFiles(ctx context.Context, dst Repository, paths RepositoryPaths) (int, error) {
	if dst == nil || dst.Backend() == RepositoryBackendFile || strings.TrimSpace(paths.SessionsDir) == "" {
		return 0, nil
	}
	importer, ok := dst.Sessions().(sessionImporter)
	if !ok {
		return 0, nil
	}
	current, err := dst.Sessions().List(ctx)
	if err != nil {
		return 0, err
	}
	if len(current) > 0 {
		return 0, nil
	}
	legacy, err := NewFileSessionStore(paths.SessionsDir).List(ctx)
	if err != nil {
		return 0, err
	}
	for _, session := range legacy {
		if err := importer.Import(ctx, session); err != nil {
			return 0, fmt.Errorf("import session %s: %w", session.ID, err)
		}
	}
	return len(legacy), nil
}
