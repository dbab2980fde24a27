package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"fabbro/internal/fem"
	"fabbro/internal/types"
)

const sessionFileExt = ".fem"

// FileSessionStore keeps one .fem document per session in a directory.
type FileSessionStore struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

func NewFileSessionStore(dir string) *FileSessionStore {
	return &FileSessionStore{dir: dir, now: time.Now}
}

func (s *FileSessionStore) Create(ctx context.Context, content, sourceFile string) (*types.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return createSession(fileSessionWriter{s}, content, sourceFile, s.now())
}

func (s *FileSessionStore) Get(ctx context.Context, id string) (*types.Session, bool, error) {
	if err := validateSessionID(id); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.read(s.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return session, true, nil
}

func (s *FileSessionStore) Save(ctx context.Context, session *types.Session) (*types.Session, error) {
	if session == nil {
		return nil, errors.New("session is required")
	}
	if err := validateSessionID(session.ID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.read(s.path(session.ID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	updated := cloneSession(session)
	updated.CreatedAt = existing.CreatedAt
	updated.SourceFile = existing.SourceFile
	updated.UpdatedAt = s.now().UTC()
	if err := s.write(updated); err != nil {
		return nil, err
	}
	return cloneSession(updated), nil
}

func (s *FileSessionStore) List(ctx context.Context) ([]*types.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list()
}

func (s *FileSessionStore) FindBySourceFile(ctx context.Context, sourceFile string) (*types.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessions, err := s.list()
	if err != nil {
		return nil, err
	}
	return latestForSource(sessions, sourceFile)
}

func (s *FileSessionStore) Delete(ctx context.Context, id string) error {
	if err := validateSessionID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrSessionNotFound
		}
		return err
	}
	return nil
}

// list skips files that fail to parse; a damaged session must not hide the rest.
func (s *FileSessionStore) list() ([]*types.Session, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*types.Session{}, nil
		}
		return nil, fmt.Errorf("read sessions directory: %w", err)
	}
	out := make([]*types.Session, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") || !strings.HasSuffix(entry.Name(), sessionFileExt) {
			continue
		}
		session, err := s.read(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			continue
		}
		out = append(out, session)
	}
	sortSessions(out)
	return out, nil
}

func (s *FileSessionStore) path(id string) string {
	return filepath.Join(s.dir, id+sessionFileExt)
}

func (s *FileSessionStore) read(path string) (*types.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	meta, body, err := fem.SplitFrontmatter(string(data))
	if err != nil {
		return nil, fmt.Errorf("invalid session file %s: %w", filepath.Base(path), err)
	}
	if id := strings.TrimSuffix(filepath.Base(path), sessionFileExt); meta.SessionID != id {
		return nil, fmt.Errorf("%w: %s declares %q", ErrSessionMismatch, filepath.Base(path), meta.SessionID)
	}
	updatedAt := meta.CreatedAt
	if info, err := os.Stat(path); err == nil {
		updatedAt = info.ModTime().UTC()
	}
	return &types.Session{
		ID:         meta.SessionID,
		SourceFile: meta.SourceFile,
		Content:    body,
		CreatedAt:  meta.CreatedAt,
		UpdatedAt:  updatedAt,
	}, nil
}

func (s *FileSessionStore) write(session *types.Session) error {
	doc := fem.Serialize(session.Content, fem.Metadata{
		SessionID:  session.ID,
		CreatedAt:  session.CreatedAt,
		SourceFile: session.SourceFile,
	})
	if err := writeFileAtomic(s.path(session.ID), []byte(doc)); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

type fileSessionWriter struct {
	s *FileSessionStore
}

func (w fileSessionWriter) exists(id string) (bool, error) {
	_, err := os.Stat(w.s.path(id))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (w fileSessionWriter) put(session *types.Session) error {
	return w.s.write(session)
}
