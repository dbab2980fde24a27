package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"fabbro/internal/types"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionIDExists = errors.New("session id collision")
	ErrSessionMismatch = errors.New("session id does not match its file")
	ErrInvalidSource   = errors.New("invalid source file")
)

const maxCollisionRetries = 3

type SessionStore interface {
	Create(ctx context.Context, content, sourceFile string) (*types.Session, error)
	Get(ctx context.Context, id string) (*types.Session, bool, error)
	Save(ctx context.Context, session *types.Session) (*types.Session, error)
	List(ctx context.Context) ([]*types.Session, error)
	FindBySourceFile(ctx context.Context, sourceFile string) (*types.Session, error)
	Delete(ctx context.Context, id string) error
}

// sessionWriter is the backend-specific half of session creation.
type sessionWriter interface {
	exists(id string) (bool, error)
	put(session *types.Session) error
}

// createSession retries id generation until the backend reports a free id.
func createSession(w sessionWriter, content, sourceFile string, now time.Time) (*types.Session, error) {
	if err := validateSourceFile(sourceFile); err != nil {
		return nil, err
	}
	for attempt := 0; attempt < maxCollisionRetries; attempt++ {
		id, err := newSessionID(now)
		if err != nil {
			return nil, err
		}
		taken, err := w.exists(id)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}
		session := &types.Session{
			ID:         id,
			SourceFile: NormalizeSourceFile(sourceFile),
			Content:    content,
			CreatedAt:  now.UTC().Truncate(time.Second),
			UpdatedAt:  now.UTC(),
		}
		if err := w.put(session); err != nil {
			return nil, err
		}
		return cloneSession(session), nil
	}
	return nil, fmt.Errorf("%w after %d attempts", ErrSessionIDExists, maxCollisionRetries)
}

func newSessionID(now time.Time) (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return now.Format("20060102") + "-" + hex.EncodeToString(buf), nil
}

// NormalizeSourceFile cleans a source path for storage and lookup.
func NormalizeSourceFile(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	return filepath.ToSlash(filepath.Clean(path))
}

// validateSourceFile rejects paths the frontmatter header cannot hold on a
// single line.
func validateSourceFile(path string) error {
	if strings.ContainsAny(path, "\r\n") {
		return fmt.Errorf("%w: %q contains a line break", ErrInvalidSource, path)
	}
	return nil
}

func validateSessionID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("session id is required")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("invalid session id %q", id)
	}
	return nil
}

// latestForSource picks the newest session created from sourceFile.
func latestForSource(sessions []*types.Session, sourceFile string) (*types.Session, error) {
	query := NormalizeSourceFile(sourceFile)
	if query == "" {
		return nil, fmt.Errorf("%w: empty source file", ErrSessionNotFound)
	}
	var latest *types.Session
	for _, session := range sessions {
		if session.SourceFile != query {
			continue
		}
		if latest == nil || session.CreatedAt.After(latest.CreatedAt) {
			latest = session
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("%w for file: %s", ErrSessionNotFound, sourceFile)
	}
	return cloneSession(latest), nil
}

// sortSessions orders newest first.
func sortSessions(sessions []*types.Session) {
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID > sessions[j].ID
		}
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
}

func cloneSession(session *types.Session) *types.Session {
	if session == nil {
		return nil
	}
	copy := *session
	return &copy
}
