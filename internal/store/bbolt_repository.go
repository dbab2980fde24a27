package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"fabbro/internal/types"
)

var bucketSessions = []byte("sessions")

type bboltRepository struct {
	db       *bolt.DB
	sessions SessionStore
}

func NewBboltRepository(path string) (Repository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("repository db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := initBboltSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &bboltRepository{
		db:       db,
		sessions: &bboltSessionStore{db: db, now: time.Now},
	}, nil
}

func (r *bboltRepository) Sessions() SessionStore {
	return r.sessions
}

func (r *bboltRepository) Backend() string {
	return RepositoryBackendBbolt
}

func (r *bboltRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func initBboltSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSessions)
		return err
	})
}

type bboltSessionStore struct {
	db  *bolt.DB
	mu  sync.Mutex
	now func() time.Time
}

func (s *bboltSessionStore) Create(ctx context.Context, content, sourceFile string) (*types.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return createSession(bboltSessionWriter{s}, content, sourceFile, s.now())
}

func (s *bboltSessionStore) Get(ctx context.Context, id string) (*types.Session, bool, error) {
	if err := validateSessionID(id); err != nil {
		return nil, false, err
	}
	var (
		session *types.Session
		ok      bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		if b == nil {
			return nil
		}
		raw := b.Get([]byte(id))
		if len(raw) == 0 {
			return nil
		}
		var item types.Session
		if err := json.Unmarshal(raw, &item); err != nil {
			return err
		}
		session = cloneSession(&item)
		ok = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return session, ok, nil
}

func (s *bboltSessionStore) Save(ctx context.Context, session *types.Session) (*types.Session, error) {
	if session == nil {
		return nil, errors.New("session is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok, err := s.Get(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSessionNotFound
	}
	updated := cloneSession(session)
	updated.CreatedAt = existing.CreatedAt
	updated.SourceFile = existing.SourceFile
	updated.UpdatedAt = s.now().UTC()
	if err := s.put(updated); err != nil {
		return nil, err
	}
	return cloneSession(updated), nil
}

func (s *bboltSessionStore) List(ctx context.Context) ([]*types.Session, error) {
	out := make([]*types.Session, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var session types.Session
			if err := json.Unmarshal(v, &session); err != nil {
				return err
			}
			out = append(out, cloneSession(&session))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortSessions(out)
	return out, nil
}

func (s *bboltSessionStore) FindBySourceFile(ctx context.Context, sourceFile string) (*types.Session, error) {
	sessions, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return latestForSource(sessions, sourceFile)
}

func (s *bboltSessionStore) Delete(ctx context.Context, id string) error {
	if err := validateSessionID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		if b == nil {
			return errors.New("sessions bucket missing")
		}
		if b.Get([]byte(id)) == nil {
			return ErrSessionNotFound
		}
		return b.Delete([]byte(id))
	})
}

// Import stores session as-is, keeping its id and timestamps.
func (s *bboltSessionStore) Import(ctx context.Context, session *types.Session) error {
	if session == nil {
		return errors.New("session is required")
	}
	if err := validateSessionID(session.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(cloneSession(session))
}

func (s *bboltSessionStore) put(session *types.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		if b == nil {
			return errors.New("sessions bucket missing")
		}
		return b.Put([]byte(session.ID), raw)
	})
}

type bboltSessionWriter struct {
	s *bboltSessionStore
}

func (w bboltSessionWriter) exists(id string) (bool, error) {
	_, ok, err := w.s.Get(context.Background(), id)
	return ok, err
}

func (w bboltSessionWriter) put(session *types.Session) error {
	return w.s.put(session)
}
