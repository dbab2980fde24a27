package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fabbro/internal/fem"
)

type storeFactory struct {
	name string
	open func(t *testing.T) SessionStore
}

func sessionStoreFactories() []storeFactory {
	return []storeFactory{
		{
			name: "file",
			open: func(t *testing.T) SessionStore {
				return NewFileSessionStore(filepath.Join(t.TempDir(), "sessions"))
			},
		},
		{
			name: "bbolt",
			open: func(t *testing.T) SessionStore {
				repo, err := NewBboltRepository(filepath.Join(t.TempDir(), "fabbro.db"))
				if err != nil {
					t.Fatalf("NewBboltRepository: %v", err)
				}
				t.Cleanup(func() { _ = repo.Close() })
				return repo.Sessions()
			},
		},
	}
}

func TestSessionStoreCreateGetSave(t *testing.T) {
	for _, factory := range sessionStoreFactories() {
		t.Run(factory.name, func(t *testing.T) {
			ctx := context.Background()
			store := factory.open(t)

			created, err := store.Create(ctx, "line one\nline two", "./src/../src/main.go")
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if !strings.HasPrefix(created.ID, time.Now().Format("20060102")+"-") || len(created.ID) != 8+1+16 {
				t.Fatalf("unexpected id format: %q", created.ID)
			}
			if created.SourceFile != "src/main.go" {
				t.Fatalf("expected normalized source file, got %q", created.SourceFile)
			}

			got, ok, err := store.Get(ctx, created.ID)
			if err != nil || !ok {
				t.Fatalf("get: ok=%v err=%v", ok, err)
			}
			if got.Content != "line one\nline two" || !got.CreatedAt.Equal(created.CreatedAt) {
				t.Fatalf("unexpected session: %#v", got)
			}

			got.Content = fem.Insert("line one\nline two", []fem.OffsetAnnotation{
				{Kind: fem.KindComment, Text: "check", StartOffset: 0, EndOffset: 8},
			})
			got.SourceFile = "elsewhere.go"
			saved, err := store.Save(ctx, got)
			if err != nil {
				t.Fatalf("save: %v", err)
			}
			if saved.SourceFile != "src/main.go" {
				t.Fatalf("save must not change the source file, got %q", saved.SourceFile)
			}

			again, _, err := store.Get(ctx, created.ID)
			if err != nil {
				t.Fatalf("get after save: %v", err)
			}
			annotations, clean, _ := fem.Parse(again.Content)
			if clean != "line one\nline two" || len(annotations) != 1 || annotations[0].Text != "check" {
				t.Fatalf("unexpected saved content: %q", again.Content)
			}
		})
	}
}

func TestSessionStoreMissing(t *testing.T) {
	for _, factory := range sessionStoreFactories() {
		t.Run(factory.name, func(t *testing.T) {
			ctx := context.Background()
			store := factory.open(t)

			_, ok, err := store.Get(ctx, "20260101-0000000000000000")
			if err != nil || ok {
				t.Fatalf("expected missing session, ok=%v err=%v", ok, err)
			}
			if err := store.Delete(ctx, "20260101-0000000000000000"); !errors.Is(err, ErrSessionNotFound) {
				t.Fatalf("expected ErrSessionNotFound, got %v", err)
			}
			if _, err := store.Save(ctx, &fakeSession); !errors.Is(err, ErrSessionNotFound) {
				t.Fatalf("expected ErrSessionNotFound on save, got %v", err)
			}
			if _, _, err := store.Get(ctx, "../escape"); err == nil {
				t.Fatalf("expected invalid id error")
			}
			sessions, err := store.List(ctx)
			if err != nil || len(sessions) != 0 {
				t.Fatalf("expected empty list, got %d err=%v", len(sessions), err)
			}
		})
	}
}

func TestSessionStoreListFindDelete(t *testing.T) {
	for _, factory := range sessionStoreFactories() {
		t.Run(factory.name, func(t *testing.T) {
			ctx := context.Background()
			store := factory.open(t)
			clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
			setClock(t, store, func() time.Time { return clock })

			first, err := store.Create(ctx, "a", "doc.md")
			if err != nil {
				t.Fatalf("create first: %v", err)
			}
			clock = clock.Add(time.Hour)
			second, err := store.Create(ctx, "b", "doc.md")
			if err != nil {
				t.Fatalf("create second: %v", err)
			}
			clock = clock.Add(time.Hour)
			other, err := store.Create(ctx, "c", "")
			if err != nil {
				t.Fatalf("create other: %v", err)
			}

			sessions, err := store.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(sessions) != 3 || sessions[0].ID != other.ID || sessions[2].ID != first.ID {
				t.Fatalf("expected newest first, got %v", sessionIDs(sessions))
			}

			latest, err := store.FindBySourceFile(ctx, "./doc.md")
			if err != nil {
				t.Fatalf("find: %v", err)
			}
			if latest.ID != second.ID {
				t.Fatalf("expected latest session %s, got %s", second.ID, latest.ID)
			}
			if _, err := store.FindBySourceFile(ctx, "missing.md"); !errors.Is(err, ErrSessionNotFound) {
				t.Fatalf("expected ErrSessionNotFound, got %v", err)
			}

			if err := store.Delete(ctx, second.ID); err != nil {
				t.Fatalf("delete: %v", err)
			}
			latest, err = store.FindBySourceFile(ctx, "doc.md")
			if err != nil || latest.ID != first.ID {
				t.Fatalf("expected fallback to first session, got %v err=%v", latest, err)
			}
		})
	}
}

func TestFileSessionStoreWritesFemDocument(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sessions")
	store := NewFileSessionStore(dir)
	created, err := store.Create(context.Background(), "body {>> x <<}", "it's.md")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, created.ID+".fem"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	doc := string(data)
	if !strings.HasPrefix(doc, "---\nsession_id: "+created.ID+"\n") {
		t.Fatalf("unexpected header: %q", doc)
	}
	if !strings.Contains(doc, "source_file: 'it''s.md'\n---\n\nbody {>> x <<}") {
		t.Fatalf("unexpected document: %q", doc)
	}
}

func TestFileSessionStoreListSkipsDamagedFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sessions")
	store := NewFileSessionStore(dir)
	if _, err := store.Create(context.Background(), "ok", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.fem"), []byte("no header"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	sessions, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
}

func TestFileSessionStoreRejectsRenamedFile(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "sessions")
	store := NewFileSessionStore(dir)
	created, err := store.Create(ctx, "body", "a.go")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	renamed := "20260101-0000000000000000"
	if err := os.Rename(filepath.Join(dir, created.ID+".fem"), filepath.Join(dir, renamed+".fem")); err != nil {
		t.Fatalf("rename: %v", err)
	}

	if _, _, err := store.Get(ctx, renamed); !errors.Is(err, ErrSessionMismatch) {
		t.Fatalf("expected ErrSessionMismatch, got %v", err)
	}
	sessions, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("expected mismatched file to be skipped, got %#v", sessions)
	}
}

func TestSessionStoreRejectsMultilineSourceFile(t *testing.T) {
	for _, factory := range sessionStoreFactories() {
		t.Run(factory.name, func(t *testing.T) {
			ctx := context.Background()
			store := factory.open(t)
			for _, path := range []string{"a\nb.go", "a\rb.go"} {
				if _, err := store.Create(ctx, "body", path); !errors.Is(err, ErrInvalidSource) {
					t.Fatalf("%q: expected ErrInvalidSource, got %v", path, err)
				}
			}
			sessions, err := store.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(sessions) != 0 {
				t.Fatalf("rejected create must not persist, got %d sessions", len(sessions))
			}
		})
	}
}

func TestSeedRepositoryFromFiles(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	paths := RepositoryPaths{
		SessionsDir: filepath.Join(root, "sessions"),
		DBPath:      filepath.Join(root, "fabbro.db"),
	}
	legacy := NewFileSessionStore(paths.SessionsDir)
	created, err := legacy.Create(ctx, "text {?? why ??}", "a.go")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	repo, err := OpenRepository(paths, RepositoryBackendBbolt)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer repo.Close()

	n, err := SeedRepositoryFromFiles(ctx, repo, paths)
	if err != nil || n != 1 {
		t.Fatalf("seed: n=%d err=%v", n, err)
	}
	got, ok, err := repo.Sessions().Get(ctx, created.ID)
	if err != nil || !ok {
		t.Fatalf("get seeded: ok=%v err=%v", ok, err)
	}
	if got.Content != "text {?? why ??}" || got.SourceFile != "a.go" || !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("unexpected seeded session: %#v", got)
	}

	n, err = SeedRepositoryFromFiles(ctx, repo, paths)
	if err != nil || n != 0 {
		t.Fatalf("second seed should be a no-op: n=%d err=%v", n, err)
	}
}

func TestOpenRepositoryBackends(t *testing.T) {
	root := t.TempDir()
	paths := RepositoryPaths{SessionsDir: filepath.Join(root, "sessions"), DBPath: filepath.Join(root, "db")}
	repo, err := OpenRepository(paths, "")
	if err != nil || repo.Backend() != RepositoryBackendFile {
		t.Fatalf("expected file backend by default, got %v err=%v", repo, err)
	}
	if _, err := OpenRepository(paths, "sqlite"); err == nil {
		t.Fatalf("expected unsupported backend error")
	}
	if _, err := OpenRepository(RepositoryPaths{}, RepositoryBackendBbolt); err == nil {
		t.Fatalf("expected missing db path error")
	}
}
