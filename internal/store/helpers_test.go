package store

import (
	"testing"
	"time"

	"fabbro/internal/types"
)

var fakeSession = types.Session{ID: "20260101-ffffffffffffffff", Content: "x"}

func setClock(t *testing.T, s SessionStore, now func() time.Time) {
	t.Helper()
	switch typed := s.(type) {
	case *FileSessionStore:
		typed.now = now
	case *bboltSessionStore:
		typed.now = now
	default:
		t.Fatalf("unsupported store type %T", s)
	}
}

func sessionIDs(sessions []*types.Session) []string {
	out := make([]string, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.ID)
	}
	return out
}
