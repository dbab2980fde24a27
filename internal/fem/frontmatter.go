package fem

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const frontmatterDelimiter = "---"

var (
	ErrMissingFrontmatter   = errors.New("missing frontmatter")
	ErrMalformedFrontmatter = errors.New("malformed frontmatter")
	ErrMissingSessionID     = errors.New("missing session_id")
	ErrMissingCreatedAt     = errors.New("missing created_at")
)

// Metadata is the header written in front of a serialized document.
type Metadata struct {
	SessionID  string
	CreatedAt  time.Time
	SourceFile string
}

// Serialize wraps body in a frontmatter header followed by a blank line.
// The body is written unmodified; markers must already be in place.
func Serialize(body string, meta Metadata) string {
	var b strings.Builder
	b.Grow(len(body) + 96)
	b.WriteString(frontmatterDelimiter + "\n")
	b.WriteString("session_id: " + meta.SessionID + "\n")
	b.WriteString("created_at: " + meta.CreatedAt.Format(time.RFC3339) + "\n")
	if meta.SourceFile != "" {
		b.WriteString("source_file: " + quoteYAMLString(meta.SourceFile) + "\n")
	}
	b.WriteString(frontmatterDelimiter + "\n\n")
	b.WriteString(body)
	return b.String()
}

// SplitFrontmatter reads the header written by Serialize and returns the
// body that follows it, ready for Parse.
func SplitFrontmatter(doc string) (Metadata, string, error) {
	if !strings.HasPrefix(doc, frontmatterDelimiter+"\n") {
		return Metadata{}, "", ErrMissingFrontmatter
	}
	rest := doc[len(frontmatterDelimiter)+1:]

	var (
		meta   Metadata
		closed bool
	)
	for rest != "" {
		line, tail, found := strings.Cut(rest, "\n")
		if !found {
			tail = ""
		}
		rest = tail
		if line == frontmatterDelimiter {
			closed = true
			break
		}
		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		switch key {
		case "session_id":
			meta.SessionID = value
		case "created_at":
			ts, err := time.Parse(time.RFC3339, value)
			if err != nil {
				return Metadata{}, "", fmt.Errorf("%w: created_at: %v", ErrMalformedFrontmatter, err)
			}
			meta.CreatedAt = ts
		case "source_file":
			meta.SourceFile = unquoteYAMLString(value)
		}
	}
	if !closed {
		return Metadata{}, "", ErrMalformedFrontmatter
	}
	if meta.SessionID == "" {
		return Metadata{}, "", ErrMissingSessionID
	}
	if meta.CreatedAt.IsZero() {
		return Metadata{}, "", ErrMissingCreatedAt
	}
	return meta, strings.TrimPrefix(rest, "\n"), nil
}

// quoteYAMLString wraps s in single quotes, doubling embedded quotes.
func quoteYAMLString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func unquoteYAMLString(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		s = s[1 : len(s)-1]
	}
	return strings.ReplaceAll(s, "''", "'")
}
