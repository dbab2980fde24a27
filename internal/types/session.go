package types

import "time"

// Session is one review of one document. Content is the marked-up body, the
// part of a .fem document that follows the frontmatter header.
type Session struct {
	ID         string    `json:"id"`
	SourceFile string    `json:"source_file,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SessionSummary is the listing view of a session.
type SessionSummary struct {
	ID              string    `json:"id"`
	SourceFile      string    `json:"source_file,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	AnnotationCount int       `json:"annotation_count"`
}

func (s *Session) Summary(annotationCount int) SessionSummary {
	return SessionSummary{
		ID:              s.ID,
		SourceFile:      s.SourceFile,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
		AnnotationCount: annotationCount,
	}
}
