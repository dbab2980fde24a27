// Package logging writes fabbro diagnostics to stderr as logfmt lines.
// Stdout is left to command output, which scripts and agents parse.
package logging

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
	Off
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	case Off:
		return "off"
	default:
		return "level(" + strconv.Itoa(int(l)) + ")"
	}
}

// ParseLevel maps a config or flag value onto a Level. Unknown values fall
// back to Warn, the level fabbro runs at when nothing is configured.
func ParseLevel(raw string) Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return Debug
	case "info":
		return Info
	case "error":
		return Error
	case "off", "none", "quiet":
		return Off
	default:
		return Warn
	}
}

// Keys shared by every command so log lines can be grepped per session.
const (
	KeySession = "session"
	KeyLine    = "line"
	KeyKind    = "kind"
	KeyMarker  = "marker"
)

type Field struct {
	Key   string
	Value any
}

func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

type logfmtLogger struct {
	out   io.Writer
	level Level
	// bound holds the With fields already rendered, each with a leading space.
	bound string
	now   func() time.Time
	mu    *sync.Mutex
}

// New logs to out, or to stderr when out is nil.
func New(out io.Writer, level Level) Logger {
	if out == nil {
		out = os.Stderr
	}
	return &logfmtLogger{out: out, level: level, now: time.Now, mu: &sync.Mutex{}}
}

func Nop() Logger {
	return New(io.Discard, Off)
}

// ForSession tags every line written through the returned logger with the
// session id.
func ForSession(l Logger, sessionID string) Logger {
	return l.With(F(KeySession, sessionID))
}

// MarkerSkipped reports a marker that was left in the text because another
// marker was opened inside it.
func MarkerSkipped(l Logger, line int, kind, marker string) {
	l.Warn("nested marker skipped", F(KeyLine, line), F(KeyKind, kind), F(KeyMarker, marker))
}

func (l *logfmtLogger) With(fields ...Field) Logger {
	var b strings.Builder
	b.WriteString(l.bound)
	writeFields(&b, fields)
	next := *l
	next.bound = b.String()
	return &next
}

func (l *logfmtLogger) Debug(msg string, fields ...Field) { l.log(Debug, msg, fields) }
func (l *logfmtLogger) Info(msg string, fields ...Field)  { l.log(Info, msg, fields) }
func (l *logfmtLogger) Warn(msg string, fields ...Field)  { l.log(Warn, msg, fields) }
func (l *logfmtLogger) Error(msg string, fields ...Field) { l.log(Error, msg, fields) }

func (l *logfmtLogger) log(level Level, msg string, fields []Field) {
	if level < l.level || l.level == Off {
		return
	}
	var b strings.Builder
	b.WriteString("ts=")
	b.WriteString(l.now().UTC().Format(time.RFC3339))
	b.WriteString(" level=")
	b.WriteString(level.String())
	b.WriteString(" msg=")
	b.WriteString(quote(msg))
	b.WriteString(l.bound)
	writeFields(&b, fields)
	b.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.out, b.String())
}

func writeFields(b *strings.Builder, fields []Field) {
	for _, f := range fields {
		b.WriteByte(' ')
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(formatValue(f.Value))
	}
}

func formatValue(value any) string {
	var s string
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		s = v
	case error:
		s = v.Error()
	case fmt.Stringer:
		s = v.String()
	default:
		s = fmt.Sprint(v)
	}
	return quote(s)
}

// quote leaves bare words alone. Marker text often carries spaces and
// quotes, so anything else is Go-quoted to keep one entry per line.
func quote(s string) string {
	if s == "" {
		return `""`
	}
	for _, r := range s {
		if r <= ' ' || r == '"' || r == '=' || !unicode.IsPrint(r) {
			return strconv.Quote(s)
		}
	}
	return s
}
