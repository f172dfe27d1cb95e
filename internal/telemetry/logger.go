package telemetry

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	clog "github.com/charmbracelet/log"
)

// Logger writes one JSON object per event. A nil *Logger drops everything.
type Logger struct {
	l *clog.Logger
	c io.Closer
}

func NewJSONLogger(path string, debug bool) (*Logger, error) {
	var (
		w io.Writer = io.Discard
		c io.Closer
	)
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		w, c = f, f
	}
	return newLogger(w, c, debug), nil
}

// NewWriterLogger logs to w without taking ownership of it.
func NewWriterLogger(w io.Writer, debug bool) *Logger {
	return newLogger(w, nil, debug)
}

func newLogger(w io.Writer, c io.Closer, debug bool) *Logger {
	l := clog.NewWithOptions(w, clog.Options{
		Prefix:          "pydojo",
		Level:           clog.InfoLevel,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339Nano,
		Formatter:       clog.JSONFormatter,
	})
	if debug {
		l.SetLevel(clog.DebugLevel)
	}
	return &Logger{l: l, c: c}
}

func (l *Logger) Debug(msg string, fields map[string]any) {
	if l == nil || l.l == nil {
		return
	}
	l.l.Debug(msg, keyvals(fields)...)
}

func (l *Logger) Info(msg string, fields map[string]any) {
	if l == nil || l.l == nil {
		return
	}
	l.l.Info(msg, keyvals(fields)...)
}

func (l *Logger) Warn(msg string, fields map[string]any) {
	if l == nil || l.l == nil {
		return
	}
	l.l.Warn(msg, keyvals(fields)...)
}

func (l *Logger) Error(msg string, fields map[string]any) {
	if l == nil || l.l == nil {
		return
	}
	l.l.Error(msg, keyvals(fields)...)
}

func (l *Logger) Close() error {
	if l == nil || l.c == nil {
		return nil
	}
	return l.c.Close()
}

// keyvals flattens fields in key order so log lines are stable.
func keyvals(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]any, 0, len(fields)*2)
	for _, k := range keys {
		out = append(out, k, fields[k])
	}
	return out
}
