package querylog

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	OutcomeAnswered = "answered"
	OutcomeFailed   = "failed"
)

type Entry struct {
	Timestamp     time.Time     `json:"timestamp"`
	Question      string        `json:"question"`
	Outcome       string        `json:"outcome"`
	AnswerLength  int           `json:"answer_length"`
	Error         string        `json:"error,omitempty"`
	Duration      time.Duration `json:"duration_ns"`
	LatencyMs     int64         `json:"latency_ms"`
	CorrelationID string        `json:"correlation_id"`
}

// Logger appends one JSON line per answered or failed question.
type Logger struct {
	writer io.Writer
	file   *os.File
	mu     sync.Mutex
}

func New(w io.Writer) *Logger {
	return &Logger{writer: w}
}

func NewFile(path string) (*Logger, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}

	cleanPath := filepath.Clean(path)
	f, err := os.OpenFile(cleanPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) // #nosec G304 -- path is from application config, not user input
	if err != nil {
		return nil, err
	}
	l := New(f)
	l.file = f
	return l, nil
}

// Close releases the file opened by NewFile. Loggers built with New own
// nothing and Close is a no-op for them.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

func (l *Logger) Log(entry Entry) {
	entry.Timestamp = time.Now()
	entry.LatencyMs = entry.Duration.Milliseconds()

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := json.NewEncoder(l.writer).Encode(entry); err != nil {
		slog.Error("failed to write query log entry", "error", err)
	}
}
