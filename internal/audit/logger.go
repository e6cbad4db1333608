package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Entry is a single audit record. One JSON object per line.
type Entry struct {
	Timestamp time.Time `json:"ts"`
	RigID     string    `json:"rigId"`
	Action    string    `json:"action"`
	Outcome   string    `json:"outcome"`
	LatencyMS int64     `json:"latencyMs"`
}

// Logger appends JSONL audit records to a size-rotated file. It satisfies
// the rig package's audit sink so every dispatched operation lands here.
type Logger struct {
	mu  sync.Mutex
	out io.WriteCloser
}

// Options tunes rotation. Zero values fall back to lumberjack defaults.
type Options struct {
	MaxSizeMB  int
	MaxBackups int
}

// NewLogger creates a rotating audit logger writing to dir/audit.jsonl.
func NewLogger(dir string, opts Options) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}
	return &Logger{
		out: &lumberjack.Logger{
			Filename:   filepath.Join(dir, "audit.jsonl"),
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			Compress:   true,
		},
	}, nil
}

// NewWriterLogger wraps an arbitrary writer. Used by tests and by callers
// that manage their own output.
func NewWriterLogger(w io.WriteCloser) *Logger {
	return &Logger{out: w}
}

// LogAction records one rig operation with its outcome and latency.
func (l *Logger) LogAction(action, rigID, outcome string, latency time.Duration) {
	entry := Entry{
		Timestamp: time.Now().UTC(),
		RigID:     rigID,
		Action:    action,
		Outcome:   outcome,
		LatencyMS: latency.Milliseconds(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal audit entry: %v\n", err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.out.Write(append(data, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write audit entry: %v\n", err)
	}
}

// Close flushes and closes the underlying writer.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.out.Close()
}
