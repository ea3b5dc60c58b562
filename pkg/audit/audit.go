// Package audit appends projection activity to a JSON-lines trail so that
// target revisions and report generations can be reviewed after the fact.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Entry is one audit record. Detail carries action-specific fields such as
// the stream, year, or amounts involved.
type Entry struct {
	Timestamp time.Time         `json:"timestamp"`
	Actor     string            `json:"actor"`
	Action    string            `json:"action"`
	Detail    map[string]string `json:"detail,omitempty"`
}

// Logger appends entries to a single file. The zero path disables the trail;
// Record becomes a no-op so callers never need to branch on configuration.
type Logger struct {
	path string
	mu   sync.Mutex
}

// NewLogger returns a logger writing to path, or a disabled logger when path
// is empty.
func NewLogger(path string) *Logger {
	return &Logger{path: path}
}

// Enabled reports whether entries are being persisted.
func (l *Logger) Enabled() bool {
	return l.path != ""
}

// Record appends one entry with the current timestamp.
func (l *Logger) Record(actor, action string, detail map[string]string) error {
	if !l.Enabled() {
		return nil
	}

	entry := Entry{
		Timestamp: time.Now().UTC(),
		Actor:     actor,
		Action:    action,
		Detail:    detail,
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding audit entry: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit trail %s: %w", l.path, err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("appending to audit trail %s: %w", l.path, err)
	}
	return nil
}

// Entries reads the full trail back. A disabled or not-yet-created trail
// yields no entries.
func (l *Logger) Entries() ([]Entry, error) {
	if !l.Enabled() {
		return nil, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit trail %s: %w", l.path, err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("decoding audit entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading audit trail %s: %w", l.path, err)
	}
	return entries, nil
}
