package audit

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRecordAndEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	logger := NewLogger(path)

	if !logger.Enabled() {
		t.Fatal("Enabled() = false for a logger with a path")
	}

	if err := logger.Record("admin", "target_updated", map[string]string{
		"stream": "PKB",
		"year":   "2025",
		"amount": "8500000000000",
	}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := logger.Record("admin", "report_generated", nil); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	entries, err := logger.Entries()
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, expected 2", len(entries))
	}
	if entries[0].Action != "target_updated" || entries[0].Detail["stream"] != "PKB" {
		t.Errorf("first entry = %+v, expected target_updated for PKB", entries[0])
	}
	if entries[1].Action != "report_generated" || entries[1].Actor != "admin" {
		t.Errorf("second entry = %+v, expected report_generated by admin", entries[1])
	}
	if entries[0].Timestamp.IsZero() {
		t.Error("first entry has a zero timestamp")
	}
}

func TestDisabledLoggerIsNoOp(t *testing.T) {
	logger := NewLogger("")

	if logger.Enabled() {
		t.Fatal("Enabled() = true for an empty path")
	}
	if err := logger.Record("admin", "report_generated", nil); err != nil {
		t.Fatalf("Record() error = %v on a disabled logger", err)
	}
	entries, err := logger.Entries()
	if err != nil || entries != nil {
		t.Fatalf("Entries() = %v, %v, expected nil, nil", entries, err)
	}
}

func TestEntriesMissingFile(t *testing.T) {
	logger := NewLogger(filepath.Join(t.TempDir(), "missing.jsonl"))
	entries, err := logger.Entries()
	if err != nil || entries != nil {
		t.Fatalf("Entries() = %v, %v, expected nil, nil before first record", entries, err)
	}
}

func TestEntriesRejectsCorruptLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	if err := os.WriteFile(path, []byte("{not json}\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := NewLogger(path).Entries(); err == nil {
		t.Fatal("Entries() error = nil on a corrupt trail")
	}
}
