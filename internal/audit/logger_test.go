package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
)

func readEntries(t *testing.T, path string) []Entry {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open audit log: %v", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("malformed audit line %q: %v", scanner.Text(), err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLogActionWritesJSONL(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger() failed: %v", err)
	}
	defer logger.Close()

	ctx := WithUser(context.Background(), "operator-1")
	id := logger.LogAction(ctx, "applyLimits", map[string]interface{}{
		"max_vel_x": 0.7,
	}, "APPLIED", nil)

	if id == "" {
		t.Fatal("LogAction() returned empty correlation ID")
	}

	entries := readEntries(t, logger.GetFilePath())
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}

	entry := entries[0]
	if entry.User != "operator-1" {
		t.Errorf("User = %q, want operator-1", entry.User)
	}
	if entry.Action != "applyLimits" {
		t.Errorf("Action = %q, want applyLimits", entry.Action)
	}
	if entry.Code != "SUCCESS" {
		t.Errorf("Code = %q, want SUCCESS", entry.Code)
	}
	if entry.CorrelationID != id {
		t.Errorf("CorrelationID = %q, want %q", entry.CorrelationID, id)
	}
	if entry.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}
}

func TestLogActionMapsErrorCodes(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger() failed: %v", err)
	}
	defer logger.Close()

	ctx := context.Background()
	logger.LogAction(ctx, "applyLimits", nil, "REJECTED", errors.New("INVALID_RANGE: acc_lim_x must be non-negative"))
	logger.LogAction(ctx, "checkVelocity", nil, "REJECTED", errors.New("BAD_REQUEST: malformed body"))
	logger.LogAction(ctx, "applyLimits", nil, "REJECTED", errors.New("disk on fire"))

	entries := readEntries(t, logger.GetFilePath())
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[0].Code != "INVALID_RANGE" {
		t.Errorf("Code = %q, want INVALID_RANGE", entries[0].Code)
	}
	if entries[1].Code != "BAD_REQUEST" {
		t.Errorf("Code = %q, want BAD_REQUEST", entries[1].Code)
	}
	if entries[2].Code != "ERROR" {
		t.Errorf("Code = %q, want ERROR", entries[2].Code)
	}
	if entries[0].User != "unknown" {
		t.Errorf("User = %q, want unknown for missing context identity", entries[0].User)
	}
}

func TestRotate(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger() failed: %v", err)
	}
	defer logger.Close()

	logger.LogAction(context.Background(), "applyLimits", nil, "APPLIED", nil)

	if err := logger.Rotate(); err != nil {
		t.Fatalf("Rotate() failed: %v", err)
	}

	logger.LogAction(context.Background(), "checkVelocity", nil, "ACCEPTED", nil)

	entries := readEntries(t, logger.GetFilePath())
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry in fresh file after rotate, got %d", len(entries))
	}
	if entries[0].Action != "checkVelocity" {
		t.Errorf("Action = %q, want checkVelocity", entries[0].Action)
	}
}
