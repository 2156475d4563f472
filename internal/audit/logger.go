package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp     time.Time              `json:"ts"`
	CorrelationID string                 `json:"correlationId"`
	User          string                 `json:"user"`
	Action        string                 `json:"action"`
	Params        map[string]interface{} `json:"params"`
	Outcome       string                 `json:"outcome"`
	Code          string                 `json:"code"`
}

type userContextKey struct{}

// WithUser returns a context carrying the acting user's identity. The auth
// middleware populates this from the token subject.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the acting user, or "unknown" when absent.
func UserFromContext(ctx context.Context) string {
	if user, ok := ctx.Value(userContextKey{}).(string); ok && user != "" {
		return user
	}
	return "unknown"
}

// Logger implements append-only JSONL audit logging.
type Logger struct {
	mu       sync.Mutex
	filePath string
	file     *os.File
}

// NewLogger creates a new audit logger writing under logDir.
func NewLogger(logDir string) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filePath := filepath.Join(logDir, "audit.jsonl")

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}

	return &Logger{
		filePath: filePath,
		file:     file,
	}, nil
}

// LogAction logs an audit record for a command action. It returns the
// entry's correlation ID.
func (l *Logger) LogAction(ctx context.Context, action string, params map[string]interface{}, outcome string, err error) string {
	code := "SUCCESS"
	if err != nil {
		code = codeFromError(err)
	}

	entry := Entry{
		Timestamp:     time.Now().UTC(),
		CorrelationID: uuid.NewString(),
		User:          UserFromContext(ctx),
		Action:        action,
		Params:        params,
		Outcome:       outcome,
		Code:          code,
	}

	l.writeEntry(entry)
	return entry.CorrelationID
}

// writeEntry appends one JSON line and syncs it to disk.
func (l *Logger) writeEntry(entry Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	jsonData, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to marshal audit entry: %v\n", err)
		return
	}

	if _, err := l.file.Write(append(jsonData, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write audit entry: %v\n", err)
		return
	}

	if err := l.file.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to sync audit log: %v\n", err)
	}
}

// codeFromError maps error types to standardized codes.
func codeFromError(err error) string {
	if err == nil {
		return "SUCCESS"
	}

	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "INVALID_RANGE"):
		return "INVALID_RANGE"
	case strings.Contains(errStr, "BAD_REQUEST"):
		return "BAD_REQUEST"
	case strings.Contains(errStr, "UNAUTHORIZED"):
		return "UNAUTHORIZED"
	case strings.Contains(errStr, "FORBIDDEN"):
		return "FORBIDDEN"
	default:
		return "ERROR"
	}
}

// Close closes the audit logger and its file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// GetFilePath returns the path to the audit log file.
func (l *Logger) GetFilePath() string {
	return l.filePath
}

// Rotate renames the current log file with a timestamp suffix and reopens a
// fresh one.
func (l *Logger) Rotate() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		if err := l.file.Close(); err != nil {
			return fmt.Errorf("failed to close current log file: %w", err)
		}
	}

	timestamp := time.Now().Format("20060102-150405")
	newFilePath := fmt.Sprintf("%s.%s", l.filePath, timestamp)

	if err := os.Rename(l.filePath, newFilePath); err != nil {
		return fmt.Errorf("failed to rename log file: %w", err)
	}

	file, err := os.OpenFile(l.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open new log file: %w", err)
	}

	l.file = file
	return nil
}
