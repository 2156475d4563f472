package gateway

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/motion-control/mcc/internal/config"
)

// Batch is one named set of parameter changes, canonical name → new value.
type Batch map[string]float64

// Transport is a source of raw parameter-change batches. Implementations own
// the mechanics of detecting change (file watch, push notification); the
// gateway owns debouncing and delivery.
type Transport interface {
	// Watch starts the transport and returns its batch channel. The channel
	// is closed when the context is cancelled or the transport is closed.
	Watch(ctx context.Context) (<-chan Batch, error)

	// Close releases transport resources.
	Close() error
}

// FileTransport watches a YAML limits file and emits the fully-resolved
// limit mapping whenever the file changes. Legacy parameter names are
// resolved before a batch leaves the transport, so the store never sees a
// deprecated name.
type FileTransport struct {
	path    string
	log     *zap.Logger
	watcher *fsnotify.Watcher
}

// NewFileTransport creates a transport watching path.
func NewFileTransport(path string, log *zap.Logger) *FileTransport {
	return &FileTransport{path: path, log: log}
}

// Watch registers the file's directory with fsnotify (editors and atomic
// writers replace the file rather than writing in place, so watching the
// file itself would miss renames) and emits one batch per relevant event.
func (t *FileTransport) Watch(ctx context.Context) (<-chan Batch, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(t.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	t.watcher = watcher

	out := make(chan Batch)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !t.relevant(event) {
					continue
				}
				batch, moved, err := config.LoadLimitsFile(t.path)
				if err != nil {
					t.log.Warn("ignoring unreadable limits file",
						zap.String("path", t.path),
						zap.Error(err))
					continue
				}
				for _, name := range moved {
					t.log.Warn("deprecated parameter name in limits file",
						zap.String("name", name))
				}
				select {
				case out <- Batch(batch):
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				t.log.Warn("file watcher error", zap.Error(err))
			}
		}
	}()

	return out, nil
}

func (t *FileTransport) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(t.path) {
		return false
	}
	return event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Rename)
}

// Close stops the underlying watcher.
func (t *FileTransport) Close() error {
	if t.watcher != nil {
		return t.watcher.Close()
	}
	return nil
}

// StaticTransport is a channel-fed transport for tests and manual wiring.
type StaticTransport struct {
	ch chan Batch
}

// NewStaticTransport creates a transport with the given channel capacity.
func NewStaticTransport(capacity int) *StaticTransport {
	return &StaticTransport{ch: make(chan Batch, capacity)}
}

// Emit queues one batch for delivery.
func (t *StaticTransport) Emit(batch Batch) {
	t.ch <- batch
}

// Watch returns the batch channel.
func (t *StaticTransport) Watch(ctx context.Context) (<-chan Batch, error) {
	return t.ch, nil
}

// Close closes the batch channel; Watch consumers drain and stop.
func (t *StaticTransport) Close() error {
	close(t.ch)
	return nil
}
