package vessels

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Holder publishes the current vessel list. Readers take a snapshot with
// Current and keep using it for the whole validation; a reload swaps the
// pointer and never touches a published list.
type Holder struct {
	current atomic.Pointer[List]
}

// NewHolder returns a holder publishing l
func NewHolder(l *List) *Holder {
	h := &Holder{}
	h.current.Store(l)
	return h
}

// Current returns the published list snapshot
func (h *Holder) Current() *List {
	return h.current.Load()
}

// Store publishes a new list
func (h *Holder) Store(l *List) {
	h.current.Store(l)
}

// Watch reloads path into h whenever the file is written or replaced,
// until ctx is cancelled. A reload that fails keeps the previous list.
func Watch(ctx context.Context, path string, h *Holder, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory so editors that replace the file via rename are seen
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve vessel list path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			list, err := Load(abs)
			if err != nil {
				logger.Warn("vessel list reload failed, keeping previous list", "path", abs, "error", err)
				continue
			}
			h.Store(list)
			logger.Info("vessel list reloaded", "path", abs, "vessels", list.Len())
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("vessel list watcher error", "error", err)
		}
	}
}
