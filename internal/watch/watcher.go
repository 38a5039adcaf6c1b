// Package watch re-runs an action whenever the simulation rewrites its result files.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce batches the three result files written back to back by the simulation.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a directory for writes to a fixed set of file names.
type Watcher struct {
	dir      string
	files    map[string]bool
	debounce time.Duration
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
}

// New creates a Watcher on dir for the given base file names.
func New(dir string, files []string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory, not the files: the writer may replace them.
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	tracked := make(map[string]bool, len(files))
	for _, f := range files {
		tracked[f] = true
	}
	return &Watcher{
		dir:      dir,
		files:    tracked,
		debounce: debounce,
		logger:   logger,
		watcher:  fsw,
	}, nil
}

// relevant reports whether event touches a tracked file with a content change.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !w.files[filepath.Base(event.Name)] {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// Run blocks until ctx is done, calling action once per burst of changes.
// Action errors are logged and do not stop the watch. The underlying watcher is closed on return.
func (w *Watcher) Run(ctx context.Context, action func(context.Context) error) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	w.logger.Info("Watching for result files", zap.String("dir", w.dir))
	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("Watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watch event channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("Result file changed", zap.String("file", event.Name), zap.Stringer("op", event.Op))
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watch error channel closed")
			}
			w.logger.Warn("Watcher error", zap.Error(err))

		case <-timer.C:
			if err := action(ctx); err != nil {
				w.logger.Error("Run after change failed", zap.Error(err))
			}
		}
	}
}
