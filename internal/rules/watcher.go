package rules

import (
	"context"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/akoutras/medpress/internal/domain"
)

// Watcher serves the current rule set and swaps it atomically when
// the underlying file changes. A failed reload keeps the last good
// set; editors fix the file and save again.
type Watcher struct {
	source  *FileSource
	path    string
	current atomic.Pointer[domain.RuleSet]
	fsw     *fsnotify.Watcher
	logger  *zap.Logger

	// OnReload, when set, runs after every successful swap. The server
	// uses it to rebuild the validator.
	OnReload func(domain.RuleSet)
}

func NewWatcher(path string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	source := NewFileSource(path)
	initial, err := source.Load()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		source: source,
		path:   path,
		logger: logger,
	}
	w.current.Store(&initial)
	return w, nil
}

// RuleSet returns the currently active rules.
func (w *Watcher) RuleSet() domain.RuleSet {
	return *w.current.Load()
}

// Watch blocks until ctx is done, reloading the rule file on every
// write. Editors save atomically (write + rename), so the parent
// directory is watched rather than the file itself.
func (w *Watcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsw = fsw
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	w.logger.Info("watching rules file", zap.String("path", w.path))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("rules watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	rs, err := w.source.Load()
	if err != nil {
		w.logger.Error("rules reload failed, keeping previous set", zap.Error(err))
		return
	}

	w.current.Store(&rs)
	w.logger.Info("rules reloaded",
		zap.Int("patterns", len(rs.Patterns)),
		zap.Int("anti_patterns", len(rs.AntiPatterns)))

	if w.OnReload != nil {
		w.OnReload(rs)
	}
}
