package policy

import (
	"context"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the rule file when it changes on disk and atomically swaps
// the validator's snapshot. It runs as a background goroutine and is safe to
// stop via its context or the Stop method.
//
// A reload that fails to parse or check leaves the previous snapshot active;
// a half-written or broken file must never widen (or void) the policy.
type Watcher struct {
	path      string
	validator *Validator
	logger    *log.Logger
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewWatcher creates a watcher for the given policy file but does not start
// it. Call Start to begin the background loop.
func NewWatcher(path string, v *Validator, logger *log.Logger) *Watcher {
	return &Watcher{
		path:      filepath.Clean(path),
		validator: v,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Start begins watching. The directory is watched rather than the file
// itself so that editors replacing the file via rename are still observed.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return err
	}

	ctx, w.cancel = context.WithCancel(ctx)
	go w.loop(ctx, fw)

	w.logger.Printf("policy watcher started (file=%s)", w.path)
	return nil
}

// Stop signals the watcher to exit and waits for it to finish.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	<-w.done
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher) {
	defer close(w.done)
	defer fw.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Printf("policy watcher error: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	rs, err := LoadFile(w.path)
	if err != nil {
		w.logger.Printf("policy reload rejected, keeping previous rule set: %v", err)
		return
	}
	w.validator.Swap(rs)
	w.logger.Printf("policy reloaded (version=%s, rules=%d)", rs.Version, len(rs.Rules))
}
