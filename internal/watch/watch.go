// Package watch rebuilds the site when drafts, configuration or images
// change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is the quiet period before a burst of events triggers a
// rebuild.
const DefaultDebounce = 300 * time.Millisecond

// ErrNothingToWatch indicates none of the directories could be watched.
var ErrNothingToWatch = errors.New("no directory to watch")

// RebuildFunc performs one full rebuild.
type RebuildFunc func(ctx context.Context) error

// Options configures Run.
type Options struct {
	Dirs     []string
	Debounce time.Duration
	Log      logrus.FieldLogger
}

// Run watches opts.Dirs recursively until ctx is cancelled. Events are
// debounced into calls of rebuild; at most one rebuild runs at a time and
// a change during a rebuild queues exactly one more.
func Run(ctx context.Context, opts Options, rebuild RebuildFunc) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	log := opts.Log

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	watched := 0
	for _, dir := range opts.Dirs {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			log.WithField("dir", dir).Warn("not watching missing directory")
			continue
		}
		addDirsRecursive(watcher, dir, log)
		watched++
	}
	if watched == 0 {
		return ErrNothingToWatch
	}

	w := newWorker(rebuild, log)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.run(ctx)
	}()

	d := newDebouncer(opts.Debounce, w.request)
	defer func() {
		d.stop()
		wg.Wait()
	}()

	log.WithField("dirs", opts.Dirs).Info("watching for changes")
	for {
		select {
		case <-ctx.Done():
			log.Info("watch stopped")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if shouldIgnoreEvent(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					addDirsRecursive(watcher, ev.Name, log)
				}
			}
			log.WithFields(logrus.Fields{"file": ev.Name, "op": ev.Op.String()}).Debug("change detected")
			d.trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watcher error")
		}
	}
}

func addDirsRecursive(w *fsnotify.Watcher, root string, log logrus.FieldLogger) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				log.WithError(err).WithField("dir", path).Warn("watch add failed")
			}
		}
		return nil
	})
}

// shouldIgnoreEvent reports hidden, editor swap and OS metadata files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db":
		return true
	}
	return false
}

// debouncer calls fire once events stop arriving for delay.
type debouncer struct {
	mu      sync.Mutex
	timer   *time.Timer
	delay   time.Duration
	fire    func()
	stopped bool
}

func newDebouncer(delay time.Duration, fire func()) *debouncer {
	return &debouncer{delay: delay, fire: fire}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}

// worker runs rebuilds one at a time. The request channel holds one slot,
// so requests arriving during a rebuild collapse into a single rerun.
type worker struct {
	rebuild  RebuildFunc
	log      logrus.FieldLogger
	requests chan struct{}
}

func newWorker(rebuild RebuildFunc, log logrus.FieldLogger) *worker {
	return &worker{rebuild: rebuild, log: log, requests: make(chan struct{}, 1)}
}

func (w *worker) request() {
	select {
	case w.requests <- struct{}{}:
	default:
	}
}

func (w *worker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.requests:
			start := time.Now()
			if err := w.rebuild(ctx); err != nil {
				w.log.WithError(err).Warn("rebuild failed")
				continue
			}
			w.log.WithField("duration", time.Since(start).Round(time.Millisecond).String()).Info("rebuild finished")
		}
	}
}
