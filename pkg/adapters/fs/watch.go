package fs

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/remindme/pkg/core"
)

// DefaultDebounce collapses bursts of writes to the same note (editors often
// write a file several times per save) into a single event.
const DefaultDebounce = 100 * time.Millisecond

// Watch implements core.Watchable. It emits one event per note change whose
// vault-relative path matches pattern ("" or "**" for all notes). The channel
// is closed when ctx is cancelled.
func (r *Repository) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := r.recursiveAdd(watcher, r.Path); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	events := make(chan core.Event)
	d := newDebouncer(r.config.Debounce)
	r.setWatcherActive(true)

	lifecycle.Go(ctx, func(parent context.Context) error {
		ctx, cancel := context.WithCancel(parent)
		defer func() {
			if recovered := recover(); recovered != nil {
				attrs := []any{"error", recovered}
				if r.config.Logger.Enabled(ctx, slog.LevelDebug) {
					attrs = append(attrs, "stack", string(debug.Stack()))
				}
				r.config.Logger.Error("watcher panic", attrs...)
			}
		}()
		defer close(events)
		defer d.stopAndWait()
		defer cancel()
		defer r.setWatcherActive(false)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				r.handle(ctx, watcher, event, pattern, d, events)
			case wErr, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				r.config.Logger.Error("fsnotify error", "error", wErr)
				if r.config.ErrorHandler != nil {
					r.config.ErrorHandler(wErr)
				}
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		if r.config.ErrorHandler != nil {
			r.config.ErrorHandler(fmt.Errorf("watcher: %w", err))
			return
		}
		r.config.Logger.Error("watcher failed", "error", err)
	}))

	return events, nil
}

func (r *Repository) handle(ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event, pattern string, d *debouncer, out chan<- core.Event) {
	r.config.Logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	// New directories must be watched too, notes may be created inside them later.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := r.recursiveAdd(watcher, event.Name); err != nil {
				r.config.Logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}

	if r.shouldIgnore(event.Name, pattern) {
		return
	}
	eType := mapEventType(event)
	if eType == "" {
		return
	}
	rel, err := filepath.Rel(r.Path, event.Name)
	if err != nil {
		if r.config.ErrorHandler != nil {
			r.config.ErrorHandler(fmt.Errorf("failed to resolve ID for %s: %w", event.Name, err))
		}
		return
	}

	now := time.Now()
	e := core.Event{Type: eType, ID: idFor(rel), Timestamp: now.Unix()}
	r.recordEvent(now)
	d.add(e, func(e core.Event) {
		select {
		case out <- e:
		case <-ctx.Done():
		}
	})
}

func (r *Repository) shouldIgnore(name, pattern string) bool {
	base := filepath.Base(name)
	if filepath.Ext(base) != noteExt || strings.HasPrefix(base, TempFilePrefix) {
		return true
	}
	rel, err := filepath.Rel(r.Path, name)
	if err != nil {
		return true
	}
	rel = filepath.ToSlash(rel)
	for _, part := range strings.Split(rel, "/") {
		if part == ".git" || part == r.config.SystemDir {
			return true
		}
	}
	if pattern == "" {
		return false
	}
	ok, err := doublestar.Match(pattern, rel)
	return err != nil || !ok
}

func mapEventType(event fsnotify.Event) core.EventType {
	switch {
	case event.Has(fsnotify.Create):
		return core.EventCreate
	case event.Has(fsnotify.Write):
		return core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.EventDelete
	}
	return ""
}

// recursiveAdd registers root and every subdirectory except .git and the system dir.
func (r *Repository) recursiveAdd(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != r.Path && (d.Name() == ".git" || d.Name() == r.config.SystemDir) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// debouncer delays delivery of an event until no newer event for the same ID
// arrived within the interval. Later events replace earlier ones.
type debouncer struct {
	interval time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{interval: interval, timers: make(map[string]*time.Timer)}
}

func (d *debouncer) add(e core.Event, deliver func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if t, ok := d.timers[e.ID]; ok && t.Stop() {
		d.wg.Done()
	}
	d.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(d.interval, func() {
		defer d.wg.Done()
		d.mu.Lock()
		if d.timers[e.ID] == t {
			delete(d.timers, e.ID)
		}
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			deliver(e)
		}
	})
	d.timers[e.ID] = t
}

// stopAndWait drops pending events and waits for in-flight deliveries.
func (d *debouncer) stopAndWait() {
	d.mu.Lock()
	d.stopped = true
	for id, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, id)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
