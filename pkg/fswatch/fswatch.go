package fswatch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Event represents a file system event
type Event struct {
	Name string    // file path
	Op   Op        // operation that triggered the event
	Time time.Time // when the event occurred
}

// Op describes file system operations
type Op uint32

const (
	Create Op = 1 << iota
	Write
	Remove
	Rename
	Chmod
)

// fsWatcher is the subset of fsnotify used by Watcher.
type fsWatcher interface {
	Add(name string) error
	Close() error
	Events() chan fsnotify.Event
	Errors() chan error
}

type notifyWatcher struct {
	w *fsnotify.Watcher
}

func (n notifyWatcher) Add(name string) error       { return n.w.Add(name) }
func (n notifyWatcher) Close() error                { return n.w.Close() }
func (n notifyWatcher) Events() chan fsnotify.Event { return n.w.Events }
func (n notifyWatcher) Errors() chan error          { return n.w.Errors }

// Watcher watches a directory tree for file changes using fsnotify with a
// polling fallback. Polling also catches changes fsnotify misses, such as
// files on network mounts.
type Watcher struct {
	fsWatcher    fsWatcher
	events       chan Event
	errors       chan error
	done         chan struct{}
	closeOnce    sync.Once
	pollInterval time.Duration
	fileSystem   fs.FS
	watchDir     string
	skipDir      func(name string) bool
	lastScan     map[string]time.Time // file path -> last modified time
	wg           sync.WaitGroup
}

type Option func(*Watcher)

// WithSkipDir excludes directories whose base name matches skip.
func WithSkipDir(skip func(name string) bool) Option {
	return func(w *Watcher) { w.skipDir = skip }
}

// New creates a new hybrid file watcher
func New(pollInterval time.Duration, dir string, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		events:       make(chan Event, 100),
		errors:       make(chan error, 10),
		done:         make(chan struct{}),
		pollInterval: pollInterval,
		fileSystem:   os.DirFS(dir),
		watchDir:     dir,
		skipDir:      func(string) bool { return false },
		lastScan:     make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}

	nw, err := fsnotify.NewWatcher()
	if err != nil {
		logrus.Debugf("fsnotify unavailable, polling only: %v", err)
	} else {
		w.fsWatcher = notifyWatcher{nw}
	}
	return w, nil
}

// Watch starts watching the directory for file changes.
func (w *Watcher) Watch() error {
	if w.fsWatcher != nil {
		if err := w.addDirs(); err != nil {
			return err
		}
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.runNotify()
		}()
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.runPolling()
	}()

	return nil
}

func (w *Watcher) Events() <-chan Event { return w.events }
func (w *Watcher) Errors() <-chan error { return w.errors }

// Close stops the watcher and cleans up resources.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		if w.fsWatcher != nil {
			err = w.fsWatcher.Close()
		}
		w.wg.Wait()
		close(w.events)
	})
	return err
}

func (w *Watcher) addDirs() error {
	return fs.WalkDir(w.fileSystem, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != "." && w.skipDir(d.Name()) {
			return fs.SkipDir
		}
		return w.fsWatcher.Add(filepath.Join(w.watchDir, path))
	})
}

// runNotify forwards fsnotify events until the watcher is closed.
func (w *Watcher) runNotify() {
	events, errs := w.fsWatcher.Events(), w.fsWatcher.Errors()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !w.skipDir(info.Name()) {
					_ = w.fsWatcher.Add(ev.Name)
				}
			}
			w.send(Event{Name: ev.Name, Op: fromNotify(ev.Op), Time: time.Now()})
		case err, ok := <-errs:
			if !ok {
				return
			}
			w.sendError(err)
		}
	}
}

func fromNotify(op fsnotify.Op) Op {
	var out Op
	if op.Has(fsnotify.Create) {
		out |= Create
	}
	if op.Has(fsnotify.Write) {
		out |= Write
	}
	if op.Has(fsnotify.Remove) {
		out |= Remove
	}
	if op.Has(fsnotify.Rename) {
		out |= Rename
	}
	if op.Has(fsnotify.Chmod) {
		out |= Chmod
	}
	return out
}

// runPolling periodically scans the directory for changes
func (w *Watcher) runPolling() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	// Initial scan
	w.scanDirectory(true)

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.scanDirectory(false)
		}
	}
}

// scanDirectory walks the watch directory and detects changes
func (w *Watcher) scanDirectory(initial bool) {
	currentFiles := make(map[string]time.Time)
	var events []Event

	err := fs.WalkDir(w.fileSystem, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != "." && w.skipDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		filePath := filepath.Join(w.watchDir, path)
		modTime := info.ModTime()
		currentFiles[filePath] = modTime

		if initial {
			return nil
		}

		if lastModTime, exists := w.lastScan[filePath]; exists {
			if modTime.After(lastModTime) {
				events = append(events, Event{Name: filePath, Op: Write, Time: modTime})
			}
		} else {
			events = append(events, Event{Name: filePath, Op: Create, Time: modTime})
		}
		return nil
	})
	if err != nil {
		w.sendError(err)
		return
	}

	if !initial {
		for filePath := range w.lastScan {
			if _, exists := currentFiles[filePath]; !exists {
				events = append(events, Event{Name: filePath, Op: Remove, Time: time.Now()})
			}
		}
	}

	w.lastScan = currentFiles

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time.Before(events[j].Time)
	})

	for _, event := range events {
		if !w.send(event) {
			return
		}
	}
}

func (w *Watcher) send(ev Event) bool {
	select {
	case w.events <- ev:
		return true
	case <-w.done:
		return false
	}
}

func (w *Watcher) sendError(err error) {
	select {
	case w.errors <- err:
	case <-w.done:
	default:
		logrus.Debugf("dropping watch error: %v", err)
	}
}

// WatchContext watches a directory with context cancellation
func WatchContext(ctx context.Context, dir string, pollInterval time.Duration, opts ...Option) (<-chan Event, <-chan error, error) {
	watcher, err := New(pollInterval, dir, opts...)
	if err != nil {
		return nil, nil, err
	}
	return watchContext(ctx, watcher)
}

// watchContext is split from WatchContext for testing watchers.
func watchContext(ctx context.Context, watcher *Watcher) (<-chan Event, <-chan error, error) {
	if err := watcher.Watch(); err != nil {
		watcher.Close()
		return nil, nil, err
	}

	// Close watcher when context is done
	go func() {
		<-ctx.Done()
		watcher.Close()
	}()

	return watcher.Events(), watcher.Errors(), nil
}
