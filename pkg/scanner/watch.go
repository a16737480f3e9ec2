package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/compatguard/cli/pkg/debuglog"
	"github.com/compatguard/cli/pkg/fswatch"
	"github.com/compatguard/cli/pkg/linter"
)

const (
	debounce     = 300 * time.Millisecond
	pollInterval = 2 * time.Second
)

// Watch runs an initial scan of root, then rescans whenever a supported file
// changes. Bursts of events within 300ms trigger a single rescan. Watch
// returns when ctx is cancelled.
func (s *Scanner) Watch(ctx context.Context, root string, opts Options, fn func(*Result, error)) error {
	fn(s.Scan(ctx, root, opts))

	dir := root
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		dir = filepath.Dir(root)
	}

	events, errs, err := fswatch.WatchContext(ctx, dir, pollInterval, fswatch.WithSkipDir(skipDir))
	if err != nil {
		return err
	}

	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !relevant(root, ev.Name, opts.Exclude) {
				continue
			}
			debuglog.Log("change detected: %s", ev.Name)
			timer.Reset(debounce)
		case err := <-errs:
			logrus.Warnf("watch error: %v", err)
		case <-timer.C:
			res, err := s.Scan(ctx, root, opts)
			if errors.Is(err, ErrScanInProgress) {
				timer.Reset(debounce)
				continue
			}
			fn(res, err)
		}
	}
}

func relevant(root, name string, exclude []string) bool {
	ft, ok := linter.FileTypeFromPath(name)
	if !ok || ft == linter.FileTypeGeneric {
		return false
	}
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		return filepath.Clean(name) == filepath.Clean(root)
	}
	rel, err := filepath.Rel(root, name)
	if err != nil {
		return true
	}
	return !excluded(filepath.ToSlash(rel), exclude)
}
