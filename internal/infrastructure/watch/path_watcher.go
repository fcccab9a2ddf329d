// Package watch invalidates availability records when PATH directories change.
package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/bolens/ps-profile/internal/ports"
)

// ErrNothingToWatch is returned when no PATH directory could be watched.
var ErrNothingToWatch = errors.New("no PATH directories to watch")

const invalidatingOps = fsnotify.Create | fsnotify.Remove | fsnotify.Rename | fsnotify.Chmod

// PathWatcher clears a command's cached availability when an executable with
// that name appears in, or disappears from, a watched directory.
type PathWatcher struct {
	cache   ports.AvailabilityCache
	logger  ports.Logger
	dirs    []string
	pathExt []string
	notify  func(command string)
}

// NewPathWatcher watches the directories of pathList (a PATH-style value).
func NewPathWatcher(cache ports.AvailabilityCache, logger ports.Logger, pathList string) *PathWatcher {
	w := &PathWatcher{cache: cache, logger: logger, dirs: uniqueDirs(pathList)}
	if runtime.GOOS == "windows" {
		for _, ext := range strings.Split(strings.ToLower(os.Getenv("PATHEXT")), ";") {
			if ext != "" {
				w.pathExt = append(w.pathExt, ext)
			}
		}
	}
	return w
}

// OnInvalidate registers fn to run, on the watch goroutine, after each
// cleared command.
func (w *PathWatcher) OnInvalidate(fn func(command string)) {
	w.notify = fn
}

// Dirs lists the candidate directories.
func (w *PathWatcher) Dirs() []string {
	return append([]string(nil), w.dirs...)
}

// Run watches until ctx is cancelled.
func (w *PathWatcher) Run(ctx context.Context) error {
	done, err := w.Start(ctx)
	if err != nil {
		return err
	}
	return <-done
}

// Start registers the watches and processes events in the background. The
// returned channel yields the loop's result once ctx is cancelled and the
// underlying watcher is closed.
func (w *PathWatcher) Start(ctx context.Context) (<-chan error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	watched := 0
	for _, dir := range w.dirs {
		if err := watcher.Add(dir); err != nil {
			w.logger.Debug("skipping PATH entry", map[string]interface{}{"dir": dir, "reason": err.Error()})
			continue
		}
		watched++
	}
	if watched == 0 {
		_ = watcher.Close()
		return nil, ErrNothingToWatch
	}
	w.logger.Info("watching PATH", map[string]interface{}{"dirs": watched})

	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- w.loop(ctx, watcher)
	}()
	return done, nil
}

func (w *PathWatcher) loop(ctx context.Context, watcher *fsnotify.Watcher) error {
	defer watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("PATH watch error", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (w *PathWatcher) handle(event fsnotify.Event) {
	if event.Op&invalidatingOps == 0 {
		return
	}
	name := w.commandName(event.Name)
	if name == "" {
		return
	}
	w.cache.Clear(name)
	w.logger.Debug("availability invalidated", map[string]interface{}{
		"command": name,
		"op":      event.Op.String(),
	})
	if w.notify != nil {
		w.notify(name)
	}
}

func (w *PathWatcher) commandName(path string) string {
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(base))
	for _, known := range w.pathExt {
		if ext == known {
			return strings.TrimSuffix(base, filepath.Ext(base))
		}
	}
	return base
}

func uniqueDirs(pathList string) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, dir := range filepath.SplitList(pathList) {
		if dir == "" {
			continue
		}
		dir = filepath.Clean(dir)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	return dirs
}
