package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/konveyor/makerun/pkg/util"
)

// Watcher reports changes to a single build file
type Watcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// New starts watching buildFile. Its parent directory is watched rather than
// the file itself so that editors that replace the file on save are seen.
func New(buildFile string, debounce time.Duration) (*Watcher, error) {
	absPath, err := filepath.Abs(buildFile)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve build file path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(absPath)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	return &Watcher{
		path:     absPath,
		debounce: debounce,
		watcher:  watcher,
	}, nil
}

// Run calls onChange once per burst of changes to the build file, until ctx
// is done or the watcher is closed. onChange runs on the caller's goroutine.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	log := util.GetLogger()
	name := filepath.Base(w.path)

	log.Info("Watching build file", "file", w.path)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				if event.Has(fsnotify.Remove) {
					log.Info("Build file removed", "file", event.Name)
				}
				continue
			}

			log.V(1).Info("Build file change detected", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Error(err, "Build file watcher error")
		}
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
