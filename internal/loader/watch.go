package loader

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceInterval coalesces save bursts (editors often write a file
// several times per save) into one reload.
const debounceInterval = 250 * time.Millisecond

// watchedExtensions are the snapshot file types that trigger a reload.
var watchedExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
	".json": true,
}

// Watch observes a snapshot directory and invokes onChange after each
// debounced burst of writes to snapshot files. It blocks until the
// context is cancelled.
func Watch(ctx context.Context, dir string, logger *slog.Logger, onChange func()) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}
	logger.Debug("watching snapshot directory", "dir", dir)

	var timer *time.Timer
	pending := make(chan struct{}, 1)
	schedule := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounceInterval, func() {
			select {
			case pending <- struct{}{}:
			default:
			}
		})
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-pending:
			onChange()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !watchedExtensions[filepath.Ext(event.Name)] {
				continue
			}
			logger.Debug("snapshot file changed", "file", event.Name)
			schedule()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}
