package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// WatchState calls fn with the decoded state each time the file at path
// changes, until ctx is done. The parent directory is watched so that
// atomic rename-into-place writes are seen. Unchanged states are skipped.
func WatchState(ctx context.Context, path string, fn func(State)) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	last, _ := LoadState(path)
	target := filepath.Clean(path)

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				st, err := LoadState(path)
				if err != nil {
					log.WithError(err).Warn("reloading state")
					continue
				}
				if st == last {
					continue
				}
				last = st
				fn(st)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("state watcher")
			}
		}
	}()
	return nil
}
