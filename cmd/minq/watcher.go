package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watcher re-runs a script whenever its file is saved.
type watcher struct {
	fs       *fsnotify.Watcher
	path     string
	debounce time.Duration
	stdout   io.Writer
	stderr   io.Writer
}

// newWatcher watches the directory holding path, so editors that replace
// the file on save are still seen.
func newWatcher(path string, debounce time.Duration, stdout, stderr io.Writer) (*watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(filepath.Dir(abs)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	return &watcher{
		fs:       fsWatcher,
		path:     abs,
		debounce: debounce,
		stdout:   stdout,
		stderr:   stderr,
	}, nil
}

// Run calls runOnce, then again after each change to the file, until ctx
// is done. A run still in progress when the file changes has its context
// cancelled first.
func (w *watcher) Run(ctx context.Context, runOnce func(context.Context) error) error {
	w.logInfo("watching %s", w.path)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- runOnce(runCtx) }()

		restart := false
		for !restart {
			select {
			case <-ctx.Done():
				cancel()
				if done != nil {
					<-done
				}
				return nil

			case err := <-done:
				w.finished(err)
				done = nil

			case event, ok := <-w.fs.Events:
				if !ok {
					cancel()
					return nil
				}
				if !w.relevant(event) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(w.debounce)
				} else {
					timer.Reset(w.debounce)
				}
				fire = timer.C

			case <-fire:
				fire = nil
				w.logInfo("%s changed, re-running", filepath.Base(w.path))
				restart = true

			case err, ok := <-w.fs.Errors:
				if !ok {
					cancel()
					return nil
				}
				w.logError("watcher error: %v", err)
			}
		}

		cancel()
		if done != nil {
			w.finished(<-done)
		}
	}
}

func (w *watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func (w *watcher) finished(err error) {
	if err != nil {
		if status := exitStatus(err, w.stderr); status != 0 {
			w.logInfo("exited with status %d", status)
		}
	}
	w.logInfo("waiting for changes")
}

// Close stops the watcher
func (w *watcher) Close() error {
	return w.fs.Close()
}

func (w *watcher) logInfo(format string, args ...any) {
	fmt.Fprintf(w.stdout, "[minq] "+format+"\n", args...)
}

func (w *watcher) logError(format string, args ...any) {
	fmt.Fprintf(w.stderr, "[minq error] "+format+"\n", args...)
}
