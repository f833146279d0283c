// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 250 * time.Millisecond

// ChangeHandler receives the dataset files that changed during one
// debounce window, in first-seen order.
type ChangeHandler func(paths []string)

// Watcher reports changes to a dataset's files.
//
// # Description
//
// Editors usually replace files (write to a temp file, then rename), which
// drops a watch placed on the file itself. Watcher therefore watches the
// parent directories and filters events down to the dataset files.
// Changes are batched until the debounce window passes with no new events.
//
// # Thread Safety
//
// Safe for concurrent use. The handler is called from a single goroutine.
type Watcher struct {
	files    map[string]struct{}
	watcher  *fsnotify.Watcher
	handler  ChangeHandler
	debounce time.Duration
	logger   *slog.Logger

	changes  chan string
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewWatcher creates a watcher for the files of src.
//
// # Example
//
//	w, err := dataset.NewWatcher(src, 500*time.Millisecond, func(paths []string) {
//	    svc.Reload(ctx)
//	}, logger)
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//	if err := w.Start(ctx); err != nil {
//	    return err
//	}
func NewWatcher(src Source, debounce time.Duration, handler ChangeHandler, logger *slog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	files := make(map[string]struct{})
	for _, p := range src.Paths() {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		files[abs] = struct{}{}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		files:    files,
		watcher:  fw,
		handler:  handler,
		debounce: debounce,
		logger:   logger,
		changes:  make(chan string, 64),
		done:     make(chan struct{}),
	}, nil
}

// Start watches the parent directory of every dataset file and returns.
// Watching stops when ctx is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	dirs := make([]string, 0, len(w.files))
	for f := range w.files {
		dir := filepath.Dir(f)
		if !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	for _, dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	w.wg.Add(2)
	go w.processEvents(ctx)
	go w.debounceLoop(ctx)
	return nil
}

// Stop stops watching and waits for the background goroutines to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.watcher.Close()
	})
	w.wg.Wait()
}

// processEvents forwards events for dataset files to the debouncer.
func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if _, ok := w.files[abs]; !ok {
				continue
			}
			select {
			case w.changes <- abs:
			default:
				// Buffer full: a pending batch will trigger the reload anyway.
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("dataset watcher error", slog.String("error", err.Error()))
		}
	}
}

// debounceLoop batches changed paths and calls the handler once the
// window passes quietly.
func (w *Watcher) debounceLoop(ctx context.Context) {
	defer w.wg.Done()

	var batch []string
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(batch) > 0 && w.handler != nil {
			w.handler(batch)
		}
		batch = nil
		if timer != nil {
			timer.Stop()
			timer, timerC = nil, nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case path := <-w.changes:
			if !slices.Contains(batch, path) {
				batch = append(batch, path)
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			flush()
		}
	}
}
