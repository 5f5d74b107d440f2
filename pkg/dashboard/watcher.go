// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package dashboard

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the delay before a changed reports file is reloaded.
const DefaultDebounce = 500 * time.Millisecond

// ReloadCallback is told about every reload attempt. err is non-nil when the
// new file was rejected and the previous catalogue kept.
type ReloadCallback func(path string, err error)

// WatcherConfig configures a Watcher.
type WatcherConfig struct {
	Path     string
	Debounce time.Duration
	Logger   *zap.Logger
	OnReload ReloadCallback
}

// Watcher hot-reloads a reports file into a Dashboard. It watches the
// file's directory so that editors replacing the file by rename are seen.
type Watcher struct {
	dash    *Dashboard
	path    string
	watcher *fsnotify.Watcher
	config  WatcherConfig
	logger  *zap.Logger

	timerMu sync.Mutex
	timer   *time.Timer

	started  atomic.Bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher for cfg.Path.
func NewWatcher(dash *Dashboard, cfg WatcherConfig) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("watcher requires a reports file path")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", cfg.Path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{
		dash:    dash,
		path:    path,
		watcher: fw,
		config:  cfg,
		logger:  cfg.Logger,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Start begins watching. The watch loop ends when ctx is done or Stop is
// called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}
	w.logger.Info("Started reports watcher",
		zap.String("path", w.path),
		zap.Duration("debounce", w.config.Debounce))

	w.started.Store(true)
	go w.loop(ctx)
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.debounce()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-w.stopCh:
			return

		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) debounce() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.config.Debounce, w.reload)
}

func (w *Watcher) reload() {
	select {
	case <-w.stopCh:
		return
	default:
	}

	f, err := LoadFile(w.path)
	if err != nil {
		w.logger.Error("Reports file rejected, keeping previous catalogue",
			zap.String("path", w.path),
			zap.Error(err))
	} else {
		w.dash.Reload(f)
	}
	if w.config.OnReload != nil {
		w.config.OnReload(w.path, err)
	}
}

// Stop ends the watch loop and releases the file watcher.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)

		w.timerMu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.timerMu.Unlock()

		err = w.watcher.Close()
		if w.started.Load() {
			<-w.doneCh
		}
	})
	return err
}
