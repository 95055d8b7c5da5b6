package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
	"github.com/custodia-labs/sercha-harvest/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-harvest/internal/logger"
)

// DefaultDebounce coalesces bursts of writes to an input file.
const DefaultDebounce = 500 * time.Millisecond

// Ensure Watcher implements the interface.
var _ driving.Watcher = (*Watcher)(nil)

// Watcher re-runs tabular runs when their input files change.
type Watcher struct {
	driver   driving.PipelineDriver
	debounce time.Duration
}

// NewWatcher creates a watcher that triggers runs through driver.
func NewWatcher(driver driving.PipelineDriver, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{driver: driver, debounce: debounce}
}

// Watch blocks until ctx is cancelled. Runs without an input file are ignored.
//
//nolint:gocognit // Event loop multiplexing watcher events and debounce timer
func (w *Watcher) Watch(ctx context.Context, cfgs []domain.RunConfig, onResult func(*domain.BatchResult, error)) error {
	byPath := make(map[string][]domain.RunConfig)
	for _, cfg := range cfgs {
		if !cfg.DocType.IsTabular() || cfg.InputFile == "" {
			continue
		}
		abs, err := filepath.Abs(cfg.InputFile)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", cfg.InputFile, err)
		}
		byPath[abs] = append(byPath[abs], cfg)
	}
	if len(byPath) == 0 {
		return fmt.Errorf("%w: no runs with input files to watch", domain.ErrInvalidInput)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	// Watch directories so files replaced by rename are still seen.
	dirs := make(map[string]bool)
	for path := range byPath {
		dir := filepath.Dir(path)
		if dirs[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		dirs[dir] = true
		logger.Info("Watching %s", dir)
	}

	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			path := filepath.Clean(ev.Name)
			if _, ok := byPath[path]; !ok {
				continue
			}
			logger.Debug("Change detected: %s (%s)", path, ev.Op)
			pending[path] = true
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for path := range pending {
				paths = append(paths, path)
			}
			sort.Strings(paths)
			clear(pending)

			for _, path := range paths {
				for _, cfg := range byPath[path] {
					result, err := w.driver.Run(ctx, cfg)
					if onResult != nil {
						onResult(result, err)
					}
				}
			}
		}
	}
}
