// Package watcher re-triggers ingestion when documents appear under the source tree.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/phuslu/log"

	"github.com/mrlokans/docshelf/internal/entities"
)

const defaultDebounce = 2 * time.Second

type Options struct {
	Root       string
	Extensions []string      // Extensions that trigger a run; case and leading dot are ignored
	Debounce   time.Duration // Quiet period that coalesces bursts of events
	Ignore     []string      // Directories never watched, such as the output root
}

// ChangeFunc receives the paths that changed since the previous call, sorted.
type ChangeFunc func(ctx context.Context, paths []string)

type Watcher struct {
	opts    Options
	allowed map[string]bool
	ignore  map[string]bool
	logger  *log.Logger
	ready   chan struct{}
}

func New(opts Options, logger *log.Logger) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	allowed := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		allowed[entities.NormalizeExtension(ext)] = true
	}
	ignore := make(map[string]bool, len(opts.Ignore))
	for _, dir := range opts.Ignore {
		if abs, err := filepath.Abs(dir); err == nil {
			ignore[abs] = true
		}
	}
	return &Watcher{
		opts:    opts,
		allowed: allowed,
		ignore:  ignore,
		logger:  logger,
		ready:   make(chan struct{}),
	}
}

// Ready is closed once every directory under the root is being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches the tree until ctx is done. onChange is called from the watch
// loop, so events arriving while it runs are coalesced into the next call.
func (w *Watcher) Run(ctx context.Context, onChange ChangeFunc) error {
	root, err := filepath.Abs(w.opts.Root)
	if err != nil {
		return fmt.Errorf("invalid watch root: %w", err)
	}
	if info, err := os.Stat(root); err != nil {
		return fmt.Errorf("cannot watch %s: %w", root, err)
	} else if !info.IsDir() {
		return fmt.Errorf("cannot watch %s: not a directory", root)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	close(w.ready)
	w.logger.Info().Str("root", root).Dur("debounce", w.opts.Debounce).Msg("watching for new documents")

	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()
	pending := map[string]bool{}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if err := w.addTree(fw, event.Name); err != nil {
					w.logger.Warn().Str("path", event.Name).Err(err).Msg("failed to watch new directory")
				}
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !w.interesting(event.Name) {
				continue
			}
			pending[event.Name] = true
			timer.Reset(w.opts.Debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("watcher error")

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for path := range pending {
				paths = append(paths, path)
			}
			sort.Strings(paths)
			pending = map[string]bool{}

			w.logger.Debug().Int("paths", len(paths)).Msg("change batch ready")
			onChange(ctx, paths)
		}
	}
}

func (w *Watcher) interesting(path string) bool {
	if w.isIgnored(path) {
		return false
	}
	return w.allowed[entities.NormalizeExtension(filepath.Ext(path))]
}

func (w *Watcher) isIgnored(path string) bool {
	for dir := range w.ignore {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// addTree watches path and every directory below it. Non-directories are ignored.
func (w *Watcher) addTree(fw *fsnotify.Watcher, path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == path {
				// The entry vanished or is unreadable; nothing to watch.
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.isIgnored(p) {
			return filepath.SkipDir
		}
		return fw.Add(p)
	})
}
