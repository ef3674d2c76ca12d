package indexer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/dshills/godocsearch/internal/logging"
)

// WatchConfig controls how file changes turn into rebuilds
type WatchConfig struct {
	// Debounce is how long the tree must stay quiet before a rebuild starts
	Debounce time.Duration
	// MinInterval is the minimum spacing between two rebuilds
	MinInterval time.Duration
}

// BuildFunc receives the outcome of every build the watcher runs
type BuildFunc func(stats *Statistics, err error)

// Watcher rebuilds the search index whenever Go sources under the root change
type Watcher struct {
	indexer  *Indexer
	root     string
	config   *Config
	debounce time.Duration
	limiter  *rate.Limiter
	watcher  *fsnotify.Watcher
	onBuild  BuildFunc
	logger   *slog.Logger

	mu          sync.Mutex
	lastChange  time.Time
	dirty       bool
	output      string
	tickerEvery time.Duration
}

// NewWatcher creates a watcher for rootPath. onBuild may be nil.
func NewWatcher(idx *Indexer, rootPath string, config *Config, watch WatchConfig, onBuild BuildFunc) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	limit := rate.Inf
	if watch.MinInterval > 0 {
		limit = rate.Every(watch.MinInterval)
	}

	cfg := idx.normalize(rootPath, config)
	output, err := filepath.Abs(cfg.Output)
	if err != nil {
		output = cfg.Output
	}

	tick := watch.Debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	if tick > 100*time.Millisecond {
		tick = 100 * time.Millisecond
	}

	return &Watcher{
		indexer:     idx,
		root:        rootPath,
		config:      &cfg,
		debounce:    watch.Debounce,
		limiter:     rate.NewLimiter(limit, 1),
		watcher:     fsw,
		onBuild:     onBuild,
		logger:      logging.WithComponent("watcher"),
		output:      output,
		tickerEvery: tick,
	}, nil
}

// Run performs an initial build and then rebuilds on change until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	if err := w.addRecursive(w.root); err != nil {
		return err
	}

	w.rebuild(ctx)

	ticker := time.NewTicker(w.tickerEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-ticker.C:
			if w.due(time.Now()) {
				w.rebuild(ctx)
			}
		}
	}
}

// Close stops watching and releases resources
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// addRecursive adds a directory and all its subdirectories to the watch list
func (w *Watcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if path != dir && skipDir(info.Name(), w.config) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Debug("cannot watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !skipDir(info.Name(), w.config) {
				_ = w.addRecursive(event.Name)
				w.markDirty()
			}
			return
		}
	}

	if !w.relevant(event) {
		return
	}
	w.logger.Debug("source changed", "path", event.Name, "op", event.Op.String())
	w.markDirty()
}

// relevant reports whether an event should trigger a rebuild
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if abs, err := filepath.Abs(event.Name); err == nil && abs == w.output {
		return false
	}
	name := filepath.Base(event.Name)
	if !strings.HasSuffix(name, ".go") && name != "go.mod" {
		return false
	}
	if !w.config.IncludeTests && strings.HasSuffix(name, "_test.go") {
		return false
	}
	return true
}

func (w *Watcher) markDirty() {
	w.mu.Lock()
	w.dirty = true
	w.lastChange = time.Now()
	w.mu.Unlock()
}

// due reports whether pending changes have been quiet for the debounce period
func (w *Watcher) due(now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.dirty || now.Sub(w.lastChange) < w.debounce {
		return false
	}
	w.dirty = false
	return true
}

func (w *Watcher) rebuild(ctx context.Context) {
	if err := w.limiter.Wait(ctx); err != nil {
		return
	}

	stats, err := w.indexer.Build(ctx, w.root, w.config)
	switch {
	case errors.Is(err, ErrBuildInProgress):
		// Another caller holds the lock; retry on the next quiet period
		w.markDirty()
		return
	case err != nil:
		w.logger.Error("rebuild failed", "error", err)
	default:
		w.logger.Info("rebuilt search index", "entries", stats.Entries, "duration", stats.Duration)
	}

	if w.onBuild != nil {
		w.onBuild(stats, err)
	}
}

// skipDir matches the directories the go tool ignores, plus vendor unless included
func skipDir(name string, config *Config) bool {
	if !config.IncludeVendor && name == "vendor" {
		return true
	}
	return name == "testdata" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}
