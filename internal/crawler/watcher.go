package crawler

import (
	"context"
	"crypto/sha256"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// WatchOperation indicates the type of file operation
type WatchOperation string

const (
	OpCreate WatchOperation = "create"
	OpModify WatchOperation = "modify"
	OpDelete WatchOperation = "delete"
)

// WatchEvent is one debounced change to a model file.
type WatchEvent struct {
	Path      string
	Operation WatchOperation
}

// WatcherConfig configures the file watcher
type WatcherConfig struct {
	Root string

	// DebounceDelay is how long to wait for more changes before processing
	DebounceDelay time.Duration

	Logger *slog.Logger
}

// Watcher reports changes to model files below a root directory. Writes
// that leave the content unchanged are not reported.
type Watcher struct {
	config  WatcherConfig
	crawler *Crawler
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	hashes map[string][sha256.Size]byte
	events chan WatchEvent
}

func NewWatcher(c *Crawler, config WatcherConfig) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	config.Root = filepath.Clean(config.Root)
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.DebounceDelay == 0 {
		config.DebounceDelay = 100 * time.Millisecond
	}
	return &Watcher{
		config:  config,
		crawler: c,
		watcher: fsw,
		logger:  config.Logger,
		pending: make(map[string]fsnotify.Op),
		hashes:  make(map[string][sha256.Size]byte),
		events:  make(chan WatchEvent, 100),
	}, nil
}

// Events returns the channel of watch events. It is closed when the
// watcher stops.
func (w *Watcher) Events() <-chan WatchEvent {
	return w.events
}

// Start records the current content of every model file, adds watches and
// processes events until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	err := w.crawler.ScanProject(w.config.Root, func(p string) error {
		if sum, ok := hashFile(p); ok {
			w.hashes[p] = sum
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := w.addWatchesRecursive(w.config.Root); err != nil {
		return err
	}
	go w.processEvents(ctx)

	w.logger.Info("File watcher started",
		"root", w.config.Root,
		"debounce", w.config.DebounceDelay)
	return nil
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && w.ignoredDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			w.logger.Warn("Failed to watch directory", "path", p, "error", err)
		} else {
			w.logger.Debug("Watching directory", "path", p)
		}
		return nil
	})
}

func (w *Watcher) ignoredDir(name string) bool {
	return strings.HasPrefix(name, ".") || w.crawler.skipped(name+"/x")
}

func (w *Watcher) processEvents(ctx context.Context) {
	ticker := time.NewTicker(w.config.DebounceDelay)
	defer func() {
		ticker.Stop()
		w.watcher.Close()
		close(w.events)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)
		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

func isModelFile(p string) bool {
	ok, _ := doublestar.Match(ModelPattern, path.Base(filepath.ToSlash(p)))
	return ok
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	event.Name = filepath.Clean(event.Name)
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.ignoredDir(filepath.Base(event.Name)) {
				if err := w.watcher.Add(event.Name); err != nil {
					w.logger.Warn("Failed to watch new directory", "path", event.Name, "error", err)
				}
			}
			return
		}
	}
	if !isModelFile(event.Name) {
		return
	}
	w.pendingMu.Lock()
	w.pending[event.Name] |= event.Op
	w.pendingMu.Unlock()
	w.logger.Debug("File change detected", "path", event.Name, "op", event.Op.String())
}

func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	for p := range toProcess {
		sum, exists := hashFile(p)
		old, known := w.hashes[p]
		var op WatchOperation
		switch {
		case !exists && known:
			delete(w.hashes, p)
			op = OpDelete
		case !exists:
			continue
		case !known:
			w.hashes[p] = sum
			op = OpCreate
		case old != sum:
			w.hashes[p] = sum
			op = OpModify
		default:
			continue
		}
		select {
		case w.events <- WatchEvent{Path: p, Operation: op}:
		case <-ctx.Done():
			return
		}
	}
}

func hashFile(p string) ([sha256.Size]byte, bool) {
	data, err := os.ReadFile(p)
	if err != nil {
		return [sha256.Size]byte{}, false
	}
	return sha256.Sum256(data), true
}
