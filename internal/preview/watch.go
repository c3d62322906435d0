package preview

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/sergey/internal/config"
	"git.home.luguber.info/inful/sergey/internal/foundation/errors"
	"git.home.luguber.info/inful/sergey/internal/logfields"
)

// DebounceDelay is the quiet period after the last change before a rebuild.
var DebounceDelay = 300 * time.Millisecond

// debouncer returns a channel that receives one value per burst of trigger
// calls. The channel holds at most one pending request.
func debouncer(delay time.Duration) (<-chan struct{}, func()) {
	requests := make(chan struct{}, 1)
	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, func() {
			select {
			case requests <- struct{}{}:
			default:
			}
		})
	}
	return requests, trigger
}

// rebuildWorker calls build for each request until ctx is done. Requests that
// arrive while a build runs collapse into a single follow-up build.
func rebuildWorker(ctx context.Context, requests <-chan struct{}, build func()) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-requests:
			build()
		}
	}
}

type watcher struct {
	fs     *fsnotify.Watcher
	out    string
	logger *slog.Logger
}

func newWatcher(cfg *config.Config, logger *slog.Logger) (*watcher, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid root").Build()
	}
	out, err := filepath.Abs(cfg.OutputDir())
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid output folder").Build()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to create file watcher").Build()
	}
	w := &watcher{fs: fw, out: out, logger: logger}
	w.addRecursive(root)
	return w, nil
}

func (w *watcher) close() error { return w.fs.Close() }

func (w *watcher) addRecursive(dir string) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if w.ignored(p) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(p); err != nil {
			w.logger.Warn("Failed to watch folder", logfields.Path(p), logfields.Error(err))
		}
		return nil
	})
}

// run forwards relevant events to trigger until ctx is done.
func (w *watcher) run(ctx context.Context, trigger func()) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.ignored(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					w.addRecursive(ev.Name)
				}
			}
			w.logger.Debug("File change detected", logfields.Path(ev.Name), logfields.Event(ev.Op.String()))
			trigger()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// ignored filters the output folder, VCS and dependency folders and editor
// temp files.
func (w *watcher) ignored(p string) bool {
	if p == w.out || strings.HasPrefix(p, w.out+string(filepath.Separator)) {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(p), "/") {
		if part == ".git" || part == "node_modules" {
			return true
		}
	}
	base := filepath.Base(p)
	return strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, ".#") ||
		(strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#")) ||
		base == ".DS_Store"
}
