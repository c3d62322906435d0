package partials

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sergey/internal/foundation/errors"
	"git.home.luguber.info/inful/sergey/internal/logfields"
)

// Loader reads the imports and content directories into a Cache.
type Loader struct {
	ImportsDir string
	ContentDir string
	// Skip, when set, excludes entries by base name (directories are not descended).
	Skip        func(name string) bool
	Concurrency int
	Logger      *slog.Logger
}

type partialFile struct {
	ns   Namespace
	key  string
	path string
	body string
}

// Load builds a fresh Cache. A missing imports directory is fatal; a missing
// content directory only leaves the content namespace empty.
func (l *Loader) Load(ctx context.Context) (*Cache, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	info, err := os.Stat(l.ImportsDir)
	if err != nil || !info.IsDir() {
		if err == nil {
			err = fs.ErrNotExist
		}
		return nil, errors.WrapError(err, errors.CategoryNotFound, "imports directory not found").
			Fatal().
			WithContext(logfields.KeyPath, l.ImportsDir).
			Build()
	}

	shared := filepath.Clean(l.ImportsDir) == filepath.Clean(l.ContentDir)
	files, err := l.list(Imports, l.ImportsDir)
	if err != nil {
		return nil, err
	}
	if !shared {
		if info, statErr := os.Stat(l.ContentDir); statErr == nil && info.IsDir() {
			content, err := l.list(Content, l.ContentDir)
			if err != nil {
				return nil, err
			}
			files = append(files, content...)
		} else {
			logger.Debug("Content directory not found, markdown imports will be empty", logfields.Path(l.ContentDir))
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	limit := l.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	g.SetLimit(limit)
	for i := range files {
		f := &files[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(f.path)
			if err != nil {
				return errors.WrapError(err, errors.CategoryFileSystem, "failed to read partial").
					Fatal().
					WithContext(logfields.KeyPath, f.path).
					Build()
			}
			f.body = string(data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b := NewBuilder(shared)
	for _, f := range files {
		b.Prime(f.ns, f.key, f.body)
	}
	cache := b.Build()
	logger.Debug("Loaded partials",
		logfields.Partials(cache.Len(Imports)),
		slog.Int("content", cache.Len(Content)),
		slog.Bool("shared", shared))
	return cache, nil
}

func (l *Loader) list(ns Namespace, dir string) ([]partialFile, error) {
	var files []partialFile
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != dir && l.Skip != nil && l.Skip(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		files = append(files, partialFile{ns: ns, key: filepath.ToSlash(rel), path: p})
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to list partials").
			Fatal().
			WithContext(logfields.KeyNamespace, string(ns)).
			WithContext(logfields.KeyPath, dir).
			Build()
	}
	return files, nil
}
