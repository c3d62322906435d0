// Package site runs a full build: it loads the partials, compiles every HTML
// file of the source tree into the output folder and copies everything else.
package site

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sergey/internal/compiler"
	"git.home.luguber.info/inful/sergey/internal/config"
	"git.home.luguber.info/inful/sergey/internal/foundation/errors"
	"git.home.luguber.info/inful/sergey/internal/logfields"
	"git.home.luguber.info/inful/sergey/internal/markdown"
	"git.home.luguber.info/inful/sergey/internal/metrics"
	"git.home.luguber.info/inful/sergey/internal/partials"
)

// Builder builds the site described by a configuration. Each call to Build is
// independent and starts from a fresh partial cache.
type Builder struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder metrics.Recorder
}

// NewBuilder returns a Builder for cfg. A nil logger means slog.Default().
func NewBuilder(cfg *config.Config, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{cfg: cfg, logger: logger, recorder: metrics.NoopRecorder{}}
}

// WithRecorder sets the metrics recorder.
func (b *Builder) WithRecorder(r metrics.Recorder) *Builder {
	if r != nil {
		b.recorder = r
	}
	return b
}

type job struct {
	rel  string // slash separated, relative to root
	src  string
	dest string
	html bool
}

// Build clears the output folder and regenerates it. Files that fail are
// collected in the report and do not stop the run; the returned error is
// reserved for problems that prevent the build as a whole.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{BuildID: uuid.NewString()}
	logger := b.logger.With(logfields.BuildID(report.BuildID))

	report, err := b.build(ctx, report, logger)
	if err != nil {
		b.recorder.IncBuildOutcome(metrics.OutcomeFailed)
		return nil, err
	}
	report.Duration = time.Since(start)

	b.recorder.ObserveBuildDuration(report.Duration)
	b.recorder.IncBuildOutcome(report.Outcome())
	b.recorder.AddMissingPartials(report.MissingPartials)
	b.recorder.SetPartials(report.Partials)

	logger.Info("Compiled",
		logfields.DurationMS(float64(report.Duration.Microseconds())/1000),
		logfields.Compiled(report.Compiled),
		logfields.Copied(report.Copied),
		logfields.Failed(len(report.Failed)))
	return report, nil
}

func (b *Builder) build(ctx context.Context, report *Report, logger *slog.Logger) (*Report, error) {
	root, out, err := b.paths()
	if err != nil {
		return nil, err
	}

	excluder, err := NewExcluder(root, b.cfg.Exclude, relTo(root, b.cfg.ImportsDir()), relTo(root, b.cfg.ContentDir()), relTo(root, out))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read .gitignore").
			Fatal().
			WithContext(logfields.KeyPath, root).
			Build()
	}

	loader := &partials.Loader{
		ImportsDir:  b.cfg.ImportsDir(),
		ContentDir:  b.cfg.ContentDir(),
		Skip:        excluder.SkipName,
		Concurrency: b.cfg.Concurrency,
		Logger:      logger,
	}
	cache, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	report.Partials = cache.Len(partials.Imports)
	if !cache.Shared() {
		report.Partials += cache.Len(partials.Content)
	}

	if err := clearDir(out); err != nil {
		return nil, err
	}

	jobs, skipped, err := collect(root, out, excluder)
	if err != nil {
		return nil, err
	}
	for _, f := range skipped {
		logger.Warn("Skipping symlinked folder", logfields.File(f.Path))
	}
	report.Failed = append(report.Failed, skipped...)

	c := compiler.New(cache, compiler.Options{
		ActiveClass: b.cfg.ActiveClass,
		MaxDepth:    b.cfg.MaxDepth,
		Markdown:    markdown.New(markdown.Options{HardWraps: b.cfg.Markdown.HardWraps, XHTML: b.cfg.Markdown.XHTML}),
		Logger:      logger,
	})

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	limit := b.cfg.Concurrency
	if limit < 1 {
		limit = runtime.NumCPU()
	}
	g.SetLimit(limit)
	for _, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			kind := metrics.FileCopied
			if j.html {
				kind = metrics.FileCompiled
			}
			started := time.Now()
			err := b.process(c, j)
			b.recorder.ObserveFileDuration(kind, time.Since(started))

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				b.recorder.IncFileResult(kind, metrics.ResultFailed)
				report.Failed = append(report.Failed, FileError{Path: j.rel, Err: err})
				logger.Error("Failed to build file", logfields.File(j.rel), logfields.Error(err))
				return nil
			}
			b.recorder.IncFileResult(kind, metrics.ResultSuccess)
			if j.html {
				report.Compiled++
			} else {
				report.Copied++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(report.Failed, func(i, k int) bool { return report.Failed[i].Path < report.Failed[k].Path })
	report.MissingPartials = c.MissingPartials()
	return report, nil
}

// paths resolves root and output and refuses an output folder that is the
// root itself or lies outside of it, since it is deleted on every run.
func (b *Builder) paths() (string, string, error) {
	root, err := filepath.Abs(b.cfg.Root)
	if err != nil {
		return "", "", errors.WrapError(err, errors.CategoryConfig, "invalid root").Fatal().Build()
	}
	out, err := filepath.Abs(b.cfg.OutputDir())
	if err != nil {
		return "", "", errors.WrapError(err, errors.CategoryConfig, "invalid output folder").Fatal().Build()
	}
	rel, err := filepath.Rel(root, out)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", errors.ConfigError("output folder must be inside the root and not the root itself").
			Fatal().
			WithContext("root", root).
			WithContext("output", out).
			Build()
	}
	return root, out, nil
}

func relTo(root, p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return p
	}
	return rel
}

func clearDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to clear output folder").
			Fatal().
			WithContext(logfields.KeyPath, dir).
			Build()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create output folder").
			Fatal().
			WithContext(logfields.KeyPath, dir).
			Build()
	}
	return nil
}

// errSymlinkDir marks a symlink to a folder; the walk does not follow them.
var errSymlinkDir = errors.FileSystemError("symlinked folders are not followed").Warning().Build()

func collect(root, out string, excluder *Excluder) ([]job, []FileError, error) {
	var (
		jobs    []job
		skipped []FileError
	)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		slashRel := filepath.ToSlash(rel)

		isDir := d.IsDir()
		if d.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(p)
			if err != nil {
				return nil
			}
			isDir = info.IsDir()
		}
		if excluder.Excluded(slashRel, isDir) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if isDir {
			if !d.IsDir() {
				skipped = append(skipped, FileError{Path: slashRel, Err: errSymlinkDir})
			}
			return nil
		}
		jobs = append(jobs, job{
			rel:  slashRel,
			src:  p,
			dest: filepath.Join(out, rel),
			html: strings.HasSuffix(d.Name(), partials.HTMLExt),
		})
		return nil
	})
	if err != nil {
		return nil, nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to walk source tree").
			Fatal().
			WithContext(logfields.KeyPath, root).
			Build()
	}
	return jobs, skipped, nil
}

func (b *Builder) process(c *compiler.Compiler, j job) error {
	if err := os.MkdirAll(filepath.Dir(j.dest), 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create folder").Build()
	}
	if !j.html {
		return copyFile(j.src, j.dest)
	}

	data, err := os.ReadFile(j.src)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to read file").Build()
	}
	body, err := c.CompileTemplate(string(data))
	if err != nil {
		return err
	}
	body, err = c.CompileLinks(body, "/"+j.rel)
	if err != nil {
		return err
	}
	if err := os.WriteFile(j.dest, []byte(body), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write file").Build()
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to open file").Build()
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to stat file").Build()
	}
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create file").Build()
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to copy file").Build()
	}
	if err := out.Close(); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to close file").Build()
	}
	return nil
}
