// Package preview implements watch mode: it rebuilds the site when the source
// tree changes and serves the output folder with live reload.
package preview

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"git.home.luguber.info/inful/sergey/internal/config"
	"git.home.luguber.info/inful/sergey/internal/foundation/errors"
	"git.home.luguber.info/inful/sergey/internal/logfields"
	"git.home.luguber.info/inful/sergey/internal/metrics"
	"git.home.luguber.info/inful/sergey/internal/site"
)

// Builder runs one build. *site.Builder implements it.
type Builder interface {
	Build(ctx context.Context) (*site.Report, error)
}

// status remembers the outcome of the most recent build.
type status struct {
	mu     sync.RWMutex
	report *site.Report
	err    error
	at     time.Time
}

func (s *status) set(report *site.Report, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report, s.err, s.at = report, err, time.Now()
}

func (s *status) get() (*site.Report, error, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report, s.err, s.at
}

// Server is a preview session.
type Server struct {
	cfg      *config.Config
	builder  Builder
	hub      *Hub
	recorder *metrics.PrometheusRecorder
	status   status
	errs     *errors.HTTPErrorAdapter
	logger   *slog.Logger
}

// New returns a Server for cfg. recorder may be nil, in which case /metrics
// is not served.
func New(cfg *config.Config, builder Builder, recorder *metrics.PrometheusRecorder, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:      cfg,
		builder:  builder,
		hub:      NewHub(logger),
		recorder: recorder,
		errs:     errors.NewHTTPErrorAdapter(logger),
		logger:   logger,
	}
}

// Handler routes the preview endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	var files http.Handler = http.FileServer(http.Dir(s.cfg.OutputDir()))
	if s.cfg.Serve.LiveReload {
		files = injectScript(files)
		mux.Handle("/livereload", s.hub)
		mux.HandleFunc("/livereload.js", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
			w.Header().Set("Cache-Control", "no-cache")
			_, _ = w.Write([]byte(Script))
		})
	}
	mux.Handle("/", noCache(files))
	if s.recorder != nil && s.cfg.Serve.Metrics {
		mux.Handle("/metrics", metrics.HTTPHandler(s.recorder.Registry()))
	}
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

type healthResponse struct {
	Status   string    `json:"status"`
	BuildID  string    `json:"build_id,omitempty"`
	Compiled int       `json:"compiled"`
	Copied   int       `json:"copied"`
	Failed   []string  `json:"failed,omitempty"`
	BuiltAt  time.Time `json:"built_at,omitzero"`
	Clients  int       `json:"live_reload_clients"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report, err, at := s.status.get()
	if err != nil {
		s.errs.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryRuntime, "last build failed").Build())
		return
	}

	resp := healthResponse{Status: "starting", BuiltAt: at, Clients: s.hub.Clients()}
	if report != nil {
		resp.Status = "ok"
		if len(report.Failed) > 0 {
			resp.Status = "degraded"
		}
		resp.BuildID = report.BuildID
		resp.Compiled = report.Compiled
		resp.Copied = report.Copied
		for _, f := range report.Failed {
			resp.Failed = append(resp.Failed, f.Path)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// rebuild runs a build, records its outcome and tells browsers to reload.
// Failed builds are logged and leave the previous output notification alone.
func (s *Server) rebuild(ctx context.Context) {
	report, err := s.builder.Build(ctx)
	s.status.set(report, err)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("Build failed", logfields.Error(err))
		}
		return
	}
	s.hub.Broadcast(report.BuildID)
}

// Run starts watching, builds once, then serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "failed to listen").
			Fatal().
			WithContext(logfields.KeyAddr, s.cfg.Addr()).
			Build()
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	w, err := newWatcher(s.cfg, s.logger)
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer func() { _ = w.close() }()

	s.rebuild(ctx)

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			serveErr <- err
			cancel()
		}
		close(serveErr)
	}()
	s.logger.Info("Sergey running", logfields.Addr("http://"+ln.Addr().String()))

	requests, trigger := debouncer(DebounceDelay)
	done := make(chan struct{})
	go func() {
		defer close(done)
		rebuildWorker(ctx, requests, func() {
			s.logger.Info("Change detected, rebuilding")
			s.rebuild(ctx)
		})
	}()

	loopErr := w.run(ctx, trigger)

	s.hub.Shutdown()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP server shutdown error", logfields.Error(err))
	}
	<-done

	if err, ok := <-serveErr; ok && err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "preview server failed").Build()
	}
	return loopErr
}
