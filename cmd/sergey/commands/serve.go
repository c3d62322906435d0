package commands

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/sergey/internal/config"
	"git.home.luguber.info/inful/sergey/internal/metrics"
	"git.home.luguber.info/inful/sergey/internal/preview"
	"git.home.luguber.info/inful/sergey/internal/site"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	SiteFlags    `embed:""`
	NoLiveReload bool `name:"no-live-reload" help:"Do not inject the live reload script."`
	NoMetrics    bool `name:"no-metrics" help:"Do not serve /metrics."`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, logger, err := loadConfig(g, root, s.SiteFlags)
	if err != nil {
		return err
	}
	if s.NoLiveReload {
		cfg.Serve.LiveReload = false
	}
	if s.NoMetrics {
		cfg.Serve.Metrics = false
	}
	ctx, cancel := signalContext()
	defer cancel()
	return runServe(ctx, cfg, logger)
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var recorder *metrics.PrometheusRecorder
	builder := site.NewBuilder(cfg, logger)
	if cfg.Serve.Metrics {
		recorder = metrics.NewPrometheusRecorder(nil)
		builder.WithRecorder(recorder)
	}
	return preview.New(cfg, builder, recorder, logger).Run(ctx)
}
