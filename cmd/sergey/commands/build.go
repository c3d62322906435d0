package commands

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/sergey/internal/config"
	"git.home.luguber.info/inful/sergey/internal/logfields"
	"git.home.luguber.info/inful/sergey/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	SiteFlags `embed:""`
	Watch     bool `short:"w" help:"Keep running: rebuild on changes and serve the output."`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, logger, err := loadConfig(g, root, b.SiteFlags)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	if b.Watch {
		return runServe(ctx, cfg, logger)
	}
	_, err = RunBuild(ctx, cfg, logger)
	return err
}

// RunBuild builds the site once. Failed files are logged and reported but do
// not make the build fail.
func RunBuild(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*site.Report, error) {
	report, err := site.NewBuilder(cfg, logger).Build(ctx)
	if err != nil {
		return nil, err
	}
	if n := len(report.Failed); n > 0 {
		logger.Warn("Some files could not be built", logfields.Failed(n), logfields.BuildID(report.BuildID))
	}
	return report, nil
}
