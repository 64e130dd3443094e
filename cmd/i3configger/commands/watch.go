package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/i3configger/internal/config"
	"git.home.luguber.info/inful/i3configger/internal/daemon"
	"git.home.luguber.info/inful/i3configger/internal/logfields"
	"git.home.luguber.info/inful/i3configger/internal/messaging"
	"git.home.luguber.info/inful/i3configger/internal/metrics"
	"git.home.luguber.info/inful/i3configger/internal/watcher"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	MetricsAddr string `name:"metrics-addr" help:"Override settings.metrics_addr (e.g. 127.0.0.1:9273)"`
	NoBuild     bool   `name:"no-build" help:"Skip the initial build"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, closeLog, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()
	if w.MetricsAddr != "" {
		cfg.Settings.MetricsAddr = w.MetricsAddr
	}
	return w.run(ctx, g.Logger, cfg)
}

func (w *WatchCmd) run(ctx context.Context, logger *slog.Logger, cfg *config.Config) error {
	var opts []daemon.Option
	if addr := cfg.Settings.MetricsAddr; addr != "" {
		reg := prom.NewRegistry()
		opts = append(opts, daemon.WithRecorder(metrics.NewPrometheusRecorder(reg)))
		go func() {
			if err := metrics.Serve(ctx, addr, reg, logger); err != nil {
				logger.Error("Metrics endpoint stopped", logfields.Error(err))
			}
		}()
	}

	d, closeJournal, err := daemon.NewFromConfig(ctx, cfg, logger, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = closeJournal() }()

	if !w.NoBuild {
		if _, err := d.BuildAll(ctx, TriggerCLI); err != nil {
			logger.Warn("Initial build failed", logfields.Error(err))
		}
	}

	src, err := watcher.NewFSNotify(logger, d.WatchDirs()...)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()
	logger.Debug("Watching directories", slog.Any("dirs", src.WatchList()))

	var requests <-chan messaging.Request
	if nc := cfg.Settings.NATS; nc.Enabled() {
		l, err := messaging.Listen(nc.URL, nc.Subject, logger)
		if err != nil {
			return err
		}
		defer func() { _ = l.Close() }()
		requests = l.Requests()
	}

	logger.Info("Starting watch", slog.Int("builds", len(d.Definitions())), logfields.Path(cfg.Path))
	return d.Run(ctx, src, requests)
}
