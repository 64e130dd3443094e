package daemon

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/i3configger/internal/build"
	"git.home.luguber.info/inful/i3configger/internal/config"
	"git.home.luguber.info/inful/i3configger/internal/ipc"
	"git.home.luguber.info/inful/i3configger/internal/journal"
	"git.home.luguber.info/inful/i3configger/internal/retry"
	"git.home.luguber.info/inful/i3configger/internal/state"
)

// NewFromConfig assembles a daemon from cfg. opts are applied after the
// configured collaborators. The returned function closes the journal.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Daemon, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	defs, err := build.NewDefinitions(cfg.Builds, build.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	store := state.NewStore(cfg.Settings.State, state.NewProtocol(),
		state.WithReservedKeys(cfg.Settings.ReservedKeys...),
		state.WithLogger(logger))
	j, err := journal.Open(ctx, cfg.Settings.Journal)
	if err != nil {
		return nil, nil, err
	}
	notifier := ipc.NewNotifier(cfg.Settings.NotifyEnabled(), nil)
	base := []Option{
		WithLogger(logger),
		WithNotifier(notifier),
		WithRefresher(ipc.NewRefresher(cfg.Settings.Refresh, nil, notifier, logger,
			ipc.WithRetry(retry.FromSettings(cfg.Settings.RefreshRetry), nil))),
		WithJournal(j),
		WithMaxErrors(cfg.Settings.MaxErrors),
		WithRebuildInterval(cfg.Settings.RebuildInterval),
	}
	return New(defs, store, append(base, opts...)...), j.Close, nil
}
