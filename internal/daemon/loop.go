package daemon

import (
	"context"
	"log/slog"

	ferrors "git.home.luguber.info/inful/i3configger/internal/foundation/errors"
	"git.home.luguber.info/inful/i3configger/internal/logfields"
	"git.home.luguber.info/inful/i3configger/internal/messaging"
	"git.home.luguber.info/inful/i3configger/internal/watcher"
)

// Run consumes events from source and commands from requests (which may be nil)
// until ctx is done or the error budget is spent. Everything runs on the calling
// goroutine, so no two builds overlap.
func (d *Daemon) Run(ctx context.Context, source watcher.Source, requests <-chan messaging.Request) error {
	ticks := make(chan struct{}, 1)
	if d.rebuildInterval > 0 {
		sched, err := NewScheduler(d.clock, d.logger)
		if err != nil {
			return err
		}
		if _, err := sched.ScheduleEvery("periodic-rebuild", d.rebuildInterval, func() {
			select {
			case ticks <- struct{}{}:
			default:
			}
		}); err != nil {
			return err
		}
		sched.Start()
		defer func() { _ = sched.Stop(context.Background()) }()
	}

	d.logger.Info("Watching for changes",
		slog.Int("max_errors", d.maxErrors),
		logfields.Path(d.store.Path()))
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Stopped watching")
			return nil
		case ev, ok := <-source.Events():
			if !ok {
				return ferrors.DaemonError("event source closed").Build()
			}
			if err := d.countError(d.ProcessEvent(ctx, ev)); err != nil {
				return err
			}
		case err, ok := <-source.Errors():
			if !ok {
				return ferrors.DaemonError("event source closed").Build()
			}
			if err := d.countError(err); err != nil {
				return err
			}
		case req, ok := <-requests:
			if !ok {
				requests = nil
				continue
			}
			_, err := d.HandleMessage(ctx, req.Tokens)
			req.Respond(err)
		case <-ticks:
			_, err := d.BuildAll(ctx, TriggerSchedule)
			if err := d.countError(err); err != nil {
				return err
			}
		}
	}
}

// countError records err against the budget and returns a fatal error once
// the budget is spent.
func (d *Daemon) countError(err error) error {
	if err == nil {
		return nil
	}
	d.errCount++
	d.recorder.SetErrorCount(d.errCount)
	d.logger.Error("Error while watching",
		logfields.Error(err),
		logfields.ErrorCount(d.errCount))
	if d.errCount < d.maxErrors {
		return nil
	}
	return ferrors.WrapError(ErrGivingUp, ferrors.CategoryDaemon, "giving up").
		Fatal().
		WithContext("errors", d.errCount).
		WithContext("last_error", err.Error()).
		Build()
}

// ErrorCount returns the number of errors counted so far.
func (d *Daemon) ErrorCount() int { return d.errCount }
