package ipc

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jonboulle/clockwork"

	"git.home.luguber.info/inful/i3configger/internal/config"
	ferrors "git.home.luguber.info/inful/i3configger/internal/foundation/errors"
	"git.home.luguber.info/inful/i3configger/internal/logfields"
	"git.home.luguber.info/inful/i3configger/internal/retry"
)

const successMarker = `"success":true`

// I3 refreshes i3 with i3-msg.
type I3 struct {
	mode     config.RefreshMode
	run      Runner
	notifier Notifier
	logger   *slog.Logger
	policy   retry.Policy
	clock    clockwork.Clock
}

// I3Option configures an I3 refresher.
type I3Option func(*I3)

// WithRetry repeats i3-msg calls that fail to run, e.g. while i3 is restarting.
func WithRetry(p retry.Policy, clock clockwork.Clock) I3Option {
	return func(r *I3) {
		r.policy = p
		if clock != nil {
			r.clock = clock
		}
	}
}

// NewI3 creates a refresher for mode. A nil runner uses ExecRunner; a nil notifier disables feedback.
func NewI3(mode config.RefreshMode, run Runner, notifier Notifier, logger *slog.Logger, opts ...I3Option) *I3 {
	if run == nil {
		run = ExecRunner
	}
	if notifier == nil {
		notifier = Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &I3{
		mode:     mode,
		run:      run,
		notifier: notifier,
		logger:   logger,
		policy:   retry.DefaultPolicy(),
		clock:    clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewRefresher returns a Nop for RefreshNone and an I3 refresher otherwise.
func NewRefresher(mode config.RefreshMode, run Runner, notifier Notifier, logger *slog.Logger, opts ...I3Option) Refresher {
	if mode == config.RefreshNone {
		return Nop{}
	}
	return NewI3(mode, run, notifier, logger, opts...)
}

// Refresh sends reload or restart. i3-msg exits 1 on restart because the
// connection drops; that counts as success.
func (r *I3) Refresh(ctx context.Context) error {
	if r.mode == config.RefreshNone {
		return nil
	}
	msg := string(r.mode)
	var out []byte
	retryable := func(err error) bool { return !r.tolerated(err) }
	err := retry.Do(ctx, r.clock, r.policy, retryable, func(ctx context.Context) error {
		var err error
		out, err = r.run(ctx, "i3-msg", msg)
		if err != nil && retryable(err) {
			r.logger.Debug("i3-msg failed", logfields.Command(msg), logfields.Error(err))
		}
		return err
	})
	if err != nil {
		if r.tolerated(err) {
			r.logger.Debug("Ignoring exit status 1 of i3-msg restart")
			return nil
		}
		_ = r.notifier.Notify(ctx, "i3-msg "+msg+" failed: "+err.Error(), UrgencyCritical)
		return ferrors.WrapError(err, ferrors.CategoryIPC, "i3-msg failed").
			WithContext("command", msg).
			Build()
	}
	if !strings.Contains(strings.ReplaceAll(string(out), " ", ""), successMarker) {
		_ = r.notifier.Notify(ctx, "i3-msg "+msg+": "+strings.TrimSpace(string(out)), UrgencyCritical)
		return ferrors.IPCError("i3-msg reported failure").
			WithContext("command", msg).
			WithContext("output", strings.TrimSpace(string(out))).
			Build()
	}
	r.logger.Info("Refreshed window manager", logfields.Command(msg))
	return r.notifier.Notify(ctx, msg+"ed i3", UrgencyLow)
}

func (r *I3) tolerated(err error) bool {
	return r.mode == config.RefreshRestart && exitCode(err) == 1
}

// NotifySend shows notifications with notify-send.
type NotifySend struct {
	run Runner
}

// NewNotifySend creates a notifier. A nil runner uses ExecRunner.
func NewNotifySend(run Runner) *NotifySend {
	if run == nil {
		run = ExecRunner
	}
	return &NotifySend{run: run}
}

func (n *NotifySend) Notify(ctx context.Context, msg string, urgency Urgency) error {
	if urgency == "" {
		urgency = UrgencyLow
	}
	if _, err := n.run(ctx, "notify-send", "-a", "i3configger", "-t", "1", "-u", string(urgency), msg); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryIPC, "notify-send failed").
			WithContext("message", msg).
			Build()
	}
	return nil
}

// NewNotifier returns NotifySend when enabled, Nop otherwise.
func NewNotifier(enabled bool, run Runner) Notifier {
	if !enabled {
		return Nop{}
	}
	return NewNotifySend(run)
}
