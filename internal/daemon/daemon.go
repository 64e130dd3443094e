package daemon

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"git.home.luguber.info/inful/i3configger/internal/build"
	ferrors "git.home.luguber.info/inful/i3configger/internal/foundation/errors"
	"git.home.luguber.info/inful/i3configger/internal/ipc"
	"git.home.luguber.info/inful/i3configger/internal/journal"
	"git.home.luguber.info/inful/i3configger/internal/logfields"
	"git.home.luguber.info/inful/i3configger/internal/metrics"
	"git.home.luguber.info/inful/i3configger/internal/partials"
	"git.home.luguber.info/inful/i3configger/internal/state"
)

// ErrGivingUp is the cause of the error Run returns once the error budget is spent.
var ErrGivingUp = errors.New("too many errors, giving up")

// TriggerState names builds caused by a change of the state document.
const TriggerState = "state"

// TriggerSchedule names builds caused by the periodic rebuild.
const TriggerSchedule = "schedule"

// Daemon owns the build definitions and the state store.
type Daemon struct {
	defs      []*build.Definition
	store     *state.Store
	refresher ipc.Refresher
	notifier  ipc.Notifier
	recorder  metrics.Recorder
	journal   journal.Journal
	logger    *slog.Logger
	clock     clockwork.Clock

	maxErrors       int
	errCount        int
	rebuildInterval time.Duration
	// selection of the last successful state-triggered build
	lastStateSelection map[string]string
}

// Option configures a Daemon.
type Option func(*Daemon)

func WithRefresher(r ipc.Refresher) Option       { return func(d *Daemon) { d.refresher = r } }
func WithNotifier(n ipc.Notifier) Option         { return func(d *Daemon) { d.notifier = n } }
func WithRecorder(r metrics.Recorder) Option     { return func(d *Daemon) { d.recorder = r } }
func WithJournal(j journal.Journal) Option       { return func(d *Daemon) { d.journal = j } }
func WithClock(c clockwork.Clock) Option         { return func(d *Daemon) { d.clock = c } }
func WithMaxErrors(n int) Option                 { return func(d *Daemon) { d.maxErrors = n } }
func WithRebuildInterval(i time.Duration) Option { return func(d *Daemon) { d.rebuildInterval = i } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Daemon) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates a daemon. Collaborators default to no-ops.
func New(defs []*build.Definition, store *state.Store, opts ...Option) *Daemon {
	d := &Daemon{
		defs:      defs,
		store:     store,
		refresher: ipc.Nop{},
		notifier:  ipc.Nop{},
		recorder:  metrics.NoopRecorder{},
		journal:   journal.Noop{},
		logger:    slog.Default(),
		clock:     clockwork.NewRealClock(),
		maxErrors: 10,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Definitions returns the build definitions in configuration order.
func (d *Daemon) Definitions() []*build.Definition { return d.defs }

// Store returns the state store.
func (d *Daemon) Store() *state.Store { return d.store }

// WatchDirs lists every directory the daemon needs change events for.
func (d *Daemon) WatchDirs() []string {
	seen := map[string]bool{}
	var dirs []string
	add := func(dir string) {
		dir = filepath.Clean(dir)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	for _, def := range d.defs {
		for _, dir := range def.WatchPaths() {
			add(dir)
		}
	}
	add(filepath.Dir(d.store.Path()))
	return dirs
}

// Partials returns the fragments of every build definition. The state
// protocol resolves keys and values against this set.
func (d *Daemon) Partials() ([]*partials.Partial, error) {
	seen := map[string]bool{}
	var all []*partials.Partial
	for _, def := range d.defs {
		prts, err := def.Partials()
		if err != nil {
			return nil, err
		}
		for _, p := range prts {
			if !seen[p.Path] {
				seen[p.Path] = true
				all = append(all, p)
			}
		}
	}
	return partials.Sorted(all), nil
}

// Selection loads the state document and returns its select namespace.
func (d *Daemon) Selection() (map[string]string, error) {
	prts, err := d.Partials()
	if err != nil {
		return nil, err
	}
	doc, err := d.store.Load(prts)
	if err != nil {
		return nil, err
	}
	return doc.Selector(), nil
}

// HandleMessage applies a state command. The rewritten state document triggers
// the rebuild through the watch loop; callers without a loop follow up with BuildAll.
func (d *Daemon) HandleMessage(_ context.Context, tokens []string) (*state.Document, error) {
	command := ""
	if len(tokens) > 0 {
		command = tokens[0]
	}
	prts, err := d.Partials()
	if err != nil {
		d.recorder.IncStateCommand(command, metrics.OutcomeFailed)
		return nil, err
	}
	doc, err := d.store.Process(prts, tokens)
	d.recorder.IncStateCommand(command, metrics.OutcomeOf(err))
	if err != nil {
		d.logger.Warn("State command failed", logfields.Command(command), logfields.Error(err))
		return nil, err
	}
	return doc, nil
}

// BuildAll builds every definition, then refreshes once if anything was written.
func (d *Daemon) BuildAll(ctx context.Context, trigger string) ([]*build.Result, error) {
	selection, err := d.Selection()
	if err != nil {
		return nil, err
	}
	var (
		results []*build.Result
		errs    []error
	)
	for _, def := range d.defs {
		res, err := d.buildOne(ctx, def, selection, trigger)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	if len(results) > 0 {
		errs = append(errs, d.refresh(ctx))
	}
	return results, errors.Join(errs...)
}

func (d *Daemon) buildOne(ctx context.Context, def *build.Definition, selection map[string]string, trigger string) (*build.Result, error) {
	start := d.clock.Now()
	res, err := def.Build(selection)
	elapsed := d.clock.Since(start)

	d.recorder.ObserveBuildDuration(def.Name(), elapsed)
	d.recorder.IncBuildOutcome(def.Name(), metrics.OutcomeOf(err))
	entry := journal.Entry{
		Build:     def.Name(),
		Trigger:   trigger,
		StartedAt: start,
		Duration:  elapsed,
		Outcome:   string(metrics.OutcomeOf(err)),
	}
	if err != nil {
		entry.Error = err.Error()
	} else {
		entry.Partials = res.Partials
	}
	id, jerr := d.journal.Record(ctx, entry)
	if jerr != nil {
		d.logger.Warn("Could not journal build", logfields.Build(def.Name()), logfields.Error(jerr))
	}

	if err != nil {
		d.logger.Error("Build failed",
			logfields.Build(def.Name()),
			logfields.Partial(trigger),
			logfields.Error(err))
		_ = d.notifier.Notify(ctx, "build "+def.Name()+" failed: "+err.Error(), ipc.UrgencyCritical)
		return nil, err
	}
	def.MarkBuilt(trigger)
	d.logger.Info("Built target",
		logfields.Build(def.Name()),
		logfields.BuildID(id),
		logfields.Target(res.Target),
		logfields.Partial(trigger),
		logfields.Duration(elapsed))
	if err := d.notifier.Notify(ctx, "build "+def.Name(), ipc.UrgencyLow); err != nil {
		d.logger.Debug("Notification failed", logfields.Error(err))
	}
	return res, nil
}

func (d *Daemon) refresh(ctx context.Context) error {
	err := d.refresher.Refresh(ctx)
	d.recorder.IncRefresh(metrics.OutcomeOf(err))
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryIPC, "refresh window manager").Build()
	}
	return nil
}
