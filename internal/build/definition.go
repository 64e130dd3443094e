package build

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"git.home.luguber.info/inful/i3configger/internal/config"
	ferrors "git.home.luguber.info/inful/i3configger/internal/foundation/errors"
	"git.home.luguber.info/inful/i3configger/internal/logfields"
	"git.home.luguber.info/inful/i3configger/internal/partials"
	"git.home.luguber.info/inful/i3configger/internal/util/sets"
	"git.home.luguber.info/inful/i3configger/internal/watcher"
)

// BuildDelay is the minimum time between two builds triggered by the same file.
// Editors that save in several steps produce bursts of events for one file.
const BuildDelay = 100 * time.Millisecond

// Definition is a configured build target plus its debounce state.
type Definition struct {
	def         config.BuildDef
	clock       clockwork.Clock
	logger      *slog.Logger
	excludes    sets.Set[string]
	files       sets.Set[string]
	excludeKeys sets.Set[string]
	watched     sets.Set[string]

	lastBuild    time.Time
	lastFilename string
}

// Option configures a Definition.
type Option func(*Definition)

// WithClock replaces the wall clock, for tests.
func WithClock(c clockwork.Clock) Option {
	return func(d *Definition) { d.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Definition) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDefinition creates a Definition. Setting both files and excludes is a configuration error.
func NewDefinition(def config.BuildDef, opts ...Option) (*Definition, error) {
	if len(def.Files) > 0 && len(def.Excludes) > 0 {
		return nil, ferrors.ConfigError("files and excludes are mutually exclusive").
			WithContext("build", def.Name).
			Build()
	}
	if def.Suffix == "" {
		def.Suffix = config.DefaultSuffix
	}
	d := &Definition{
		def:         def,
		clock:       clockwork.NewRealClock(),
		logger:      slog.Default(),
		excludes:    sets.New(def.Excludes...),
		files:       sets.New(def.Files...),
		excludeKeys: sets.New(def.ExcludeKeys...),
		watched:     sets.New[string](),
	}
	for _, dir := range def.WatchPaths() {
		d.watched.Add(filepath.Clean(dir))
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With(logfields.Build(def.Name))
	return d, nil
}

// NewDefinitions creates one Definition per configured build.
func NewDefinitions(defs []config.BuildDef, opts ...Option) ([]*Definition, error) {
	out := make([]*Definition, 0, len(defs))
	for _, def := range defs {
		d, err := NewDefinition(def, opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (d *Definition) Name() string            { return d.def.Name }
func (d *Definition) Target() string          { return d.def.Target }
func (d *Definition) Config() config.BuildDef { return d.def }

// WatchPaths returns theme directories followed by source directories.
func (d *Definition) WatchPaths() []string { return d.def.WatchPaths() }

// Matches reports whether a file called name in dir belongs to this definition.
func (d *Definition) Matches(dir, name string) bool {
	return partials.HasSuffix(name, d.def.Suffix) && d.watched.Has(filepath.Clean(dir))
}

// NeedsBuild decides whether ev warrants a rebuild: always for the first build or
// a different file than last time, and for the same file only after BuildDelay.
func (d *Definition) NeedsBuild(ev watcher.Event) bool {
	if !d.Matches(ev.Dir, ev.Name) {
		return false
	}
	if d.lastBuild.IsZero() {
		return true
	}
	if ev.Name != d.lastFilename {
		return true
	}
	if d.clock.Since(d.lastBuild) >= BuildDelay {
		return true
	}
	d.logger.Debug("Change too quick, skipping", logfields.Partial(ev.Name))
	return false
}

// MarkBuilt records a successful build triggered by filename.
func (d *Definition) MarkBuilt(filename string) {
	d.lastBuild = d.clock.Now()
	d.lastFilename = filename
}

// Partials lists the fragments of all source directories, filtered by suffix,
// then excludes, then the files allow-list.
func (d *Definition) Partials() ([]*partials.Partial, error) {
	var all []*partials.Partial
	for _, dir := range d.def.Sources {
		prts, err := partials.Scan(dir, d.accept)
		if err != nil {
			return nil, err
		}
		all = append(all, prts...)
	}
	return partials.Sorted(all), nil
}

func (d *Definition) accept(name string) bool {
	if !partials.HasSuffix(name, d.def.Suffix) {
		return false
	}
	if d.excludes.Has(name) {
		return false
	}
	return d.files.Len() == 0 || d.files.Has(name)
}

// selectorFor narrows the state selection to the keys this definition's
// fragments carry, minus excluded keys.
func (d *Definition) selectorFor(selection map[string]string, prts []*partials.Partial) map[string]string {
	keys := sets.New(partials.Keys(prts)...)
	out := make(map[string]string, len(selection))
	for k, v := range selection {
		if keys.Has(k) && !d.excludeKeys.Has(k) {
			out[k] = v
		}
	}
	return out
}
