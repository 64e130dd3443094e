package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/i3configger/internal/config"
	"git.home.luguber.info/inful/i3configger/internal/daemon"
	ferrors "git.home.luguber.info/inful/i3configger/internal/foundation/errors"
)

// Global context passed to subcommands. Logger is replaced once the
// configuration has been read.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"${config_path}"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build          BuildCmd          `cmd:"" help:"Build every configured target once"`
	Watch          WatchCmd          `cmd:"" help:"Build, then rebuild whenever partials or the state change"`
	Select         SelectCmd         `cmd:"" help:"Select a value for a conditional key and rebuild"`
	SelectNext     SelectNextCmd     `cmd:"" name:"select-next" help:"Select the next value of a key and rebuild"`
	SelectPrevious SelectPreviousCmd `cmd:"" name:"select-previous" help:"Select the previous value of a key and rebuild"`
	Set            SetCmd            `cmd:"" help:"Set a free-form state variable (value 'del' removes it)"`
	Show           ShowCmd           `cmd:"" help:"Print what would be built without writing it"`
	State          StateCmd          `cmd:"" help:"Print the persisted selection state"`
	Send           SendCmd           `cmd:"" help:"Send a state command to a running watcher over NATS"`
	History        HistoryCmd        `cmd:"" help:"Show recent builds from the journal"`
	Init           InitCmd           `cmd:"" help:"Initialize a new configuration file"`
}

// Vars are the interpolation values used in the CLI struct tags.
func Vars(version string) kong.Vars {
	return kong.Vars{
		"version":     version,
		"config_path": config.DefaultPath,
	}
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(newLogger(os.Stderr, config.LogFormatText, level))
	return nil
}

func newLogger(w io.Writer, format config.LogFormat, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// loadConfig reads the configuration and reconfigures logging from its
// settings. The returned function closes the log file, if any.
func (c *CLI) loadConfig(g *Global) (*config.Config, func() error, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, nil, err
	}
	closer, err := c.configureLogging(g, cfg.Settings)
	if err != nil {
		return nil, nil, err
	}
	return cfg, closer, nil
}

func (c *CLI) configureLogging(g *Global, s config.Settings) (func() error, error) {
	level := s.LogLevel.SlogLevel()
	if c.Verbose {
		level = slog.LevelDebug
	}
	var (
		w      io.Writer = os.Stderr
		closer           = func() error { return nil }
	)
	if s.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(s.LogFile), 0o755); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "create log directory").
				WithContext("path", s.LogFile).
				Build()
		}
		f, err := os.OpenFile(s.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "open log file").
				WithContext("path", s.LogFile).
				Build()
		}
		w = io.MultiWriter(os.Stderr, f)
		closer = f.Close
	}
	g.Logger = newLogger(w, config.NormalizeLogFormat(string(s.LogFormat)), level)
	slog.SetDefault(g.Logger)
	return closer, nil
}

// session bundles what most commands need: the configuration and a daemon
// assembled from it.
type session struct {
	cfg    *config.Config
	daemon *daemon.Daemon
	close  func() error
}

func (c *CLI) open(ctx context.Context, g *Global, opts ...daemon.Option) (*session, error) {
	cfg, closeLog, err := c.loadConfig(g)
	if err != nil {
		return nil, err
	}
	d, closeJournal, err := daemon.NewFromConfig(ctx, cfg, g.Logger, opts...)
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	return &session{
		cfg:    cfg,
		daemon: d,
		close:  func() error { return errors.Join(closeJournal(), closeLog()) },
	}, nil
}
