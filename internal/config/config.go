// Package config loads the i3configger YAML configuration: global settings plus
// one or more build definitions.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/i3configger/internal/foundation/errors"
	"git.home.luguber.info/inful/i3configger/internal/fsutil"
)

// DefaultPath is used when no --config flag is given.
const DefaultPath = "~/.i3/config.d/i3configger.yaml"

// Config is the root document.
type Config struct {
	Settings Settings   `yaml:"settings"`
	Builds   []BuildDef `yaml:"builds"`

	// Path is the absolute location the configuration was read from.
	Path string `yaml:"-"`
}

// Settings are process wide options.
type Settings struct {
	State           string        `yaml:"state,omitempty"`
	MaxErrors       int           `yaml:"max_errors,omitempty"`
	Refresh         RefreshMode   `yaml:"refresh,omitempty"`
	RefreshRetry    RetrySettings `yaml:"refresh_retry,omitempty"`
	Notify          *bool         `yaml:"notify,omitempty"`
	LogFile         string        `yaml:"log_file,omitempty"`
	LogLevel        LogLevel      `yaml:"log_level,omitempty"`
	LogFormat       LogFormat     `yaml:"log_format,omitempty"`
	ReservedKeys    []string      `yaml:"reserved_keys,omitempty"`
	RebuildInterval time.Duration `yaml:"rebuild_interval,omitempty"`
	Journal         string        `yaml:"journal,omitempty"`
	MetricsAddr     string        `yaml:"metrics_addr,omitempty"`
	NATS            NATSConfig    `yaml:"nats,omitempty"`
}

// NotifyEnabled reports whether desktop notifications are sent.
func (s Settings) NotifyEnabled() bool {
	return s.Notify == nil || *s.Notify
}

// RetrySettings control how often a failed i3-msg call is repeated.
// MaxRetries 0 disables retrying.
type RetrySettings struct {
	Backoff    RetryBackoffMode `yaml:"backoff,omitempty"`
	Initial    time.Duration    `yaml:"initial,omitempty"`
	Max        time.Duration    `yaml:"max,omitempty"`
	MaxRetries int              `yaml:"max_retries,omitempty"`
}

// NATSConfig enables the inbound command channel when URL is set.
type NATSConfig struct {
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// Enabled reports whether a NATS server is configured.
func (n NATSConfig) Enabled() bool { return n.URL != "" }

// BuildDef describes one output file.
type BuildDef struct {
	Name    string   `yaml:"name"`
	Target  string   `yaml:"target"`
	Sources []string `yaml:"sources"`
	// Theme files are only watched when they carry Suffix.
	Themes      []string `yaml:"themes,omitempty"`
	Theme       string   `yaml:"theme,omitempty"`
	Suffix      string   `yaml:"suffix,omitempty"`
	Excludes    []string `yaml:"excludes,omitempty"`
	Files       []string `yaml:"files,omitempty"`
	ExcludeKeys []string `yaml:"exclude_keys,omitempty"`
	AddHeader   bool     `yaml:"add_header,omitempty"`
	AddInfo     bool     `yaml:"add_info,omitempty"`
}

// WatchPaths returns theme directories followed by source directories.
func (b BuildDef) WatchPaths() []string {
	return append(append([]string{}, b.Themes...), b.Sources...)
}

// Dir returns the directory holding the configuration file.
func (c *Config) Dir() string { return filepath.Dir(c.Path) }

// Load reads, expands, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	path = fsutil.ExpandPath(path, "")
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "resolve configuration path").
			WithContext("path", path).
			Fatal().
			Build()
	}
	data, err := os.ReadFile(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ferrors.ConfigError("configuration file not found").
			WithContext("path", abs).
			Build()
	}
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "read configuration").
			WithContext("path", abs).
			Fatal().
			Build()
	}

	if err := loadEnvFile(filepath.Dir(abs)); err != nil {
		return nil, err
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid configuration").
			WithContext("path", abs).
			Fatal().
			Build()
	}
	cfg.Path = abs
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes raw YAML without defaults or path resolution.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// finalize resolves paths against the configuration directory, applies defaults and validates.
func (c *Config) finalize() error {
	c.resolvePaths()
	if err := c.applyDefaults(); err != nil {
		return err
	}
	return c.Validate()
}

func (c *Config) resolvePaths() {
	base := c.Dir()
	c.Settings.LogFile = resolveOptional(c.Settings.LogFile, base)
	c.Settings.Journal = resolveOptional(c.Settings.Journal, base)
	if c.Settings.State != "" {
		c.Settings.State = fsutil.ExpandPath(c.Settings.State, base)
	}
	for i := range c.Builds {
		b := &c.Builds[i]
		b.Target = resolveOptional(b.Target, base)
		for j := range b.Sources {
			b.Sources[j] = fsutil.ExpandPath(b.Sources[j], base)
		}
		for j := range b.Themes {
			b.Themes[j] = fsutil.ExpandPath(b.Themes[j], base)
		}
	}
}

func resolveOptional(p, base string) string {
	if p == "" {
		return ""
	}
	return fsutil.ExpandPath(p, base)
}

// Init writes an example configuration next to the partials directory.
func Init(path string, force bool) error {
	path = fsutil.ExpandPath(path, "")
	if _, err := os.Stat(path); err == nil && !force {
		return ferrors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	}
	data, err := yaml.Marshal(Example())
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "encode example configuration").Build()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create configuration directory").
			WithContext("path", path).
			Build()
	}
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write configuration").
			WithContext("path", path).
			Build()
	}
	return nil
}

// Example returns the configuration written by Init.
func Example() *Config {
	return &Config{
		Settings: Settings{
			State:     DefaultStateFile,
			MaxErrors: DefaultMaxErrors,
			Refresh:   RefreshRestart,
			LogLevel:  LogLevelInfo,
			LogFormat: LogFormatText,
		},
		Builds: []BuildDef{
			{
				Name:      "main",
				Target:    "../config",
				Sources:   []string{"."},
				Suffix:    DefaultSuffix,
				AddHeader: true,
			},
		},
	}
}
