package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	ferrors "git.home.luguber.info/inful/i3configger/internal/foundation/errors"
)

// Validate checks a loaded and defaulted configuration.
func (c *Config) Validate() error {
	s := c.Settings
	if s.MaxErrors < 1 {
		return ferrors.ValidationError("max_errors must be at least 1").
			WithContext("max_errors", s.MaxErrors).
			Build()
	}
	if s.RebuildInterval != 0 && s.RebuildInterval < minRebuildInterval {
		return ferrors.ValidationError("rebuild_interval below minimum").
			WithContext("rebuild_interval", s.RebuildInterval.String()).
			WithContext("minimum", minRebuildInterval.String()).
			Build()
	}
	if r := s.RefreshRetry; r.MaxRetries < 0 || r.Initial < 0 || r.Max < 0 {
		return ferrors.ValidationError("refresh_retry values cannot be negative").
			WithContext("max_retries", r.MaxRetries).
			WithContext("initial", r.Initial.String()).
			WithContext("max", r.Max.String()).
			Build()
	}
	if len(c.Builds) == 0 {
		return ferrors.ConfigError("no build definitions").
			WithContext("path", c.Path).
			Build()
	}
	seen := map[string]bool{}
	for _, b := range c.Builds {
		if seen[b.Name] {
			return ferrors.ConfigError("duplicate build name").
				WithContext("build", b.Name).
				Build()
		}
		seen[b.Name] = true
		if err := b.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks one build definition. Directories must exist.
func (b BuildDef) Validate() error {
	if b.Target == "" {
		return ferrors.ConfigError("build without target").
			WithContext("build", b.Name).
			Build()
	}
	if len(b.Files) > 0 && len(b.Excludes) > 0 {
		return ferrors.ConfigError("files and excludes are mutually exclusive").
			WithContext("build", b.Name).
			Build()
	}
	for _, dir := range b.WatchPaths() {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return ferrors.ConfigError("missing directory").
				WithContext("build", b.Name).
				WithContext("dir", dir).
				Build()
		}
	}
	if b.Theme != "" && len(b.Themes) == 0 {
		return ferrors.ConfigError("theme selected without theme directories").
			WithContext("build", b.Name).
			WithContext("theme", b.Theme).
			Build()
	}
	targetDir := filepath.Clean(filepath.Dir(b.Target))
	if strings.EqualFold(filepath.Ext(b.Target), b.Suffix) && slices.ContainsFunc(b.WatchPaths(), func(d string) bool {
		return filepath.Clean(d) == targetDir
	}) {
		return ferrors.ConfigError("target inside a watched directory would trigger its own rebuild").
			WithContext("build", b.Name).
			WithContext("target", b.Target).
			Build()
	}
	return nil
}
