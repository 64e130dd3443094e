package config

import (
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/i3configger/internal/fsutil"
)

const (
	DefaultStateFile   = ".state.json"
	DefaultMaxErrors   = 10
	DefaultSuffix      = ".conf"
	DefaultNATSSubject = "i3configger.commands"
	DefaultBuildName   = "main"
	minRebuildInterval = time.Second
)

func (c *Config) applyDefaults() error {
	s := &c.Settings
	if s.State == "" {
		s.State = filepath.Join(c.Dir(), DefaultStateFile)
	}
	if s.MaxErrors == 0 {
		s.MaxErrors = DefaultMaxErrors
	}
	mode, err := ParseRefreshMode(string(s.Refresh))
	if err != nil {
		return err
	}
	s.Refresh = mode
	backoff, err := ParseRetryBackoff(string(s.RefreshRetry.Backoff))
	if err != nil {
		return err
	}
	s.RefreshRetry.Backoff = backoff
	s.LogLevel = NormalizeLogLevel(string(s.LogLevel))
	s.LogFormat = NormalizeLogFormat(string(s.LogFormat))
	if s.ReservedKeys == nil {
		s.ReservedKeys = []string{"i3status"}
	}
	if s.NATS.Enabled() && s.NATS.Subject == "" {
		s.NATS.Subject = DefaultNATSSubject
	}

	for i := range c.Builds {
		b := &c.Builds[i]
		if b.Name == "" {
			b.Name = DefaultBuildName
			if len(c.Builds) > 1 {
				b.Name = strings.TrimSuffix(filepath.Base(b.Target), filepath.Ext(b.Target))
			}
		}
		if b.Suffix == "" {
			b.Suffix = DefaultSuffix
		}
		if !strings.HasPrefix(b.Suffix, ".") {
			b.Suffix = "." + b.Suffix
		}
		if len(b.Sources) == 0 {
			b.Sources = []string{fsutil.ExpandPath(".", c.Dir())}
		}
	}
	return nil
}
