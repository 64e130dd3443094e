package config

import (
	"log/slog"

	"git.home.luguber.info/inful/i3configger/internal/foundation/normalization"
)

// RefreshMode selects what the window manager is asked to do after a build.
type RefreshMode string

const (
	RefreshRestart RefreshMode = "restart"
	RefreshReload  RefreshMode = "reload"
	RefreshNone    RefreshMode = "none"
)

var refreshModes = normalization.NewNormalizer("refresh mode", map[string]RefreshMode{
	"restart": RefreshRestart,
	"reload":  RefreshReload,
	"none":    RefreshNone,
}, RefreshRestart)

// ParseRefreshMode validates raw; empty input yields restart.
func ParseRefreshMode(raw string) (RefreshMode, error) {
	return refreshModes.Parse(raw)
}

// LogLevel is the minimum level written by the logger.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevels = normalization.NewNormalizer("log level", map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

// NormalizeLogLevel maps raw onto a LogLevel, defaulting to info.
func NormalizeLogLevel(raw string) LogLevel {
	return logLevels.Normalize(raw)
}

// SlogLevel converts to the slog equivalent.
func (l LogLevel) SlogLevel() slog.Level {
	switch NormalizeLogLevel(string(l)) {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormats = normalization.NewNormalizer("log format", map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

// NormalizeLogFormat maps raw onto a LogFormat, defaulting to text.
func NormalizeLogFormat(raw string) LogFormat {
	return logFormats.Normalize(raw)
}

// RetryBackoffMode shapes the delay between refresh attempts.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

var retryBackoffs = normalization.NewNormalizer("retry backoff", map[string]RetryBackoffMode{
	"fixed":       RetryBackoffFixed,
	"linear":      RetryBackoffLinear,
	"exponential": RetryBackoffExponential,
}, RetryBackoffLinear)

// ParseRetryBackoff validates raw; empty input yields linear.
func ParseRetryBackoff(raw string) (RetryBackoffMode, error) {
	return retryBackoffs.Parse(raw)
}
