package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuild      = "build"
	KeyBuildID    = "build_id"
	KeyTarget     = "target"
	KeyPartial    = "partial"
	KeyPath       = "path"
	KeyDir        = "dir"
	KeyKey        = "key"
	KeyValue      = "value"
	KeyCommand    = "command"
	KeyEventKind  = "event"
	KeyDurationMS = "duration_ms"
	KeyErrorCount = "errors"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Build(name string) slog.Attr   { return slog.String(KeyBuild, name) }
func BuildID(id string) slog.Attr   { return slog.String(KeyBuildID, id) }
func Target(path string) slog.Attr  { return slog.String(KeyTarget, path) }
func Partial(name string) slog.Attr { return slog.String(KeyPartial, name) }
func Path(p string) slog.Attr       { return slog.String(KeyPath, p) }
func Dir(d string) slog.Attr        { return slog.String(KeyDir, d) }
func Key(k string) slog.Attr        { return slog.String(KeyKey, k) }
func Value(v string) slog.Attr      { return slog.String(KeyValue, v) }
func Command(c string) slog.Attr    { return slog.String(KeyCommand, c) }
func EventKind(k string) slog.Attr  { return slog.String(KeyEventKind, k) }
func ErrorCount(n int) slog.Attr    { return slog.Int(KeyErrorCount, n) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
