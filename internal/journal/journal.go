// Package journal keeps a history of builds so `i3configger history` can show
// what was built, when, why and with which outcome.
package journal

import (
	"context"
	"time"
)

// Entry is one recorded build.
type Entry struct {
	ID        string
	Build     string
	Trigger   string
	StartedAt time.Time
	Duration  time.Duration
	Outcome   string
	Error     string
	Partials  []string
}

// Journal stores build entries.
type Journal interface {
	Record(ctx context.Context, e Entry) (string, error)
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

// Noop discards entries. Used when no journal path is configured.
type Noop struct{}

func (Noop) Record(context.Context, Entry) (string, error) { return "", nil }
func (Noop) Recent(context.Context, int) ([]Entry, error)  { return nil, nil }
func (Noop) Close() error                                  { return nil }
