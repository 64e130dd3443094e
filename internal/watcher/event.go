// Package watcher turns filesystem change notifications into a plain stream of
// events the daemon consumes one at a time.
package watcher

import (
	"path/filepath"
)

// Kind is the type of change an event reports.
type Kind int

const (
	KindCreate Kind = iota + 1
	KindWrite
	KindRemove
	KindRename
	KindChmod
)

func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindWrite:
		return "write"
	case KindRemove:
		return "remove"
	case KindRename:
		return "rename"
	case KindChmod:
		return "chmod"
	default:
		return "unknown"
	}
}

// Event is a change to one file.
type Event struct {
	Path string
	Dir  string
	Name string
	Kind Kind
}

// NewEvent splits path into directory and file name.
func NewEvent(path string, kind Kind) Event {
	path = filepath.Clean(path)
	return Event{Path: path, Dir: filepath.Dir(path), Name: filepath.Base(path), Kind: kind}
}

// Source produces change events until closed. Events and Errors are closed when
// the source shuts down.
type Source interface {
	Events() <-chan Event
	Errors() <-chan error
	Close() error
}
