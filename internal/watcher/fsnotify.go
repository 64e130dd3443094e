package watcher

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	ferrors "git.home.luguber.info/inful/i3configger/internal/foundation/errors"
	"git.home.luguber.info/inful/i3configger/internal/logfields"
)

// FSNotify watches directory trees through the native notification facility.
// fsnotify has no close-after-write event; editors' final write arrives as KindWrite.
type FSNotify struct {
	w      *fsnotify.Watcher
	events chan Event
	errs   chan error
	logger *slog.Logger
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewFSNotify registers every directory below each of dirs and starts forwarding events.
func NewFSNotify(logger *slog.Logger, dirs ...string) (*FSNotify, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "create file watcher").Build()
	}
	f := &FSNotify{
		w:      w,
		events: make(chan Event, 64),
		errs:   make(chan error, 8),
		logger: logger,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, dir := range dirs {
		if err := f.addTree(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}
	go f.forward()
	return f, nil
}

func (f *FSNotify) Events() <-chan Event { return f.events }
func (f *FSNotify) Errors() <-chan error { return f.errs }

// Close stops the watcher and waits for the forwarding loop to end.
func (f *FSNotify) Close() error {
	var err error
	f.once.Do(func() {
		close(f.stop)
		err = f.w.Close()
		<-f.done
	})
	return err
}

// WatchList returns the registered directories.
func (f *FSNotify) WatchList() []string {
	return f.w.WatchList()
}

func (f *FSNotify) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path != root && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "walk watched directory").
				WithContext("dir", path).
				Build()
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := f.w.Add(path); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "watch directory").
				WithContext("dir", path).
				Build()
		}
		f.logger.Debug("Watching directory", logfields.Dir(path))
		return nil
	})
}

func (f *FSNotify) forward() {
	defer close(f.done)
	defer close(f.errs)
	defer close(f.events)
	for {
		select {
		case ev, ok := <-f.w.Events:
			if !ok {
				return
			}
			kind := kindOf(ev.Op)
			if kind == 0 {
				continue
			}
			if kind == KindCreate {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := f.addTree(ev.Name); err != nil && !f.fail(err) {
						return
					}
					continue
				}
			}
			select {
			case f.events <- NewEvent(ev.Name, kind):
			case <-f.stop:
				return
			}
		case err, ok := <-f.w.Errors:
			if !ok {
				return
			}
			if !f.fail(ferrors.WrapError(err, ferrors.CategoryFileSystem, "file watcher").Build()) {
				return
			}
		}
	}
}

// fail reports err unless the watcher is shutting down.
func (f *FSNotify) fail(err error) bool {
	select {
	case f.errs <- err:
		return true
	case <-f.stop:
		return false
	}
}

func kindOf(op fsnotify.Op) Kind {
	switch {
	case op.Has(fsnotify.Create):
		return KindCreate
	case op.Has(fsnotify.Write):
		return KindWrite
	case op.Has(fsnotify.Remove):
		return KindRemove
	case op.Has(fsnotify.Rename):
		return KindRename
	case op.Has(fsnotify.Chmod):
		return KindChmod
	default:
		return 0
	}
}
