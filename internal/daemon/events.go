package daemon

import (
	"context"
	"errors"
	"maps"
	"path/filepath"

	"git.home.luguber.info/inful/i3configger/internal/build"
	"git.home.luguber.info/inful/i3configger/internal/logfields"
	"git.home.luguber.info/inful/i3configger/internal/watcher"
)

// ProcessEvent rebuilds the definitions ev concerns and refreshes once if any
// target was written. A change of the state document rebuilds every definition.
func (d *Daemon) ProcessEvent(ctx context.Context, ev watcher.Event) error {
	d.recorder.IncEvent(ev.Kind.String())
	d.logger.Debug("Change event",
		logfields.Path(ev.Path),
		logfields.EventKind(ev.Kind.String()))

	if d.isStateEvent(ev) {
		if ev.Kind == watcher.KindRemove || ev.Kind == watcher.KindChmod {
			return nil
		}
		return d.processStateChange(ctx)
	}

	var due []*build.Definition
	for _, def := range d.defs {
		if def.NeedsBuild(ev) {
			due = append(due, def)
		} else if def.Matches(ev.Dir, ev.Name) {
			d.recorder.IncBuildSuppressed(def.Name())
		}
	}
	if len(due) == 0 {
		return nil
	}

	selection, err := d.Selection()
	if err != nil {
		return err
	}
	var (
		built int
		errs  []error
	)
	for _, def := range due {
		if _, err := d.buildOne(ctx, def, selection, ev.Name); err != nil {
			errs = append(errs, err)
			continue
		}
		built++
	}
	if built > 0 {
		errs = append(errs, d.refresh(ctx))
	}
	return errors.Join(errs...)
}

// processStateChange rebuilds unless the selection equals the one last built
// for a state change.
func (d *Daemon) processStateChange(ctx context.Context) error {
	selection, err := d.Selection()
	if err != nil {
		return err
	}
	if d.lastStateSelection != nil && maps.Equal(selection, d.lastStateSelection) {
		d.logger.Debug("Selection unchanged, skipping rebuild", logfields.Path(d.store.Path()))
		return nil
	}
	if _, err := d.BuildAll(ctx, TriggerState); err != nil {
		return err
	}
	d.lastStateSelection = selection
	return nil
}

func (d *Daemon) isStateEvent(ev watcher.Event) bool {
	return filepath.Clean(ev.Path) == filepath.Clean(d.store.Path())
}
