// Package ipc talks to the window manager and the desktop notification daemon
// through their command line clients.
package ipc

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Urgency is the notification urgency understood by notify-send.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyCritical Urgency = "critical"
)

// Refresher asks the window manager to pick up a new configuration.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Notifier shows a transient message to the user.
type Notifier interface {
	Notify(ctx context.Context, msg string, urgency Urgency) error
}

// Runner executes a program and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs programs directly, without a shell.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	if err := cmd.Run(); err != nil {
		if errOut.Len() > 0 {
			return out.Bytes(), &runError{err: err, stderr: errOut.String()}
		}
		return out.Bytes(), err
	}
	return out.Bytes(), nil
}

type runError struct {
	err    error
	stderr string
}

func (e *runError) Error() string { return e.err.Error() + ": " + e.stderr }
func (e *runError) Unwrap() error { return e.err }

// exitCode extracts the exit status of a failed program, -1 if there is none.
func exitCode(err error) int {
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	return -1
}

// Nop does nothing. It serves as both a Refresher and a Notifier.
type Nop struct{}

func (Nop) Refresh(context.Context) error                 { return nil }
func (Nop) Notify(context.Context, string, Urgency) error { return nil }
