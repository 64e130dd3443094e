package ipc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/i3configger/internal/config"
	ferrors "git.home.luguber.info/inful/i3configger/internal/foundation/errors"
	"git.home.luguber.info/inful/i3configger/internal/retry"
)

type exitErr int

func (e exitErr) Error() string { return "exit status" }
func (e exitErr) ExitCode() int { return int(e) }

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls []call
	out   string
	err   error
}

func (f *fakeRunner) run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	return []byte(f.out), f.err
}

type recordingNotifier struct {
	msgs      []string
	urgencies []Urgency
}

func (r *recordingNotifier) Notify(_ context.Context, msg string, u Urgency) error {
	r.msgs = append(r.msgs, msg)
	r.urgencies = append(r.urgencies, u)
	return nil
}

func TestI3ReloadSuccess(t *testing.T) {
	run := &fakeRunner{out: `[{"success":true}]`}
	notes := &recordingNotifier{}

	require.NoError(t, NewI3(config.RefreshReload, run.run, notes, nil).Refresh(context.Background()))
	require.Len(t, run.calls, 1)
	assert.Equal(t, "i3-msg", run.calls[0].name)
	assert.Equal(t, []string{"reload"}, run.calls[0].args)
	assert.Equal(t, []string{"reloaded i3"}, notes.msgs)
}

func TestI3ReportedFailure(t *testing.T) {
	run := &fakeRunner{out: `[{"success": false, "error": "parse"}]`}
	notes := &recordingNotifier{}

	err := NewI3(config.RefreshReload, run.run, notes, nil).Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryIPC))
	assert.Equal(t, []Urgency{UrgencyCritical}, notes.urgencies)
}

func TestI3SpacedSuccessMarker(t *testing.T) {
	run := &fakeRunner{out: `[{"success": true}]`}
	require.NoError(t, NewI3(config.RefreshReload, run.run, nil, nil).Refresh(context.Background()))
}

func TestI3RestartExitOneIsSuccess(t *testing.T) {
	run := &fakeRunner{err: exitErr(1)}
	require.NoError(t, NewI3(config.RefreshRestart, run.run, nil, nil).Refresh(context.Background()))

	run = &fakeRunner{err: exitErr(1)}
	require.Error(t, NewI3(config.RefreshReload, run.run, nil, nil).Refresh(context.Background()))

	run = &fakeRunner{err: exitErr(2)}
	require.Error(t, NewI3(config.RefreshRestart, run.run, nil, nil).Refresh(context.Background()))
}

func TestI3RetriesFailedInvocations(t *testing.T) {
	policy := retry.NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 2)
	calls := 0
	run := func(context.Context, string, ...string) ([]byte, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("cannot connect to socket")
		}
		return []byte(`[{"success":true}]`), nil
	}
	require.NoError(t, NewI3(config.RefreshReload, run, nil, nil, WithRetry(policy, nil)).Refresh(context.Background()))
	assert.Equal(t, 3, calls)

	restart := &fakeRunner{err: exitErr(1)}
	require.NoError(t, NewI3(config.RefreshRestart, restart.run, nil, nil, WithRetry(policy, nil)).Refresh(context.Background()))
	assert.Len(t, restart.calls, 1)

	broken := &fakeRunner{err: exitErr(2)}
	require.Error(t, NewI3(config.RefreshReload, broken.run, nil, nil, WithRetry(policy, nil)).Refresh(context.Background()))
	assert.Len(t, broken.calls, 3)
}

func TestNewRefresherNone(t *testing.T) {
	run := &fakeRunner{}
	r := NewRefresher(config.RefreshNone, run.run, nil, nil)
	require.NoError(t, r.Refresh(context.Background()))
	assert.Empty(t, run.calls)
}

func TestNotifySend(t *testing.T) {
	run := &fakeRunner{}
	n := NewNotifier(true, run.run)
	require.NoError(t, n.Notify(context.Background(), "build main", ""))
	require.Len(t, run.calls, 1)
	assert.Equal(t, "notify-send", run.calls[0].name)
	assert.Equal(t, []string{"-a", "i3configger", "-t", "1", "-u", "low", "build main"}, run.calls[0].args)

	run.err = errors.New("no daemon")
	assert.Error(t, n.Notify(context.Background(), "x", UrgencyCritical))

	_, isNop := NewNotifier(false, run.run).(Nop)
	assert.True(t, isNop)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 3, exitCode(&runError{err: exitErr(3), stderr: "x"}))
	assert.Equal(t, -1, exitCode(errors.New("plain")))
}
