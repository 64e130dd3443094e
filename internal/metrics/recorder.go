package metrics

import "time"

// Outcome labels the result of a build or command.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// OutcomeOf maps an error to its outcome label.
func OutcomeOf(err error) Outcome {
	if err != nil {
		return OutcomeFailed
	}
	return OutcomeSuccess
}

// Recorder defines the observability hooks of the daemon.
type Recorder interface {
	ObserveBuildDuration(build string, d time.Duration)
	IncBuildOutcome(build string, outcome Outcome)
	IncBuildSuppressed(build string)
	IncEvent(kind string)
	SetErrorCount(n int)
	IncStateCommand(command string, outcome Outcome)
	IncRefresh(outcome Outcome)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(string, time.Duration) {}
func (NoopRecorder) IncBuildOutcome(string, Outcome)            {}
func (NoopRecorder) IncBuildSuppressed(string)                  {}
func (NoopRecorder) IncEvent(string)                            {}
func (NoopRecorder) SetErrorCount(int)                          {}
func (NoopRecorder) IncStateCommand(string, Outcome)            {}
func (NoopRecorder) IncRefresh(Outcome)                         {}
