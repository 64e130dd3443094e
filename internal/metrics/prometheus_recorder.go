package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "i3configger"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	buildDuration *prom.HistogramVec
	buildOutcome  *prom.CounterVec
	suppressed    *prom.CounterVec
	events        *prom.CounterVec
	errorCount    prom.Gauge
	commands      *prom.CounterVec
	refreshes     *prom.CounterVec
}

// NewPrometheusRecorder creates the metrics and registers them, plus the Go
// runtime and process collectors, with reg. A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		buildDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Duration of target builds",
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"build"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Builds by definition and outcome",
		}, []string{"build", "outcome"}),
		suppressed: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "builds_suppressed_total",
			Help:      "Change events ignored by the debounce window",
		}, []string{"build"}),
		events: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Filesystem change events by kind",
		}, []string{"kind"}),
		errorCount: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "watch_errors",
			Help:      "Errors counted against the watch loop error budget",
		}),
		commands: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "state_commands_total",
			Help:      "State commands by name and outcome",
		}, []string{"command", "outcome"}),
		refreshes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Window manager refresh requests by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.buildDuration, pr.buildOutcome, pr.suppressed, pr.events, pr.errorCount, pr.commands, pr.refreshes)
	reg.MustRegister(promcollect.NewGoCollector(), promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
	return pr
}

func (p *PrometheusRecorder) ObserveBuildDuration(build string, d time.Duration) {
	p.buildDuration.WithLabelValues(build).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(build string, outcome Outcome) {
	p.buildOutcome.WithLabelValues(build, string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncBuildSuppressed(build string) {
	p.suppressed.WithLabelValues(build).Inc()
}

func (p *PrometheusRecorder) IncEvent(kind string) {
	p.events.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) SetErrorCount(n int) {
	p.errorCount.Set(float64(n))
}

func (p *PrometheusRecorder) IncStateCommand(command string, outcome Outcome) {
	p.commands.WithLabelValues(command, string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncRefresh(outcome Outcome) {
	p.refreshes.WithLabelValues(string(outcome)).Inc()
}
