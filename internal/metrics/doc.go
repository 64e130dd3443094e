// Package metrics records build and watch loop activity.
//
// Components receive a Recorder and default to NoopRecorder, so no call site
// needs a nil check. When settings.metrics_addr is configured the daemon swaps
// in a PrometheusRecorder and serves its registry on /metrics.
package metrics
