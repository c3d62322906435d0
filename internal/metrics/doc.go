// Package metrics records build metrics.
//
// Components take a Recorder and default to NoopRecorder, so nothing needs a
// nil check. The preview server swaps in a PrometheusRecorder and exposes its
// registry through HTTPHandler.
package metrics
