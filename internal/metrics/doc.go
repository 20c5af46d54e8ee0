// Package metrics records task timings and outcomes.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder. When `--metrics-file` is set the CLI swaps in a
// PrometheusRecorder and writes the registry in text exposition format on
// exit, so a node exporter textfile collector can pick it up.
package metrics
