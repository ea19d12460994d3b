// Package metrics records build pass metrics.
//
// Components receive a Recorder; NoopRecorder is the default when metrics are
// not configured. PrometheusRecorder registers its collectors on a dedicated
// registry, which WriteTextfile exports in the Prometheus text format for a
// node_exporter textfile collector after each pass.
package metrics
