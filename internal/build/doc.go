// Package build runs site build passes and hands their results to the
// configured sinks.
//
// A build is an ordered list of passes (master, pages, index, listings). Each
// pass writes into exactly one namespace directory through an output.Writer.
// Namespaces are reconciled only after every pass of the build returned
// without a fatal error, so a failed build never prunes previously valid
// output. Metrics, history, notifications and git publishing follow
// reconciliation; their failures are logged and never fail the build.
package build
