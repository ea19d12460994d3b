package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyNamespace  = "namespace"
	KeyStage      = "stage"
	KeyFile       = "file"
	KeyPath       = "path"
	KeyPlugin     = "plugin"
	KeyOrdering   = "ordering"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

func BuildID(id string) slog.Attr       { return slog.String(KeyBuildID, id) }
func Namespace(ns string) slog.Attr     { return slog.String(KeyNamespace, ns) }
func Stage(name string) slog.Attr       { return slog.String(KeyStage, name) }
func File(name string) slog.Attr        { return slog.String(KeyFile, name) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func Plugin(name string) slog.Attr      { return slog.String(KeyPlugin, name) }
func Ordering(label string) slog.Attr   { return slog.String(KeyOrdering, label) }
func Count(n int) slog.Attr             { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr   { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
