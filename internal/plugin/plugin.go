// Package plugin resolves shortcode names to content generators and expands
// shortcodes in page content.
//
// Generators are registered by name once at startup: built-in Go generators
// plus one script unit per file found under the template root's "scripts"
// directory. Every invocation receives the site root explicitly; nothing
// relies on the process working directory.
package plugin

import (
	"context"
	"fmt"

	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
)

// ScriptsDir is the namespace directory, relative to the template root, scanned for script units.
const ScriptsDir = "scripts"

// Request carries one shortcode invocation to a generator.
type Request struct {
	// Name is the plugin name the shortcode referenced.
	Name string
	// Params holds the shortcode's key=value pairs.
	Params map[string]string
	// Root is the site template root. Relative reads resolve against it.
	Root string
}

// Param returns the named parameter or def when it is absent or empty.
func (r Request) Param(key, def string) string {
	if v, ok := r.Params[key]; ok && v != "" {
		return v
	}
	return def
}

// Generator produces an HTML fragment for a shortcode.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

var (
	// ErrPluginNotFound is returned when a shortcode names an unregistered plugin.
	ErrPluginNotFound = ferrors.PluginError("plugin not found").Build()
	// ErrPluginContract is returned when a unit lacks the generate entry point.
	ErrPluginContract = ferrors.PluginError("plugin contract violation").Build()
	// ErrPluginExecution wraps any failure raised while a generator runs.
	ErrPluginExecution = ferrors.PluginError("plugin execution failed").Build()
	// ErrMalformedShortcode is returned for shortcodes whose parameters cannot be parsed.
	ErrMalformedShortcode = ferrors.PluginError("malformed shortcode").Build()
)

func contractError(name, reason string) error {
	return ferrors.PluginError(ErrPluginContract.Message()).
		WithContext("plugin", name).
		WithCause(fmt.Errorf("%s", reason)).
		Build()
}

func executionError(name string, cause error) error {
	return ferrors.PluginError(ErrPluginExecution.Message()).
		WithContext("plugin", name).
		WithCause(cause).
		Build()
}
