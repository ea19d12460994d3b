// Package errors provides the classified error primitives used across sitegen.
//
// Errors carry a category (config, plugin, script, filesystem, ...), a severity
// that decides whether a build pass aborts, and structured context for logging.
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryPlugin, "plugin not found").
//		Warning().
//		WithContext("plugin", name).
//		Build()
package errors
