package plugin

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
)

var namePattern = regexp.MustCompile(`^\w+$`)

// Registry maps plugin names to generators. It is populated once at startup
// and read for the rest of the build.
type Registry struct {
	units map[string]Generator
}

// NewRegistry creates a new empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{units: make(map[string]Generator)}
}

// Register adds a generator under name.
// Returns an error if the name is invalid or already taken.
func (r *Registry) Register(name string, g Generator) error {
	if g == nil {
		return fmt.Errorf("cannot register nil generator %q", name)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid plugin name %q", name)
	}
	if _, exists := r.units[name]; exists {
		return fmt.Errorf("plugin %s already registered", name)
	}
	r.units[name] = g
	return nil
}

// Has checks if a plugin with the given name exists.
func (r *Registry) Has(name string) bool {
	_, ok := r.units[name]
	return ok
}

// Names returns the registered plugin names in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.units))
}

// Invoke runs the named generator with params, rooted at root.
//
// It fails with ErrPluginNotFound for unknown names and passes contract
// violations through; every other failure, including a panic inside a Go
// generator, is wrapped as ErrPluginExecution.
func (r *Registry) Invoke(ctx context.Context, name string, params map[string]string, root string) (html string, err error) {
	g, ok := r.units[name]
	if !ok {
		return "", ErrPluginNotFound.WithContext("plugin", name)
	}

	defer func() {
		if rec := recover(); rec != nil {
			html, err = "", executionError(name, fmt.Errorf("panic: %v", rec))
		}
	}()

	if params == nil {
		params = map[string]string{}
	}
	out, err := g.Generate(ctx, Request{Name: name, Params: params, Root: root})
	if err != nil {
		if errors.Is(err, ErrPluginContract) {
			return "", err
		}
		return "", executionError(name, err)
	}
	return out, nil
}
