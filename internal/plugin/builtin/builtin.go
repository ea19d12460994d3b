// Package builtin provides the Go implementations of the stock site
// generators: testimonials, agents and featured listings. They read their
// data files relative to the site template root of each request.
package builtin

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/plugin"
)

// Default data file names, relative to the template root.
const (
	DefaultTestimonialsFile = "testimonials.json"
	DefaultSiteDataFile     = "data.json"
	DefaultFeedFile         = "mls_data.geojson"

	defaultCount = 3
)

// Files names the data documents read by the built-in generators.
type Files struct {
	Testimonials string
	SiteData     string
	Feed         string
}

func (f Files) withDefaults() Files {
	if f.Testimonials == "" {
		f.Testimonials = DefaultTestimonialsFile
	}
	if f.SiteData == "" {
		f.SiteData = DefaultSiteDataFile
	}
	if f.Feed == "" {
		f.Feed = DefaultFeedFile
	}
	return f
}

// Generators returns the built-in generators keyed by plugin name.
func Generators(files Files) map[string]plugin.Generator {
	files = files.withDefaults()
	return map[string]plugin.Generator{
		"testimonials": Testimonials{File: files.Testimonials},
		"agents":       Agents{File: files.SiteData},
		"listings":     Listings{File: files.Feed},
	}
}

// Register adds every built-in generator whose name is not already taken.
// Script units are registered first, so a site script overrides the Go
// version of the same name.
func Register(reg *plugin.Registry, files Files, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	gens := Generators(files)
	for _, name := range []string{"agents", "listings", "testimonials"} {
		if reg.Has(name) {
			logger.Debug("Built-in generator overridden by script unit", logfields.Plugin(name))
			continue
		}
		if err := reg.Register(name, gens[name]); err != nil {
			return err
		}
	}
	return nil
}

func resolve(root, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(root, file)
}

// count parses the "number" parameter. A negative count yields nothing.
func count(req plugin.Request) (int, error) {
	raw := req.Param("number", strconv.Itoa(defaultCount))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("number parameter %q is not an integer", raw)
	}
	return max(n, 0), nil
}

func ensureContext(ctx context.Context) error {
	return ctx.Err()
}
