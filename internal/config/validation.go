package config

import (
	"fmt"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
)

// Validate checks the configuration after defaults were applied.
func (c *Config) Validate() error {
	var problems []string

	if c.Index.PageSize < 1 {
		problems = append(problems, fmt.Sprintf("index.page_size must be positive, got %d", c.Index.PageSize))
	}
	if c.Plugins.Timeout < 0 {
		problems = append(problems, "plugins.timeout must not be negative")
	}
	if c.Schedule.Interval < 0 {
		problems = append(problems, "schedule.interval must not be negative")
	}
	if c.Inline.BeginMarker == c.Inline.EndMarker {
		problems = append(problems, "inline.begin_marker and inline.end_marker must differ")
	}
	for ext := range c.Plugins.Interpreters {
		if !strings.HasPrefix(ext, ".") {
			problems = append(problems, fmt.Sprintf("plugins.interpreters key %q must start with '.'", ext))
		}
	}

	namespaces := map[string]string{
		"output.pages":           c.Output.Pages,
		"output.listings_index":  c.Output.ListingsIndex,
		"output.listing_details": c.Output.ListingDetails,
	}
	// Reconciliation prunes every namespace, so no output may share a
	// directory with the sources it is built from.
	sources := map[string]string{filepath.Clean(c.TemplateDir): "template_dir"}
	for _, src := range [][2]string{{"data_file", c.DataFile}, {"feed_file", c.FeedFile}} {
		key, file := src[0], src[1]
		if file == "" {
			continue
		}
		dir := filepath.Dir(filepath.Clean(file))
		if _, ok := sources[dir]; !ok {
			sources[dir] = key
		}
	}

	owners := map[string]string{}
	for _, key := range []string{"output.pages", "output.listings_index", "output.listing_details"} {
		dir := filepath.Clean(namespaces[key])
		if src, ok := sources[dir]; ok {
			problems = append(problems, fmt.Sprintf("%s must not be the %s directory %s", key, src, dir))
			continue
		}
		if prev, ok := owners[dir]; ok {
			problems = append(problems, fmt.Sprintf("%s and %s share directory %s", prev, key, dir))
			continue
		}
		owners[dir] = key
	}

	if len(problems) == 0 {
		return nil
	}
	return ferrors.ValidationError("invalid configuration").
		WithCause(fmt.Errorf("%s", strings.Join(problems, "; "))).
		Build()
}
