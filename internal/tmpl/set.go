package tmpl

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
)

// Template file names inside a template directory.
const (
	MasterTemplateFile         = "master_template.html"
	FilledMasterTemplateFile   = "filled_master_template.html"
	ListingRowTemplateFile     = "listing_template.html"
	ListingContentTemplateFile = "listing_content_template.html"
	AttributionTemplateFile    = "mls-attribution.html"
	MapTemplateFile            = "map_template.html"
)

// ErrMissingTemplate is returned (wrapped with the path) when a required template file is absent.
var ErrMissingTemplate = ferrors.NotFoundError("template missing").Build()

// Load reads a template file from dir. A missing file yields ErrMissingTemplate.
func Load(dir, name string) (*Template, error) {
	path := filepath.Join(dir, name)
	// #nosec G304 -- template directory is operator supplied.
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrMissingTemplate.WithContext("path", path)
		}
		return nil, ferrors.TemplateError("read template").
			Fatal().
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return New(name, string(data)), nil
}

// LoadOptional reads a template file from dir, returning nil when it does not exist.
func LoadOptional(dir, name string) (*Template, error) {
	t, err := Load(dir, name)
	if errors.Is(err, ErrMissingTemplate) {
		return nil, nil
	}
	return t, err
}

// LoadAll loads every named template, failing on the first missing one.
func LoadAll(dir string, names ...string) (map[string]*Template, error) {
	out := make(map[string]*Template, len(names))
	for _, name := range names {
		t, err := Load(dir, name)
		if err != nil {
			return nil, err
		}
		out[name] = t
	}
	return out, nil
}
