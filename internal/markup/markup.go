// Package markup converts content files to HTML.
//
// Markdown goes through goldmark with GFM extensions and raw HTML passthrough,
// so markup that shortcodes or inline scripts already expanded into the source
// survives conversion. HTML input is returned unchanged.
package markup

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
)

// Kind identifies the source markup of a content file.
type Kind string

const (
	KindMarkdown Kind = "markdown"
	KindHTML     Kind = "html"
	KindUnknown  Kind = ""
)

// ErrUnknownKind is returned for files whose extension maps to no markup kind.
var ErrUnknownKind = ferrors.NewError(ferrors.CategoryValidation, "unknown content kind").Warning().Build()

// KindOf maps a file name to its markup kind by extension.
func KindOf(name string) Kind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return KindMarkdown
	case ".html", ".htm":
		return KindHTML
	default:
		return KindUnknown
	}
}

// OutputName maps a content file name to the name of its rendered page:
// markdown files become .html, HTML files keep their name.
func OutputName(name string) (string, bool) {
	switch KindOf(name) {
	case KindMarkdown:
		return strings.TrimSuffix(name, filepath.Ext(name)) + ".html", true
	case KindHTML:
		return name, true
	default:
		return "", false
	}
}

// Converter renders content to HTML.
type Converter struct {
	md goldmark.Markdown
}

// NewConverter creates a converter with the default goldmark configuration.
func NewConverter() *Converter {
	return &Converter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// ToHTML converts text of the given kind to HTML.
func (c *Converter) ToHTML(text string, kind Kind) (string, error) {
	switch kind {
	case KindHTML:
		return text, nil
	case KindMarkdown:
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(text), &buf); err != nil {
			return "", ferrors.WrapError(err, ferrors.CategoryBuild, "markdown conversion failed").Build()
		}
		return buf.String(), nil
	default:
		return "", ErrUnknownKind.WithContext("kind", string(kind))
	}
}
