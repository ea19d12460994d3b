// Package tmpl implements the placeholder substitution used by every page template.
//
// Placeholders are `$name` or `${name}` where name matches [_A-Za-z][_A-Za-z0-9]*.
// `$$` renders a literal `$`. Substitution is safe: a name absent from the value
// map is left untouched, so the same template can be filled in several stages
// (for example site chrome first, page content later).
package tmpl

import (
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\$(?:(\$)|([_A-Za-z][_A-Za-z0-9]*)|\{([_A-Za-z][_A-Za-z0-9]*)\})`)

// Template is an immutable template text with named placeholders.
type Template struct {
	name string
	text string
}

// New wraps text as a template. name is used only for diagnostics.
func New(name, text string) *Template {
	return &Template{name: name, text: text}
}

// Name returns the template's diagnostic name.
func (t *Template) Name() string { return t.name }

// Text returns the raw template text.
func (t *Template) Text() string { return t.text }

// Render substitutes values into the template.
func (t *Template) Render(values Values) string {
	return Render(t.text, values)
}

// Placeholders returns the distinct placeholder names in order of first use.
func (t *Template) Placeholders() []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(t.text, -1) {
		name := m[2]
		if name == "" {
			name = m[3]
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// Render substitutes values into text. Names missing from values are left as
// literal placeholder text.
func Render(text string, values Values) string {
	matches := placeholderPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])
		last = m[1]

		if m[2] >= 0 {
			b.WriteByte('$')
			continue
		}
		var name string
		if m[4] >= 0 {
			name = text[m[4]:m[5]]
		} else {
			name = text[m[6]:m[7]]
		}
		if v, ok := values[name]; ok {
			b.WriteString(v)
		} else {
			b.WriteString(text[m[0]:m[1]])
		}
	}
	b.WriteString(text[last:])
	return b.String()
}
