package plugin

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// Expander replaces shortcodes in content with generator output.
type Expander struct {
	Registry *Registry
	// Root is passed to every generator as the site template root.
	Root   string
	Logger *slog.Logger
}

// NewExpander creates an expander bound to registry and root.
func NewExpander(registry *Registry, root string, logger *slog.Logger) *Expander {
	if logger == nil {
		logger = slog.Default()
	}
	return &Expander{Registry: registry, Root: root, Logger: logger}
}

// Expand replaces every shortcode in content. Problems never abort the
// expansion: unknown plugins and failing plugins leave a visible marker,
// malformed shortcodes are left as written. All of them are logged and
// returned as issues.
func (e *Expander) Expand(ctx context.Context, file, content string) (string, []error) {
	var issues []error
	out := shortcodePattern.ReplaceAllStringFunc(content, func(raw string) string {
		inv, err := ParseShortcode(raw)
		if err != nil {
			e.Logger.Warn("Malformed shortcode left unexpanded",
				logfields.File(file), slog.String("shortcode", raw), logfields.Error(err))
			issues = append(issues, err)
			return raw
		}

		html, err := e.Registry.Invoke(ctx, inv.Name, inv.Params, e.Root)
		if err == nil {
			return html
		}
		issues = append(issues, err)
		e.Logger.Warn("Shortcode expansion failed",
			logfields.File(file), logfields.Plugin(inv.Name), logfields.Error(err))
		return Marker(inv.Name, err)
	})
	return out, issues
}

// Marker renders the inline notice that replaces a failed shortcode.
func Marker(name string, err error) string {
	var reason string
	switch {
	case errors.Is(err, ErrPluginNotFound):
		reason = "unknown plugin"
	case errors.Is(err, ErrPluginContract):
		reason = "plugin has no generate entry point"
	default:
		reason = "plugin failed"
	}
	return fmt.Sprintf(`<span class="shortcode-error" data-plugin="%s">[%s: %s]</span>`,
		html.EscapeString(name), reason, html.EscapeString(name))
}

// Find returns the shortcodes present in content, in order.
func Find(content string) []string {
	return shortcodePattern.FindAllString(content, -1)
}
