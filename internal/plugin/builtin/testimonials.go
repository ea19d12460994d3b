package builtin

import (
	"context"
	"fmt"
	"html"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/listing"
	"git.home.luguber.info/inful/sitegen/internal/plugin"
)

// Testimonials renders the first N client quotes.
type Testimonials struct {
	File string
}

// Generate implements plugin.Generator.
func (g Testimonials) Generate(ctx context.Context, req plugin.Request) (string, error) {
	if err := ensureContext(ctx); err != nil {
		return "", err
	}
	n, err := count(req)
	if err != nil {
		return "", err
	}
	items, err := listing.LoadTestimonials(resolve(req.Root, g.File))
	if err != nil {
		return "", err
	}
	if n < len(items) {
		items = items[:n]
	}

	var b strings.Builder
	b.WriteString("<section class=\"testimonials\">\n<h2>Client Testimonials</h2>\n<div class=\"testimonials-grid\">\n")
	for _, t := range items {
		fmt.Fprintf(&b, "<blockquote class=\"testimonial\">\n<p>\"%s\"</p>\n", html.EscapeString(t.Testimonial))
		fmt.Fprintf(&b, "<cite>– %s</cite>\n</blockquote>\n", html.EscapeString(t.Name))
	}
	b.WriteString("</div>\n</section>")
	return b.String(), nil
}
