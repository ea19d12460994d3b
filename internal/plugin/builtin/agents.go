package builtin

import (
	"context"
	"fmt"
	"html"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/listing"
	"git.home.luguber.info/inful/sitegen/internal/plugin"
)

const agentsStyle = `<style>
.custom-agents-section { padding: 20px; background-color: #f5f5f5; }
.custom-agents-grid { display: flex; flex-wrap: wrap; gap: 20px; justify-content: center; }
.custom-agent-item { background-color: #ffffff; padding: 15px; border: 1px solid #ddd; border-radius: 5px; text-align: center; box-sizing: border-box; width: calc(33.333% - 20px); margin-bottom: 20px; }
.custom-agent-item img { max-width: 100%; height: auto; border-radius: 50%; }
.custom-agent-content { display: flex; flex-direction: column; justify-content: space-between; }
.custom-agent-title, .custom-agent-contact, .custom-agent-license { font-weight: bold; color: #333; }
.custom-agent-bio { font-size: 14px; color: #666; }
.custom-agent-contact a { color: #0066cc; text-decoration: none; }
.custom-agent-contact a:hover { text-decoration: underline; }
@media (max-width: 967px) { .custom-agent-item { width: calc(50% - 20px); } }
@media (max-width: 680px) { .custom-agent-item { width: 100%; } }
</style>
`

// Agents renders a card for every agent in the site-data document.
type Agents struct {
	File string
}

// Generate implements plugin.Generator.
func (g Agents) Generate(ctx context.Context, req plugin.Request) (string, error) {
	if err := ensureContext(ctx); err != nil {
		return "", err
	}
	data, err := listing.LoadSiteData(resolve(req.Root, g.File))
	if err != nil {
		return "", err
	}

	e := html.EscapeString
	var b strings.Builder
	b.WriteString(agentsStyle)
	b.WriteString("<section class=\"custom-agents-section\">\n<div class=\"custom-agents-grid\">\n")
	for _, a := range data.Agents {
		b.WriteString("  <div class=\"custom-agent-item\">\n")
		fmt.Fprintf(&b, "    <img src=\"%s\" alt=\"%s\">\n<br>", e(a.ProfilePhotoURL), e(a.Name))
		b.WriteString("    <div class=\"custom-agent-content\">\n")
		fmt.Fprintf(&b, "      <h3>%s</h3>\n", e(a.Name))
		fmt.Fprintf(&b, "      <p class=\"custom-agent-title\">%s</p>\n", e(a.Title))
		fmt.Fprintf(&b, "      <p class=\"custom-agent-license\">License: %s</p>\n", e(a.LicenseNumber))
		fmt.Fprintf(&b, "      <p class=\"custom-agent-bio\">%s</p>\n", e(a.Bio))
		fmt.Fprintf(&b, "      <p class=\"custom-agent-contact\"><a href=\"tel:%s\">Phone: %s</a></p>\n", e(a.Phone), e(a.Phone))
		fmt.Fprintf(&b, "      <p class=\"custom-agent-contact\"><a href=\"mailto:%s\">Email: %s</a></p>\n", e(a.Email), e(a.Email))
		b.WriteString("    </div>\n  </div>\n")
	}
	b.WriteString("</div>\n</section>")
	return b.String(), nil
}
