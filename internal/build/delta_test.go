package build

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/config"
)

func TestPlan(t *testing.T) {
	root := t.TempDir()
	cfg := &config.Config{TemplateDir: filepath.Join(root, "template")}
	require.NoError(t, config.NewDefaultApplier().ApplyDefaults(cfg))
	in := func(parts ...string) string { return filepath.Join(append([]string{cfg.TemplateDir}, parts...)...) }

	tests := []struct {
		name    string
		changed []string
		want    []Pass
	}{
		{"empty", nil, AllPasses()},
		{"page", []string{in("pages", "about.md")}, []Pass{PassPages}},
		{"script", []string{in("scripts", "agents.py")}, []Pass{PassPages}},
		{"testimonials", []string{in("testimonials.json")}, []Pass{PassPages}},
		{"row template", []string{in("listing_template.html")}, []Pass{PassIndex}},
		{"detail templates", []string{in("listing_content_template.html"), in("mls-attribution.html")}, []Pass{PassListings}},
		{"feed", []string{cfg.FeedFile}, []Pass{PassPages, PassIndex, PassListings}},
		{"site data", []string{cfg.DataFile}, AllPasses()},
		{"master", []string{in("master_template.html"), in("pages", "a.md")}, AllPasses()},
		{"row and page", []string{in("listing_template.html"), in("pages", "a.md")}, []Pass{PassPages, PassIndex}},
		{"unknown", []string{in("notes.txt")}, AllPasses()},
		{"outside", []string{filepath.Join(root, "elsewhere.html")}, AllPasses()},
		{"nested", []string{in("pages", "drafts", "x.md")}, AllPasses()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Plan(cfg, tt.changed).Passes)
		})
	}
}
