package master

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/listing"
	"git.home.luguber.info/inful/sitegen/internal/tmpl"
)

func TestTopBar(t *testing.T) {
	data := &listing.SiteData{
		Phone: "555-0100",
		Email: "hi@example.com",
		SocialMedia: map[string]string{
			"Twitter":  "https://x.example/agent",
			"Facebook": "https://fb.example/agent",
			"LinkedIn": "",
		},
	}
	want := "<a href=\"tel:555-0100\"><i class=\"fas fa-phone\"></i> 555-0100</a>\n" +
		"<a href=\"mailto:hi@example.com\"><i class=\"fas fa-envelope\"></i> hi@example.com</a>\n" +
		"<a href=\"https://fb.example/agent\" target=\"_blank\"><i class=\"fab fa-facebook\"></i></a>\n" +
		"<a href=\"https://x.example/agent\" target=\"_blank\"><i class=\"fab fa-twitter\"></i></a>\n"
	assert.Equal(t, want, TopBar(data))
	assert.Empty(t, TopBar(&listing.SiteData{}))
}

func TestFillFromFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, tmpl.MasterTemplateFile),
		[]byte(`<header>$top_bar_content</header><title>$title</title><main>$content</main><footer>&copy; $current_year $email</footer>`), 0o600))
	dataFile := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(dataFile, []byte(`{"phone":"555","email":"a@b.c","agents":[]}`), 0o600))

	now := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	changed, err := FillFromFile(dir, dataFile, now)
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(filepath.Join(dir, tmpl.FilledMasterTemplateFile))
	require.NoError(t, err)
	filled := string(data)
	assert.Contains(t, filled, "<title>$title</title><main>$content</main>")
	assert.Contains(t, filled, "&copy; 2025 a@b.c")
	assert.Contains(t, filled, `<a href="tel:555">`)

	changed, err = FillFromFile(dir, dataFile, now)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestFillMissingInputs(t *testing.T) {
	dir := t.TempDir()
	_, err := Fill(dir, &listing.SiteData{}, time.Now())
	require.ErrorIs(t, err, tmpl.ErrMissingTemplate)

	_, err = FillFromFile(dir, filepath.Join(dir, "missing.json"), time.Now())
	require.ErrorIs(t, err, listing.ErrMissingSourceData)
}
