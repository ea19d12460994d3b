package builtin

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/plugin"
)

const feedFixture = `{"type":"FeatureCollection","features":[
 {"type":"Feature","properties":{"mlsId":"A1","listPrice":1250000,"fullAddress":"1 Main St","bedrooms":3,"bathrooms":2,"area":1800,"listingPhoto":"a.jpg"}},
 {"type":"Feature","properties":{"mlsId":"B2","listPrice":499000,"fullAddress":{"prettyPrinted":"2 Oak Ave"},"bedrooms":2,"bathrooms":1,"area":900}},
 {"type":"Feature","properties":{"mlsId":"C3","fullAddress":"3 Elm Rd"}}
]}`

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func newRegistry(t *testing.T) *plugin.Registry {
	t.Helper()
	reg := plugin.NewRegistry()
	require.NoError(t, Register(reg, Files{}, slog.New(slog.NewTextHandler(io.Discard, nil))))
	return reg
}

func TestRegisterSkipsTakenNames(t *testing.T) {
	reg := plugin.NewRegistry()
	custom := plugin.GeneratorFunc(func(context.Context, plugin.Request) (string, error) { return "custom", nil })
	require.NoError(t, reg.Register("agents", custom))
	require.NoError(t, Register(reg, Files{}, nil))

	assert.Equal(t, []string{"agents", "listings", "testimonials"}, reg.Names())
	out, err := reg.Invoke(context.Background(), "agents", nil, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "custom", out)
}

func TestListingsGenerator(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, DefaultFeedFile, feedFixture)
	reg := newRegistry(t)

	out, err := reg.Invoke(context.Background(), "listings", map[string]string{"number": "2"}, root)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, `class="re-listing-item"`))
	assert.Contains(t, out, "Price: $1,250,000")
	assert.Contains(t, out, `<a href="/listing/listing_A1.html">More Information</a>`)
	assert.Contains(t, out, "<p>2 Oak Ave</p>")
	assert.NotContains(t, out, "C3")

	out, err = reg.Invoke(context.Background(), "listings", nil, root)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, `class="re-listing-item"`))
	assert.Contains(t, out, `<p class="re-listing-price">Price: </p>`)
}

func TestListingsGeneratorErrors(t *testing.T) {
	root := t.TempDir()
	reg := newRegistry(t)

	_, err := reg.Invoke(context.Background(), "listings", nil, root)
	require.ErrorIs(t, err, plugin.ErrPluginExecution)

	writeFile(t, root, DefaultFeedFile, feedFixture)
	_, err = reg.Invoke(context.Background(), "listings", map[string]string{"number": "many"}, root)
	require.ErrorIs(t, err, plugin.ErrPluginExecution)
	assert.Contains(t, err.Error(), "not an integer")
}

func TestTestimonialsGenerator(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, DefaultTestimonialsFile, `[
	 {"name":"Ann","testimonial":"Great <service>","date":"2024-01-01"},
	 {"name":"Bob","testimonial":"Fast","date":"2024-02-01"},
	 {"name":"Cy","testimonial":"Kind","date":"2024-03-01"},
	 {"name":"Di","testimonial":"Fair","date":"2024-04-01"}]`)
	reg := newRegistry(t)

	out, err := reg.Invoke(context.Background(), "testimonials", nil, root)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, `<blockquote class="testimonial">`))
	assert.Contains(t, out, `<p>"Great &lt;service&gt;"</p>`)
	assert.Contains(t, out, "<cite>– Ann</cite>")
	assert.NotContains(t, out, "Di")

	out, err = reg.Invoke(context.Background(), "testimonials", map[string]string{"number": "1"}, root)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "<blockquote"))
}

func TestAgentsGenerator(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, DefaultSiteDataFile, `{"agents":[
	 {"name":"Jane Roe","title":"Broker","license_number":"L-1","bio":"Bio","phone":"555-0100","email":"jane@example.com","profile_photo_url":"jane.jpg"}],
	 "phone":"555-0000","email":"office@example.com"}`)
	reg := newRegistry(t)

	out, err := reg.Invoke(context.Background(), "agents", nil, root)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<style>"))
	assert.Contains(t, out, "<h3>Jane Roe</h3>")
	assert.Contains(t, out, "License: L-1")
	assert.Contains(t, out, `<a href="tel:555-0100">Phone: 555-0100</a>`)
	assert.Contains(t, out, `<a href="mailto:jane@example.com">`)
}
