package pages

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/inline"
	"git.home.luguber.info/inful/sitegen/internal/output"
	"git.home.luguber.info/inful/sitegen/internal/plugin"
	"git.home.luguber.info/inful/sitegen/internal/tmpl"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type site struct {
	root string
	out  string
}

func newSite(t *testing.T, files map[string]string) site {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ContentDir), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, tmpl.FilledMasterTemplateFile),
		[]byte(`<title>$title</title><main>$content</main><footer>$current_year</footer>`), 0o600))
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, ContentDir, name), []byte(body), 0o600))
	}
	return site{root: root, out: filepath.Join(t.TempDir(), "site")}
}

type echoEvaluator struct{}

func (echoEvaluator) Evaluate(_ context.Context, source, _ string) (string, error) {
	return strings.ToUpper(strings.TrimSpace(source)), nil
}

func quotes(_ context.Context, req plugin.Request) (string, error) {
	n, err := strconv.Atoi(req.Param("number", "3"))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for range n {
		b.WriteString("<blockquote>q</blockquote>")
	}
	return b.String(), nil
}

func newOrchestrator(t *testing.T, s site) *Orchestrator {
	t.Helper()
	reg := plugin.NewRegistry()
	require.NoError(t, reg.Register("testimonials", plugin.GeneratorFunc(quotes)))
	o, err := New(s.root, inline.NewRunner(echoEvaluator{}, s.root, quiet), plugin.NewExpander(reg, s.root, quiet), quiet)
	require.NoError(t, err)
	o.Now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	return o
}

func readOut(t *testing.T, s site, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(s.out, name))
	require.NoError(t, err)
	return string(data)
}

func TestBuildPages(t *testing.T) {
	s := newSite(t, map[string]string{
		"about.md":    "---\ntitle: About Us\n---\n# Heading\n\nWe sell *homes*.\n\n[script:testimonials number=2]\n",
		"contact.html": "<h1>Contact</h1><p><!--python hello python--></p>",
		"notes.txt":    "ignored",
		"plain.md":     "no heading here",
	})
	o := newOrchestrator(t, s)
	w := output.NewWriter(s.out)

	res, err := o.Build(context.Background(), w)
	require.NoError(t, err)
	assert.Equal(t, []string{"about.md", "contact.html", "plain.md"}, res.Written)
	assert.Equal(t, []string{"notes.txt"}, res.Skipped)
	assert.Empty(t, res.Failed)
	assert.Equal(t, 0, res.Warnings())
	assert.Equal(t, []string{"about.html", "contact.html", "plain.html"}, w.Set().Names())

	about := readOut(t, s, "about.html")
	assert.Contains(t, about, "<title>About Us</title>")
	assert.Contains(t, about, "<h1>Heading</h1>")
	assert.Contains(t, about, "<em>homes</em>")
	assert.Equal(t, 2, strings.Count(about, "<blockquote>"))
	assert.NotContains(t, about, "[script:")
	assert.Contains(t, about, "<footer>2024</footer>")

	contact := readOut(t, s, "contact.html")
	assert.Contains(t, contact, "<title>Contact</title>")
	assert.Contains(t, contact, "<p>HELLO</p>")

	assert.Contains(t, readOut(t, s, "plain.html"), "<title>plain</title>")
}

func TestBuildUnknownPluginLeavesMarker(t *testing.T) {
	s := newSite(t, map[string]string{"index.md": "Intro [plugin:missing] and the rest.\n"})
	o := newOrchestrator(t, s)

	res, err := o.Build(context.Background(), output.NewWriter(s.out))
	require.NoError(t, err)
	require.Equal(t, 1, res.Warnings())
	assert.ErrorIs(t, res.Issues[0], plugin.ErrPluginNotFound)

	page := readOut(t, s, "index.html")
	assert.Contains(t, page, `class="shortcode-error" data-plugin="missing"`)
	assert.Contains(t, page, "and the rest.")
}

func TestBuildPerFileFailureKeepsPreviousOutput(t *testing.T) {
	s := newSite(t, map[string]string{
		"bad.md":  "---\ntitle: [unclosed\n---\nbody",
		"good.md": "# Good",
	})
	require.NoError(t, os.MkdirAll(s.out, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(s.out, "bad.html"), []byte("previous"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(s.out, "stale.html"), []byte("stale"), 0o600))

	w := output.NewWriter(s.out)
	res, err := newOrchestrator(t, s).Build(context.Background(), w)
	require.NoError(t, err)
	assert.Equal(t, []string{"bad.md"}, res.Failed)
	assert.Equal(t, []string{"good.md"}, res.Written)

	pruned, err := w.Reconcile()
	require.NoError(t, err)
	assert.Equal(t, []string{"stale.html"}, pruned)
	assert.Equal(t, "previous", readOut(t, s, "bad.html"))
}

func TestBuildMapPage(t *testing.T) {
	s := newSite(t, map[string]string{"index.html": "<p>home</p>"})
	require.NoError(t, os.WriteFile(filepath.Join(s.root, tmpl.MapTemplateFile), []byte(`<div id="map">$unfilled</div>`), 0o600))

	w := output.NewWriter(s.out)
	_, err := newOrchestrator(t, s).Build(context.Background(), w)
	require.NoError(t, err)
	assert.True(t, w.Set().Has(MapPageFile))
	page := readOut(t, s, MapPageFile)
	assert.Contains(t, page, `<main><div id="map">$unfilled</div></main>`)
	assert.Contains(t, page, "<footer>2024</footer>")
}

func TestBuildIdempotent(t *testing.T) {
	s := newSite(t, map[string]string{"a.md": "# A", "b.html": "<p>b</p>"})
	o := newOrchestrator(t, s)

	var sets [][]string
	for range 2 {
		w := output.NewWriter(s.out)
		_, err := o.Build(context.Background(), w)
		require.NoError(t, err)
		_, err = w.Reconcile()
		require.NoError(t, err)
		sets = append(sets, w.Set().Names())
	}
	assert.Equal(t, sets[0], sets[1])
	entries, err := os.ReadDir(s.out)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestNewRequiresMasterAndPages(t *testing.T) {
	_, err := New(t.TempDir(), nil, nil, quiet)
	require.ErrorIs(t, err, tmpl.ErrMissingTemplate)

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, tmpl.FilledMasterTemplateFile), []byte("$content"), 0o600))
	o, err := New(root, nil, nil, quiet)
	require.NoError(t, err)
	_, err = o.Build(context.Background(), output.NewWriter(t.TempDir()))
	require.ErrorIs(t, err, ErrMissingContentDir)
}
