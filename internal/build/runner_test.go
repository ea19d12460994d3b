package build

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/config"
	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/history"
	"git.home.luguber.info/inful/sitegen/internal/notify"
	"git.home.luguber.info/inful/sitegen/internal/publish"
	"git.home.luguber.info/inful/sitegen/internal/tmpl"
)

const feed = `{"type":"FeatureCollection","features":[
 {"type":"Feature","properties":{"mlsId":"A1","listPrice":300000,"fullAddress":"1 Main St","remarks":"Cozy"}},
 {"type":"Feature","properties":{"mlsId":"B2","listPrice":500000,"fullAddress":"2 Oak Ave"}},
 {"type":"Feature","properties":{"mlsId":"C3","listPrice":400000,"fullAddress":"3 Pine Rd"}}
]}`

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	}
}

func newFixture(t *testing.T, pageFiles map[string]string) *config.Config {
	t.Helper()
	root := t.TempDir()
	tdir := filepath.Join(root, "template")
	writeFiles(t, tdir, map[string]string{
		tmpl.MasterTemplateFile:         `<header>$top_bar_content</header><title>$title</title><main>$content</main><footer>$current_year</footer>`,
		tmpl.ListingRowTemplateFile:     `<tr id="$mlsId"><td>$listPrice</td></tr>`,
		tmpl.ListingContentTemplateFile: `<h1>$address</h1><p>$remarks</p>$mls_attribution`,
		tmpl.AttributionTemplateFile:    `<small>$last_updated_date</small>`,
		"data.json":                     `{"phone":"555-0100","email":"a@b.c","social_media":{"x":"https://x.example"}}`,
		"mls_data.geojson":              feed,
		"testimonials.json":             `[{"name":"Ann","testimonial":"Great"},{"name":"Bo","testimonial":"Fine"}]`,
	})
	if pageFiles == nil {
		pageFiles = map[string]string{"index.md": "# Home\n\n[plugin:testimonials number=1]\n"}
	}
	for name, body := range pageFiles {
		writeFiles(t, filepath.Join(tdir, "pages"), map[string]string{name: body})
	}

	cfg := &config.Config{TemplateDir: tdir, Output: config.OutputConfig{Pages: filepath.Join(root, "site")}}
	require.NoError(t, config.NewDefaultApplier().ApplyDefaults(cfg))
	return cfg
}

type recordingNotifier struct{ events []notify.Event }

func (n *recordingNotifier) Publish(_ context.Context, ev notify.Event) error {
	n.events = append(n.events, ev)
	return nil
}
func (n *recordingNotifier) Close() {}

type failingNotifier struct{}

func (failingNotifier) Publish(context.Context, notify.Event) error { return errors.New("broker down") }
func (failingNotifier) Close()                                      {}

func newTestRunner(t *testing.T, cfg *config.Config) *Runner {
	t.Helper()
	r := NewRunner(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.Now = func() time.Time { return time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC) }
	ids := 0
	r.NewID = func() string {
		ids++
		return "build-" + string(rune('0'+ids))
	}
	return r
}

func TestRunAllPasses(t *testing.T) {
	cfg := newFixture(t, nil)
	writeFiles(t, cfg.Output.Pages, map[string]string{"stale.html": "old"})

	store, err := history.Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	notifier := &recordingNotifier{}

	r := newTestRunner(t, cfg)
	r.History = store
	r.Notifier = notifier
	r.Committer = &publish.Committer{AuthorName: "sitegen", AuthorEmail: "sitegen@localhost"}

	rep, err := r.Run(context.Background(), AllPasses()...)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, rep.Outcome)
	require.Len(t, rep.Passes, 4)

	filled, err := os.ReadFile(filepath.Join(cfg.TemplateDir, tmpl.FilledMasterTemplateFile))
	require.NoError(t, err)
	assert.Contains(t, string(filled), `href="tel:555-0100"`)
	assert.Contains(t, string(filled), "$content")

	home, err := os.ReadFile(filepath.Join(cfg.Output.Pages, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(home), "<title>Home</title>")
	assert.Contains(t, string(home), `<blockquote class="testimonial">`)
	assert.Contains(t, string(home), "<footer>2024</footer>")

	assert.Equal(t, []string{"stale.html"}, rep.Pass(PassPages).Pruned)
	assert.NoFileExists(t, filepath.Join(cfg.Output.Pages, "stale.html"))

	assert.Len(t, rep.Pass(PassIndex).Produced, 3)
	assert.FileExists(t, filepath.Join(cfg.Output.ListingsIndex, "index.html"))
	assert.Equal(t, []string{"listing_A1.html", "listing_B2.html", "listing_C3.html"}, rep.Pass(PassListings).Produced)

	entries, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, entries, 4)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, rep.BuildID, notifier.events[0].BuildID)
	assert.Len(t, notifier.events[0].Namespaces, 4)

	assert.DirExists(t, filepath.Join(cfg.Output.Pages, ".git"))
	assert.NoDirExists(t, filepath.Join(cfg.Output.ListingsIndex, ".git"))
}

func TestRunIsIdempotent(t *testing.T) {
	cfg := newFixture(t, nil)
	r := newTestRunner(t, cfg)

	first, err := r.Run(context.Background(), AllPasses()...)
	require.NoError(t, err)
	second, err := r.Run(context.Background(), AllPasses()...)
	require.NoError(t, err)

	for i, p := range second.Passes {
		assert.Equal(t, first.Passes[i].Produced, p.Produced, p.Pass)
		assert.Zero(t, p.Changed, p.Pass)
		assert.Empty(t, p.Pruned, p.Pass)
	}
}

func TestRunFatalPassSkipsReconcile(t *testing.T) {
	cfg := newFixture(t, nil)
	writeFiles(t, cfg.Output.Pages, map[string]string{"stale.html": "old"})
	require.NoError(t, os.Remove(cfg.FeedFile))

	notifier := &recordingNotifier{}
	r := newTestRunner(t, cfg)
	r.Notifier = notifier

	rep, err := r.Run(context.Background(), PassPages, PassIndex, PassListings)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
	assert.Equal(t, OutcomeFailed, rep.Outcome)
	assert.Len(t, rep.Passes, 2)
	assert.FileExists(t, filepath.Join(cfg.Output.Pages, "stale.html"))
	assert.Empty(t, notifier.events)
}

func TestRunUnusableListingIDStillReconciles(t *testing.T) {
	cfg := newFixture(t, nil)
	writeFiles(t, cfg.TemplateDir, map[string]string{"mls_data.geojson": `{"type":"FeatureCollection","features":[
 {"type":"Feature","properties":{"mlsId":"A1","fullAddress":"1 Main St"}},
 {"type":"Feature","properties":{"mlsId":"X/9","fullAddress":"9 Slash Rd"}}
]}`})
	writeFiles(t, cfg.Output.ListingDetails, map[string]string{"listing_OLD.html": "old"})

	rep, err := newTestRunner(t, cfg).Run(context.Background(), AllPasses()...)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, rep.Outcome)
	assert.Equal(t, []string{"listing_A1.html"}, rep.Pass(PassListings).Produced)
	assert.Equal(t, []string{"listing_OLD.html"}, rep.Pass(PassListings).Pruned)
	assert.NoFileExists(t, filepath.Join(cfg.Output.ListingDetails, "listing_OLD.html"))
}

func TestRunWarningsFromPages(t *testing.T) {
	cfg := newFixture(t, map[string]string{"about.md": "# About\n\n[plugin:nope]\n"})
	r := newTestRunner(t, cfg)
	r.Notifier = failingNotifier{}

	rep, err := r.Run(context.Background(), PassPages)
	require.NoError(t, err)
	assert.Equal(t, OutcomeWarning, rep.Outcome)
	assert.Equal(t, 1, rep.Pass(PassPages).Warnings())
	assert.Len(t, rep.Warnings, 1)

	about, err := os.ReadFile(filepath.Join(cfg.Output.Pages, "about.html"))
	require.NoError(t, err)
	assert.Contains(t, string(about), `data-plugin="nope"`)
}

func TestRunScriptOverridesBuiltin(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("sh not available")
	}
	cfg := newFixture(t, nil)
	writeFiles(t, cfg.TemplateDir, map[string]string{"scripts/testimonials.sh": "echo '<p>from script</p>'\n"})

	rep, err := newTestRunner(t, cfg).Run(context.Background(), PassPages)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, rep.Outcome)

	home, err := os.ReadFile(filepath.Join(cfg.Output.Pages, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(home), "<p>from script</p>")
	assert.NotContains(t, string(home), "<blockquote")
}

func TestRunCanceled(t *testing.T) {
	cfg := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := newTestRunner(t, cfg).Run(ctx, AllPasses()...)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, OutcomeCanceled, rep.Outcome)
	assert.Empty(t, rep.Passes)
}

func TestRunUnknownPass(t *testing.T) {
	rep, err := newTestRunner(t, newFixture(t, nil)).Run(context.Background(), Pass("bogus"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryBuild))
	assert.Equal(t, OutcomeFailed, rep.Outcome)
}

func TestPublishRoots(t *testing.T) {
	base := t.TempDir()
	rep := &Report{Passes: []*PassReport{
		{Pass: PassMaster, Dir: filepath.Join(base, "template")},
		{Pass: PassPages, Dir: filepath.Join(base, "site")},
		{Pass: PassIndex, Dir: filepath.Join(base, "site", "listings")},
		{Pass: PassListings, Dir: filepath.Join(base, "details")},
	}}
	assert.Equal(t, []string{filepath.Join(base, "site"), filepath.Join(base, "details")}, publishRoots(rep))
}

func TestSummary(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rep := &Report{BuildID: "b", Start: start, End: start.Add(1500 * time.Millisecond),
		Passes: []*PassReport{{Pass: PassPages, Dir: "site", Produced: []string{"a.html"}, Changed: 1}}}
	rep.deriveOutcome(false)
	assert.Equal(t, "build b success in 1.5s\n  pages    produced=1 changed=1 pruned=0 warnings=0 dir=site", rep.Summary())
}
