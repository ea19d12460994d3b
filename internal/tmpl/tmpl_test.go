package tmpl

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
)

func TestRenderSubstitutesBareAndBraced(t *testing.T) {
	out := Render("<title>$title</title><p>${content}x</p>", Values{"title": "Home", "content": "Hi"})
	assert.Equal(t, "<title>Home</title><p>Hix</p>", out)
}

func TestRenderLeavesMissingNamesLiteral(t *testing.T) {
	cases := []string{
		"$content",
		"${content}",
		"before $missing after ${other}",
		"price $ 100",
		"trailing $",
	}
	for _, text := range cases {
		t.Run(text, func(t *testing.T) {
			assert.Equal(t, text, Render(text, Values{"unrelated": "x"}))
		})
	}
}

func TestRenderMultiStage(t *testing.T) {
	master := New("master", "<footer>$current_year</footer><main>$content</main>")

	stage1 := master.Render(Values{"current_year": "2026"})
	require.Equal(t, "<footer>2026</footer><main>$content</main>", stage1)

	stage2 := Render(stage1, Values{"content": "<p>body</p>"})
	assert.Equal(t, "<footer>2026</footer><main><p>body</p></main>", stage2)
}

func TestRenderDollarEscape(t *testing.T) {
	assert.Equal(t, "costs $5", Render("costs $$5", nil))
}

func TestRenderValueIsNotReexpanded(t *testing.T) {
	assert.Equal(t, "$title", Render("$content", Values{"content": "$title", "title": "no"}))
}

func TestPlaceholders(t *testing.T) {
	tpl := New("t", "$a ${b} $$ $a ${c}")
	assert.Equal(t, []string{"a", "b", "c"}, tpl.Placeholders())
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "3", Stringify(json.Number("3")))
	assert.Equal(t, "2.5", Stringify(2.5))
	assert.Equal(t, "450000", Stringify(float64(450000)))
	assert.Equal(t, "true", Stringify(true))
	assert.Equal(t, `["a","b"]`, Stringify([]any{"a", "b"}))
}

func TestFromMapNormalizesNil(t *testing.T) {
	v := FromMap(map[string]any{"view": nil, "beds": json.Number("4")})
	assert.Equal(t, Values{"view": "", "beds": "4"}, v)
}

func TestLoadMissingTemplate(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir, MasterTemplateFile)
	require.ErrorIs(t, err, ErrMissingTemplate)

	tpl, err := LoadOptional(dir, MapTemplateFile)
	require.NoError(t, err)
	assert.Nil(t, tpl)
}

func TestLoadUnreadableTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, MasterTemplateFile), 0o750))

	_, err := Load(dir, MasterTemplateFile)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingTemplate)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryTemplate))
	assert.Equal(t, 11, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.html"), []byte("$x"), 0o600))

	got, err := LoadAll(dir, "a.html")
	require.NoError(t, err)
	assert.Equal(t, "X", got["a.html"].Render(Values{"x": "X"}))

	_, err = LoadAll(dir, "a.html", "b.html")
	require.ErrorIs(t, err, ErrMissingTemplate)
}
