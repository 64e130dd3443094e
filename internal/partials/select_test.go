package partials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/i3configger/internal/foundation/errors"
	"git.home.luguber.info/inful/i3configger/internal/util/sets"
)

// schemeFixture creates base, scheme.dark (default by marker) and scheme.light.
func schemeFixture(t *testing.T) (string, []*Partial) {
	t.Helper()
	dir := t.TempDir()
	writePartial(t, dir, "scheme.light.conf", "client.focused #ffffff\n")
	writePartial(t, dir, "base.conf", "font pango:mono 10\n")
	writePartial(t, dir, "scheme.dark.conf", "# i3configger default\nclient.focused #000000\n")
	prts, err := Create(dir, ".conf")
	require.NoError(t, err)
	return dir, prts
}

func names(prts []*Partial) []string {
	out := make([]string, 0, len(prts))
	for _, p := range prts {
		out = append(out, p.Name)
	}
	return out
}

func TestSelect_DefaultsWithEmptySelector(t *testing.T) {
	_, prts := schemeFixture(t)

	selected, err := Select(prts, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"base.conf", "scheme.dark.conf"}, names(selected))
}

func TestSelect_SelectorReplacesDefault(t *testing.T) {
	_, prts := schemeFixture(t)

	selected, err := Select(prts, map[string]string{"scheme": "light"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"base.conf", "scheme.light.conf"}, names(selected))
}

func TestSelect_OnePerSelectedKeyPlusUnconditionalPlusOtherDefaults(t *testing.T) {
	dir := t.TempDir()
	writePartial(t, dir, "base.conf", "a\n")
	writePartial(t, dir, "keys.conf", "b\n")
	writePartial(t, dir, "scheme.dark.conf", "# i3configger default\n")
	writePartial(t, dir, "scheme.light.conf", "c\n")
	writePartial(t, dir, "bar.default.conf", "d\n")
	writePartial(t, dir, "bar.top.conf", "e\n")
	writePartial(t, dir, "host.laptop.conf", "f\n")
	writePartial(t, dir, "host.desktop.conf", "g\n")
	prts, err := Create(dir, ".conf")
	require.NoError(t, err)

	selector := map[string]string{"scheme": "light", "host": "desktop"}
	selected, err := Select(prts, selector, sets.New[string]())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"bar.default.conf",
		"base.conf",
		"host.desktop.conf",
		"keys.conf",
		"scheme.light.conf",
	}, names(selected))
	assert.Len(t, selector, 2, "caller selector must not be consumed")
}

func TestSelect_Idempotent(t *testing.T) {
	_, prts := schemeFixture(t)
	selector := map[string]string{"scheme": "light"}

	first, err := Select(prts, selector, nil)
	require.NoError(t, err)
	second, err := Select(prts, selector, nil)
	require.NoError(t, err)
	assert.Equal(t, names(first), names(second))
}

func TestSelect_UnmatchedSelectorFails(t *testing.T) {
	_, prts := schemeFixture(t)

	_, err := Select(prts, map[string]string{"scheme": "solarized", "font": "big"}, nil)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategorySelection))
	assert.Contains(t, err.Error(), "font=big,scheme=solarized")
}

func TestSelect_ExcludedKeys(t *testing.T) {
	_, prts := schemeFixture(t)

	selected, err := Select(prts, nil, sets.New("scheme"))
	require.NoError(t, err)
	assert.Equal(t, []string{"base.conf"}, names(selected))

	_, err = Select(prts, map[string]string{"scheme": "light"}, sets.New("scheme"))
	require.Error(t, err, "selecting an excluded key cannot be satisfied")
}

func TestSelect_Options(t *testing.T) {
	_, prts := schemeFixture(t)

	selected, err := Select(prts, nil, nil, WithoutUnconditional())
	require.NoError(t, err)
	assert.Equal(t, []string{"scheme.dark.conf"}, names(selected))

	selected, err = Select(prts, nil, nil, WithoutDefaults())
	require.NoError(t, err)
	assert.Equal(t, []string{"base.conf"}, names(selected))
}

func TestFindCandidatesKeys(t *testing.T) {
	_, prts := schemeFixture(t)

	p, ok := Find(prts, "scheme", "light")
	require.True(t, ok)
	assert.Equal(t, "scheme.light.conf", p.Name)

	_, ok = Find(prts, "scheme", "solarized")
	assert.False(t, ok)

	assert.Equal(t, []string{"dark", "light"}, Candidates(prts, "scheme"))
	assert.Empty(t, Candidates(prts, "bar"))
	assert.Equal(t, []string{"scheme"}, Keys(prts))
}

func TestScanAndCreate(t *testing.T) {
	dir, _ := schemeFixture(t)
	writePartial(t, dir, ".scheme.dark.conf.swp", "x")
	writePartial(t, dir, "README.md", "x")

	prts, err := Create(dir, ".conf")
	require.NoError(t, err)
	assert.Equal(t, []string{"base.conf", "scheme.dark.conf", "scheme.light.conf"}, names(prts))

	_, err = Create(dir, ".i3")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))

	_, err = Scan(dir+"/missing", nil)
	require.Error(t, err)
}

func TestContent(t *testing.T) {
	_, prts := schemeFixture(t)

	content, err := Content(prts, map[string]string{"scheme": "light"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "### base.conf ###\nfont pango:mono 10\n"+
		"### scheme.light.conf ###\nclient.focused #ffffff\n", content)

	_, err = Content(prts, nil, sets.New("scheme"))
	require.NoError(t, err)
}
