package build

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/i3configger/internal/config"
	ferrors "git.home.luguber.info/inful/i3configger/internal/foundation/errors"
	"git.home.luguber.info/inful/i3configger/internal/watcher"
)

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func schemeSources(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	write(t, dir, "base.conf", "font pango:mono 10\n")
	write(t, dir, "scheme.dark.conf", "# i3configger default\nclient.focused #000000\n")
	write(t, dir, "scheme.light.conf", "client.focused #ffffff\n")
	return dir
}

func newDef(t *testing.T, def config.BuildDef, clock clockwork.Clock) *Definition {
	t.Helper()
	d, err := NewDefinition(def, WithClock(clock))
	require.NoError(t, err)
	return d
}

func TestNewDefinitionRejectsFilesWithExcludes(t *testing.T) {
	_, err := NewDefinition(config.BuildDef{Name: "main", Files: []string{"a.conf"}, Excludes: []string{"b.conf"}})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestNeedsBuildDebounce(t *testing.T) {
	src := schemeSources(t)
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	d := newDef(t, config.BuildDef{Name: "main", Target: "/tmp/x", Sources: []string{src}, Suffix: ".conf"}, clock)

	base := watcher.NewEvent(filepath.Join(src, "base.conf"), watcher.KindWrite)
	other := watcher.NewEvent(filepath.Join(src, "scheme.light.conf"), watcher.KindWrite)

	assert.True(t, d.NeedsBuild(base), "first build")
	d.MarkBuilt(base.Name)

	clock.Advance(10 * time.Millisecond)
	assert.False(t, d.NeedsBuild(base), "same file within the delay")
	assert.True(t, d.NeedsBuild(other), "different file regardless of elapsed time")

	clock.Advance(BuildDelay)
	assert.True(t, d.NeedsBuild(base), "same file after the delay")

	assert.False(t, d.NeedsBuild(watcher.NewEvent(filepath.Join(src, "notes.txt"), watcher.KindWrite)))
	assert.False(t, d.NeedsBuild(watcher.NewEvent("/elsewhere/base.conf", watcher.KindWrite)))
}

func TestPartialsFilters(t *testing.T) {
	src := schemeSources(t)
	write(t, src, "notes.txt", "x\n")

	d := newDef(t, config.BuildDef{Name: "a", Sources: []string{src}, Suffix: ".conf", Excludes: []string{"scheme.light.conf"}}, clockwork.NewRealClock())
	prts, err := d.Partials()
	require.NoError(t, err)
	assert.Len(t, prts, 2)

	d = newDef(t, config.BuildDef{Name: "b", Sources: []string{src}, Suffix: ".conf", Files: []string{"base.conf"}}, clockwork.NewRealClock())
	prts, err = d.Partials()
	require.NoError(t, err)
	require.Len(t, prts, 1)
	assert.Equal(t, "base.conf", prts[0].Name)
}

func TestBuildDefaultAndSelected(t *testing.T) {
	src := schemeSources(t)
	target := filepath.Join(t.TempDir(), "out", "config")
	d := newDef(t, config.BuildDef{Name: "main", Target: target, Sources: []string{src}, Suffix: ".conf"}, clockwork.NewRealClock())

	res, err := d.Build(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"base.conf", "scheme.dark.conf"}, res.Partials)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "font pango:mono 10\n\n# i3configger default\nclient.focused #000000\n", string(data))

	res, err = d.Build(map[string]string{"scheme": "light", "bar": "top"})
	require.NoError(t, err, "keys this definition does not carry are ignored")
	assert.Equal(t, []string{"base.conf", "scheme.light.conf"}, res.Partials)
	data, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "font pango:mono 10\n\nclient.focused #ffffff\n", string(data))
	assert.Equal(t, len(data), res.Bytes)
}

func TestBuildUnknownValueFails(t *testing.T) {
	src := schemeSources(t)
	target := filepath.Join(t.TempDir(), "config")
	d := newDef(t, config.BuildDef{Name: "main", Target: target, Sources: []string{src}, Suffix: ".conf"}, clockwork.NewRealClock())

	_, err := d.Build(map[string]string{"scheme": "solarized"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheme=solarized")
	assert.NoFileExists(t, target)
}

func TestBuildExcludedKeys(t *testing.T) {
	src := schemeSources(t)
	d := newDef(t, config.BuildDef{Name: "main", Target: filepath.Join(t.TempDir(), "c"), Sources: []string{src}, Suffix: ".conf", ExcludeKeys: []string{"scheme"}}, clockwork.NewRealClock())

	_, names, err := d.Render(map[string]string{"scheme": "light"})
	require.NoError(t, err)
	assert.Equal(t, []string{"base.conf"}, names)
}

func TestRenderHeaderThemeAndInfo(t *testing.T) {
	src := schemeSources(t)
	themes := t.TempDir()
	write(t, themes, "solarized", "set $bg #002b36\n")
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	d := newDef(t, config.BuildDef{
		Name:      "main",
		Sources:   []string{src},
		Themes:    []string{themes},
		Theme:     "solarized",
		Suffix:    ".conf",
		Files:     []string{"base.conf"},
		AddHeader: true,
		AddInfo:   true,
	}, clock)

	out, _, err := d.Render(nil)
	require.NoError(t, err)
	msg := "# main (i3configger: Fri Mar  1 12:00:00 2024) #"
	sep := "################################################"
	require.Len(t, sep, len(msg))
	assert.Equal(t, sep+"\n"+msg+"\n"+sep+"\n\n"+
		"set $bg #002b36\n\n"+
		"### "+filepath.Join(src, "base.conf")+" ###\nfont pango:mono 10\n", out)
}

func TestRenderMissingTheme(t *testing.T) {
	src := schemeSources(t)
	d := newDef(t, config.BuildDef{Name: "main", Sources: []string{src}, Themes: []string{t.TempDir()}, Theme: "nord", Suffix: ".conf"}, clockwork.NewRealClock())

	_, _, err := d.Render(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no content for theme")
	assert.Contains(t, err.Error(), "nord")
}

func TestMatchesWatchesThemesAndSources(t *testing.T) {
	d := newDef(t, config.BuildDef{Name: "main", Sources: []string{"/s/"}, Themes: []string{"/t"}, Suffix: ".conf"}, clockwork.NewRealClock())
	assert.Equal(t, []string{"/t", "/s/"}, d.WatchPaths())
	assert.True(t, d.Matches("/s", "a.conf"))
	assert.True(t, d.Matches("/t", "a.conf"))
	assert.False(t, d.Matches("/s/sub", "a.conf"))
}

func TestMatchesRequiresSuffixInThemeDirectories(t *testing.T) {
	d := newDef(t, config.BuildDef{Name: "main", Sources: []string{"/s"}, Themes: []string{"/t"}, Suffix: ".conf"}, clockwork.NewRealClock())
	assert.True(t, d.Matches("/t", "dark.conf"))
	assert.False(t, d.Matches("/t", "dark"))
	assert.False(t, d.Matches("/t", "dark.conf.bak"))
}
