package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/i3configger/internal/foundation/errors"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "i3configger.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaultsAndResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "themes"), 0o755))
	path := writeConfig(t, dir, `
builds:
  - target: ../config
    themes: [themes]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, DefaultStateFile), cfg.Settings.State)
	assert.Equal(t, DefaultMaxErrors, cfg.Settings.MaxErrors)
	assert.Equal(t, RefreshRestart, cfg.Settings.Refresh)
	assert.True(t, cfg.Settings.NotifyEnabled())
	assert.Equal(t, []string{"i3status"}, cfg.Settings.ReservedKeys)
	assert.Equal(t, LogLevelInfo, cfg.Settings.LogLevel)
	assert.False(t, cfg.Settings.NATS.Enabled())

	require.Len(t, cfg.Builds, 1)
	b := cfg.Builds[0]
	assert.Equal(t, DefaultBuildName, b.Name)
	assert.Equal(t, filepath.Join(filepath.Dir(dir), "config"), b.Target)
	assert.Equal(t, []string{dir}, b.Sources)
	assert.Equal(t, []string{filepath.Join(dir, "themes")}, b.Themes)
	assert.Equal(t, DefaultSuffix, b.Suffix)
	assert.Equal(t, []string{filepath.Join(dir, "themes"), dir}, b.WatchPaths())
}

func TestLoadExpandsEnvironmentFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("I3C_TEST_NATS=nats://127.0.0.1:4222\n"), 0o600))
	t.Setenv("I3C_TEST_TARGET", filepath.Join(t.TempDir(), "config"))
	t.Cleanup(func() { _ = os.Unsetenv("I3C_TEST_NATS") })
	path := writeConfig(t, dir, `
settings:
  refresh: Reload
  notify: false
  rebuild_interval: 5m
  nats:
    url: ${I3C_TEST_NATS}
builds:
  - name: main
    target: ${I3C_TEST_TARGET}
    suffix: i3
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, RefreshReload, cfg.Settings.Refresh)
	assert.False(t, cfg.Settings.NotifyEnabled())
	assert.Equal(t, 5*time.Minute, cfg.Settings.RebuildInterval)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.Settings.NATS.URL)
	assert.Equal(t, DefaultNATSSubject, cfg.Settings.NATS.Subject)
	assert.Equal(t, os.Getenv("I3C_TEST_TARGET"), cfg.Builds[0].Target)
	assert.Equal(t, ".i3", cfg.Builds[0].Suffix)
}

func TestLoadRejectsInvalidConfigurations(t *testing.T) {
	cases := map[string]string{
		"no build definitions": `settings: {}`,
		"mutually exclusive": `
builds:
  - target: /tmp/out
    files: [a.conf]
    excludes: [b.conf]`,
		"missing directory": `
builds:
  - target: /tmp/out
    sources: [nowhere]`,
		"without target": `
builds:
  - sources: [.]`,
		"would trigger its own rebuild": `
builds:
  - target: out.conf`,
		"invalid refresh mode": `
settings:
  refresh: bounce
builds:
  - target: /tmp/out`,
		"max_errors": `
settings:
  max_errors: -1
builds:
  - target: /tmp/out`,
		"invalid retry backoff": `
settings:
  refresh_retry: {backoff: random}
builds:
  - target: /tmp/out`,
		"cannot be negative": `
settings:
  refresh_retry: {max_retries: -2}
builds:
  - target: /tmp/out`,
		"duplicate build name": `
builds:
  - name: a
    target: /tmp/a
  - name: a
    target: /tmp/b`,
	}
	for want, body := range cases {
		t.Run(want, func(t *testing.T) {
			_, err := Load(writeConfig(t, t.TempDir(), body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), want)
			ce, ok := ferrors.AsClassified(err)
			require.True(t, ok)
			assert.True(t, ce.IsFatal())
		})
	}
}

func TestLoadRefreshRetry(t *testing.T) {
	cfg, err := Load(writeConfig(t, t.TempDir(), `
settings:
  refresh_retry:
    backoff: Exponential
    initial: 250ms
    max: 2s
    max_retries: 3
builds:
  - target: /tmp/out`))
	require.NoError(t, err)
	assert.Equal(t, RetrySettings{
		Backoff:    RetryBackoffExponential,
		Initial:    250 * time.Millisecond,
		Max:        2 * time.Second,
		MaxRetries: 3,
	}, cfg.Settings.RefreshRetry)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	assert.Contains(t, err.Error(), "absent.yaml")
}

func TestInitWritesLoadableExample(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "config.d")
	path := filepath.Join(dir, "i3configger.yaml")

	require.NoError(t, Init(path, false))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "config"), cfg.Builds[0].Target)
	assert.True(t, cfg.Builds[0].AddHeader)

	err = Init(path, false)
	require.Error(t, err)
	require.NoError(t, Init(path, true))
}

func TestLogLevelMapping(t *testing.T) {
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel("WARNING"))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("chatty"))
	assert.Equal(t, LogFormatJSON, NormalizeLogFormat(" json "))
	assert.Equal(t, "DEBUG", LogLevelDebug.SlogLevel().String())
}
