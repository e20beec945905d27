package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/gaurav-prasanna/mdpreview/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mdpreview.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.Equal(t, core.Light, cfg.Theme())
	assert.Equal(t, "markdown.md", cfg.Export.SourceFilename)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
render:
  theme: dark
  dark_style: dracula
  unsafe_html: true
state:
  path: /tmp/draft.db
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, core.Dark, cfg.Theme())
	assert.Equal(t, "github", cfg.Render.LightStyle)
	assert.Equal(t, "dracula", cfg.Render.DarkStyle)
	assert.True(t, cfg.Render.UnsafeHTML)
	assert.Equal(t, "/tmp/draft.db", cfg.State.Path)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadUsesEnvironment(t *testing.T) {
	path := writeConfig(t, "log:\n  level: debug\n")
	t.Setenv(EnvVar, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv(EnvVar, "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadFile(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)

	_, err = LoadFile(writeConfig(t, "render:\n  theme: sepia\nlog:\n  level: loud\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render.theme")
	assert.Contains(t, err.Error(), "log.level")
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"":      slog.LevelInfo,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}
