package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func writeFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestInitConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	require.FileExists(t, path)

	reloaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), reloaded)
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), `
[history]
case_sensitive = true
min_word_len = 3
seed_files = ["notes.txt", "shell.hist"]

[server]
max_limit = 20
cache_size = 0

[cli]
complete_trigger = "!"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.History.CaseSensitive)
	assert.Equal(t, 3, cfg.History.MinWordLen)
	assert.Equal(t, 64, cfg.History.MaxWordLen)
	assert.Equal(t, []string{"notes.txt", "shell.hist"}, cfg.History.SeedFiles)
	assert.Equal(t, 20, cfg.Server.MaxLimit)
	assert.Equal(t, 0, cfg.Server.CacheSize)
	assert.Equal(t, 10, cfg.Server.DefaultLimit)
	assert.Equal(t, "!", cfg.CLI.CompleteTrigger)
}

func TestLoadConfigPartialRecovery(t *testing.T) {
	path := writeFile(t, t.TempDir(), `
[history]
case_sensitive = "yes"
min_word_len = 4

[server]
max_limit = 32
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.History.CaseSensitive, "wrongly typed key keeps its default")
	assert.Equal(t, 4, cfg.History.MinWordLen)
	assert.Equal(t, 32, cfg.Server.MaxLimit)
}

func TestLoadConfigGarbage(t *testing.T) {
	path := writeFile(t, t.TempDir(), "this is [not toml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestNormalize(t *testing.T) {
	path := writeFile(t, t.TempDir(), `
[server]
default_limit = 500
max_limit = 0
min_prefix = 5
max_prefix = 2

[cli]
default_limit = -1
complete_trigger = ""
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Server.MaxLimit)
	assert.Equal(t, 10, cfg.Server.DefaultLimit)
	assert.Equal(t, 5, cfg.Server.MinPrefix)
	assert.Equal(t, 60, cfg.Server.MaxPrefix)
	assert.Equal(t, 10, cfg.CLI.DefaultLimit)
	assert.Equal(t, "?", cfg.CLI.CompleteTrigger)
}

func TestLoadConfigWithPriorityCustomPath(t *testing.T) {
	path := writeFile(t, t.TempDir(), "[cli]\ndefault_limit = 7\n")

	cfg, used, err := LoadConfigWithPriority(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 7, cfg.CLI.DefaultLimit)
}

func TestRebuildConfigFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "[cli]\ndefault_limit = 7\n")

	require.NoError(t, RebuildConfigFile(path))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestRebuildConfigWithPriority(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom", FileName)

	written, err := RebuildConfigWithPriority(path)
	require.NoError(t, err)
	assert.Equal(t, path, written)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestWordFilter(t *testing.T) {
	f := DefaultConfig().History.WordFilter()
	assert.Equal(t, 2, f.MinLen)
	assert.Equal(t, 64, f.MaxLen)
	assert.False(t, f.Accept("a"))
	assert.True(t, f.Accept("ab"))
}
