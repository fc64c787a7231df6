package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	path := writeConfig(t, `
telegram:
  token: "123:abc"
  allowed_chat_ids: [100, 200]
agent:
  cli_path: /usr/local/bin/claude
  model: opus
  work_dir: /srv/projects
  allowed_tools: [Bash, Read]
render:
  chunk_size: 3500
  throttle_interval: 750ms
  throttle_delta: 80
log:
  level: debug
`)

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", settings.Telegram.Token)
	assert.Equal(t, []int64{100, 200}, settings.Telegram.AllowedChatIDs)
	assert.Equal(t, "/usr/local/bin/claude", settings.Agent.CLIPath)
	assert.Equal(t, "opus", settings.Agent.Model)
	assert.Equal(t, []string{"Bash", "Read"}, settings.Agent.AllowedTools)
	assert.Equal(t, 3500, settings.Render.ChunkSize)
	assert.Equal(t, Duration(750*time.Millisecond), settings.Render.ThrottleInterval)
	assert.Equal(t, 80, settings.Render.ThrottleDelta)
	assert.Equal(t, "debug", settings.Log.Level)
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	path := writeConfig(t, `
telegram:
  token: "123:abc"
`)

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "claude", settings.Agent.CLIPath)
	assert.Equal(t, "info", settings.Log.Level)
	assert.NotEmpty(t, settings.Agent.WorkDir)
	assert.True(t, filepath.IsAbs(settings.Agent.WorkDir))
}

func TestLoadEnvOverridesToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "env:token")
	path := writeConfig(t, `
telegram:
  token: "file:token"
`)

	settings, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env:token", settings.Telegram.Token)
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	path := writeConfig(t, `
log:
  level: info
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token")
}

func TestLoadRejectsRelativeWorkDir(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "x")
	path := writeConfig(t, `
agent:
  work_dir: ./relative
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "work_dir")
}

func TestLoadRejectsUnknownLogLevel(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "x")
	path := writeConfig(t, `
log:
  level: chatty
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
