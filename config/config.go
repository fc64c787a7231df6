// Package config loads bot settings from a YAML file with environment
// overrides for secrets.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML duration strings
// like "500ms" or "2s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Settings is the full bot configuration.
type Settings struct {
	Telegram TelegramSettings `yaml:"telegram"`
	Agent    AgentSettings    `yaml:"agent"`
	Render   RenderSettings   `yaml:"render"`
	Log      LogSettings      `yaml:"log"`
}

// TelegramSettings configures the Telegram surface.
type TelegramSettings struct {
	// Token is the bot token. The TELEGRAM_BOT_TOKEN environment variable
	// overrides it so the token can stay out of the config file.
	Token string `yaml:"token"`

	// AllowedChatIDs restricts which chats the bot responds in. Empty
	// means all chats.
	AllowedChatIDs []int64 `yaml:"allowed_chat_ids"`
}

// AgentSettings configures the agent CLI.
type AgentSettings struct {
	// CLIPath is the agent binary (default "claude").
	CLIPath string `yaml:"cli_path"`

	// Model selects the model, if non-empty.
	Model string `yaml:"model"`

	// WorkDir is the root working directory for agent turns.
	WorkDir string `yaml:"work_dir"`

	// AllowedTools restricts the agent's tool set.
	AllowedTools []string `yaml:"allowed_tools"`
}

// RenderSettings bounds transcript rendering.
type RenderSettings struct {
	// ChunkSize is the maximum rendered chunk length (default 4000,
	// below Telegram's 4096 message limit).
	ChunkSize int `yaml:"chunk_size"`

	// ThrottleInterval is the minimum interval between text-triggered
	// renders (default 500ms).
	ThrottleInterval Duration `yaml:"throttle_interval"`

	// ThrottleDelta is the accumulated text size that forces a render
	// early (default 50).
	ThrottleDelta int `yaml:"throttle_delta"`
}

// LogSettings configures logging output.
type LogSettings struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `yaml:"level"`
}

// Load reads settings from path, applies environment overrides and
// defaults, and validates the result.
func Load(path string) (*Settings, error) {
	var settings Settings

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	settings.applyEnv()
	settings.applyDefaults()

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *Settings) applyEnv() {
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		s.Telegram.Token = token
	}
}

func (s *Settings) applyDefaults() {
	if s.Agent.CLIPath == "" {
		s.Agent.CLIPath = "claude"
	}
	if s.Agent.WorkDir == "" {
		if cwd, err := os.Getwd(); err == nil {
			s.Agent.WorkDir = cwd
		}
	}
	if s.Log.Level == "" {
		s.Log.Level = "info"
	}
}

// Validate checks required settings.
func (s *Settings) Validate() error {
	if s.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required (config telegram.token or TELEGRAM_BOT_TOKEN)")
	}
	if s.Agent.WorkDir != "" && !filepath.IsAbs(s.Agent.WorkDir) {
		return fmt.Errorf("agent.work_dir must be absolute, got %q", s.Agent.WorkDir)
	}
	switch s.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", s.Log.Level)
	}
	return nil
}
