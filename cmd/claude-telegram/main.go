// Command claude-telegram bridges the Claude Code CLI to Telegram: each chat
// message becomes an agent turn whose transcript is streamed back as editable
// Telegram messages.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	"github.com/MaratGumarov/claude-code-telegram/agent"
	"github.com/MaratGumarov/claude-code-telegram/bot"
	"github.com/MaratGumarov/claude-code-telegram/config"
	"github.com/MaratGumarov/claude-code-telegram/telegram"
	"github.com/MaratGumarov/claude-code-telegram/transcript"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "claude-telegram",
	Short: "Telegram bridge for the Claude Code CLI",
	Long: `claude-telegram runs a Telegram bot that forwards chat messages to the
Claude Code CLI and streams the agent's transcript back into the chat,
editing messages in place as text and tool activity arrive.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML config file")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	settings, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := newLogger(settings.Log.Level)

	api, err := tgbotapi.NewBotAPI(settings.Telegram.Token)
	if err != nil {
		return fmt.Errorf("telegram auth: %w", err)
	}

	runner := agent.NewCLIRunner(agent.CLIConfig{
		Path:         settings.Agent.CLIPath,
		Model:        settings.Agent.Model,
		AllowedTools: settings.Agent.AllowedTools,
	})
	client := agent.NewClient(runner, log)

	driver := bot.NewDriver(client, bot.DriverConfig{
		Logger: log,
		Renderer: transcript.RendererConfig{
			ChunkSize:        settings.Render.ChunkSize,
			ThrottleInterval: time.Duration(settings.Render.ThrottleInterval),
			ThrottleDelta:    settings.Render.ThrottleDelta,
		},
	})

	store := telegram.NewStateStore(settings.Agent.WorkDir)
	tgBot := telegram.NewBot(api, driver, client, store, settings, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting", "work_dir", settings.Agent.WorkDir, "model", settings.Agent.Model)

	if err := tgBot.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	log.Info("shutting down")
	return nil
}

func newLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	if verbose {
		lvl = slog.LevelDebug
	} else {
		switch level {
		case "debug":
			lvl = slog.LevelDebug
		case "warn":
			lvl = slog.LevelWarn
		case "error":
			lvl = slog.LevelError
		}
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
