// Package telegram surfaces the agent over the Telegram Bot API: the long-poll
// update loop, command routing, per-chat conversation state, and the message
// transport the renderer draws through.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/MaratGumarov/claude-code-telegram/agent"
	"github.com/MaratGumarov/claude-code-telegram/bot"
	"github.com/MaratGumarov/claude-code-telegram/config"
)

// updateTimeout is the long-poll timeout in seconds.
const updateTimeout = 30

// Bot receives Telegram updates and turns each user message into an agent
// turn. One turn per chat runs at a time; concurrent messages from the same
// chat are rejected with a busy notice.
type Bot struct {
	api      *tgbotapi.BotAPI
	driver   *bot.Driver
	client   *agent.Client
	store    *StateStore
	settings *config.Settings
	log      *slog.Logger
}

// NewBot wires the bot over an authorized API client.
func NewBot(api *tgbotapi.BotAPI, driver *bot.Driver, client *agent.Client, store *StateStore, settings *config.Settings, log *slog.Logger) *Bot {
	return &Bot{
		api:      api,
		driver:   driver,
		client:   client,
		store:    store,
		settings: settings,
		log:      log,
	}
}

// Run long-polls for updates until ctx is cancelled. Each message is handled
// in its own goroutine so a long turn in one chat never blocks another.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = updateTimeout

	updates := b.api.GetUpdatesChan(cfg)

	b.log.Info("bot polling", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			if !b.chatAllowed(update.Message.Chat.ID) {
				b.log.Warn("message from disallowed chat", "chat_id", update.Message.Chat.ID)
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) chatAllowed(chatID int64) bool {
	if len(b.settings.Telegram.AllowedChatIDs) == 0 {
		return true
	}
	for _, id := range b.settings.Telegram.AllowedChatIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	b.runPrompt(ctx, msg, msg.Text)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		b.reply(chatID, msg.MessageID,
			"👋 Send me a message and I will run it through the agent.\n\n"+
				"/new — start a fresh session\n"+
				"/status — show session info\n"+
				"/cd <dir> — change working directory\n"+
				"/ls — list the working directory\n"+
				"/commands — list custom commands")

	case "new":
		b.client.ResetSession(sessionKey(chatID))
		b.store.ResetSession(chatID)
		b.reply(chatID, msg.MessageID, "🆕 Started a new session.")

	case "status":
		b.reply(chatID, msg.MessageID, b.statusText(chatID))

	case "cd":
		b.changeDir(chatID, msg.MessageID, args)

	case "ls":
		b.listDir(chatID, msg.MessageID)

	case "commands":
		b.listCommands(chatID, msg.MessageID)

	default:
		state := b.store.Get(chatID)
		if cmd, ok := CommandByName(msg.Command(), state.CurrentDir); ok {
			prompt := cmd.Prompt
			if args != "" {
				prompt = prompt + "\n\n" + args
			}
			b.runPrompt(ctx, msg, prompt)
			return
		}
		b.reply(chatID, msg.MessageID, fmt.Sprintf("Unknown command /%s. See /commands.", msg.Command()))
	}
}

func (b *Bot) statusText(chatID int64) string {
	state := b.store.Get(chatID)
	session := state.SessionID
	if session == "" {
		session = "none"
	}
	return fmt.Sprintf("📊 *Status*\n\nSession: `%s`\nDirectory: `%s`", session, state.CurrentDir)
}

// changeDir moves the chat's working directory. The target must stay under
// the configured root.
func (b *Bot) changeDir(chatID int64, replyTo int, arg string) {
	if arg == "" {
		b.reply(chatID, replyTo, "Usage: /cd <directory>")
		return
	}

	state := b.store.Get(chatID)
	target := arg
	if !filepath.IsAbs(target) {
		target = filepath.Join(state.CurrentDir, target)
	}
	target = filepath.Clean(target)

	root := b.settings.Agent.WorkDir
	if target != root && !strings.HasPrefix(target, root+string(filepath.Separator)) {
		b.reply(chatID, replyTo, fmt.Sprintf("❌ Directory must stay under `%s`.", root))
		return
	}

	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		b.reply(chatID, replyTo, fmt.Sprintf("❌ Not a directory: `%s`", target))
		return
	}

	b.store.SetCurrentDir(chatID, target)
	b.reply(chatID, replyTo, fmt.Sprintf("📂 Working directory: `%s`", target))
}

func (b *Bot) listDir(chatID int64, replyTo int) {
	state := b.store.Get(chatID)
	entries, err := os.ReadDir(state.CurrentDir)
	if err != nil {
		b.reply(chatID, replyTo, fmt.Sprintf("❌ Cannot read `%s`: %v", state.CurrentDir, err))
		return
	}

	var lines []string
	for _, e := range entries {
		if e.IsDir() {
			lines = append(lines, "📂 "+e.Name())
		} else {
			lines = append(lines, "📄 "+e.Name())
		}
	}
	sort.Strings(lines)

	if len(lines) == 0 {
		b.reply(chatID, replyTo, fmt.Sprintf("`%s` is empty.", state.CurrentDir))
		return
	}
	b.reply(chatID, replyTo, fmt.Sprintf("📂 `%s`\n\n%s", state.CurrentDir, strings.Join(lines, "\n")))
}

func (b *Bot) listCommands(chatID int64, replyTo int) {
	state := b.store.Get(chatID)
	cmds := ScanCommands(state.CurrentDir)
	if len(cmds) == 0 {
		b.reply(chatID, replyTo, "No custom commands found.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🔧 *Custom commands*\n")
	for _, c := range cmds {
		fmt.Fprintf(&sb, "\n/%s — %s (%s)", c.Name, c.Description, c.Source)
	}
	b.reply(chatID, replyTo, sb.String())
}

// runPrompt drives one agent turn for the message and reports the outcome
// back to the chat.
func (b *Bot) runPrompt(ctx context.Context, msg *tgbotapi.Message, prompt string) {
	chatID := msg.Chat.ID
	state := b.store.Get(chatID)

	transport := NewTransport(b.api, chatID, msg.MessageID)
	typing := bot.KeepAliveFunc(func(ctx context.Context) error {
		_, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
		return err
	})

	outcome, err := b.driver.RunTurn(ctx, bot.TurnRequest{
		Prompt:     prompt,
		SessionKey: sessionKey(chatID),
		WorkDir:    state.CurrentDir,
		Resume:     state.SessionID,
	}, transport, typing)
	if err != nil {
		if errors.Is(err, bot.ErrTurnInFlight) {
			b.reply(chatID, msg.MessageID, "⏳ Still working on your previous message. Try again once it finishes.")
			return
		}
		b.log.Error("turn failed to start", "chat_id", chatID, "error", err)
		b.reply(chatID, msg.MessageID, FormatUserError(err))
		return
	}

	if outcome.SessionID != "" {
		b.store.SetSessionID(chatID, outcome.SessionID)
	}

	if outcome.Failed {
		b.reply(chatID, msg.MessageID, FormatUserError(outcome.Err))
		return
	}

	// Nothing was rendered during the turn (no text, no tools); fall back to
	// the terminal result so the user always gets a response.
	if !outcome.Rendered {
		text := outcome.Result
		if text == "" {
			text = "(no output)"
		}
		b.reply(chatID, msg.MessageID, text)
	}
}

// reply sends a markdown message, falling back to plain text when Telegram
// rejects the formatting.
func (b *Bot) reply(chatID int64, replyTo int, text string) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ReplyToMessageID = replyTo
	m.ParseMode = tgbotapi.ModeMarkdown

	if _, err := b.api.Send(m); err != nil {
		m.ParseMode = ""
		if _, err := b.api.Send(m); err != nil {
			b.log.Warn("send failed", "chat_id", chatID, "error", err)
		}
	}
}

func sessionKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
