// Package telegram adapts the transcript renderer and turn driver to the
// Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/MaratGumarov/claude-code-telegram/transcript"
)

// MaxMessageLength is Telegram's maximum message payload size. The renderer
// chunks below this with a safety margin.
const MaxMessageLength = 4096

// messageRef identifies one sent Telegram message.
type messageRef struct {
	chatID    int64
	messageID int
}

// Transport implements transcript.Transport over one Telegram chat. The
// first sent chunk replies to the message that started the turn.
type Transport struct {
	api       api
	chatID    int64
	replyTo   int
	sentFirst bool
}

// api is the slice of tgbotapi.BotAPI the transport needs; tests substitute
// a fake.
type api interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// NewTransport creates a transport for one chat. replyTo is the message id
// the first chunk should reply to, or 0 for none.
func NewTransport(botAPI *tgbotapi.BotAPI, chatID int64, replyTo int) *Transport {
	return &Transport{api: botAPI, chatID: chatID, replyTo: replyTo}
}

// Send posts a new message and returns its handle.
func (t *Transport) Send(ctx context.Context, text string, markdown bool) (transcript.MessageHandle, error) {
	msg := tgbotapi.NewMessage(t.chatID, text)
	if markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	if !t.sentFirst && t.replyTo != 0 {
		msg.ReplyToMessageID = t.replyTo
	}

	sent, err := t.api.Send(msg)
	if err != nil {
		return nil, wrapTelegramError(err)
	}

	t.sentFirst = true
	return messageRef{chatID: t.chatID, messageID: sent.MessageID}, nil
}

// Edit replaces the text of a previously sent message.
func (t *Transport) Edit(ctx context.Context, handle transcript.MessageHandle, text string, markdown bool) error {
	ref, ok := handle.(messageRef)
	if !ok {
		return fmt.Errorf("unexpected message handle type %T", handle)
	}

	edit := tgbotapi.NewEditMessageText(ref.chatID, ref.messageID, text)
	if markdown {
		edit.ParseMode = tgbotapi.ModeMarkdown
	}

	if _, err := t.api.Send(edit); err != nil {
		// Telegram rejects edits whose text matches the current content;
		// the renderer already skips unchanged chunks, but a plain-text
		// retry can still collide. Not a failure.
		if strings.Contains(err.Error(), "message is not modified") {
			return nil
		}
		return wrapTelegramError(err)
	}
	return nil
}

// wrapTelegramError classifies markup rejections so the renderer can retry
// in plain text.
func wrapTelegramError(err error) error {
	if strings.Contains(strings.ToLower(err.Error()), "can't parse entities") {
		return &transcript.FormatError{Cause: err}
	}
	return err
}
