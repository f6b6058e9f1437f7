// Package telegram is a chat frontend for browsing categories, filters and
// search results page by page.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vadimtrunov/cinescope/internal/browse"
)

// botAPI is the subset of tgbotapi.BotAPI used to talk to chats.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot is the Telegram frontend for cinescope.
type Bot struct {
	client   *tgbotapi.BotAPI
	api      botAPI
	svc      *browse.Service
	sessions *sessionManager
	logger   *slog.Logger
}

// New creates a Bot and verifies the token with Telegram.
func New(token string, allowedUserIDs []int64, svc *browse.Service, logger *slog.Logger) (*Bot, error) {
	client, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	b := newBot(client, allowedUserIDs, svc, logger)
	b.client = client
	return b, nil
}

func newBot(api botAPI, allowedUserIDs []int64, svc *browse.Service, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		api:      api,
		svc:      svc,
		sessions: newSessionManager(allowedUserIDs),
		logger:   logger,
	}
}

// Name returns the frontend name.
func (b *Bot) Name() string { return "telegram" }

// Start runs the long-polling loop. It blocks until ctx is canceled.
func (b *Bot) Start(ctx context.Context) error {
	if b.client == nil {
		return errors.New("telegram bot has no API client")
	}
	b.logger.Info("telegram bot started",
		slog.String("username", b.client.Self.UserName),
	)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.client.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.client.StopReceivingUpdates()
			b.logger.Info("telegram bot stopped")
			return nil

		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate dispatches an incoming Telegram update.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

// newSession creates the per-user state with its own paginator.
func (b *Bot) newSession() *chatSession {
	return &chatSession{paginator: b.svc.NewPaginator()}
}

// sendText sends a plain text message (no parse mode).
func (b *Bot) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send message",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()),
		)
	}
}

// sendMarkdown sends MarkdownV2 text, falling back to plain text.
func (b *Bot) sendMarkdown(chatID int64, text, plain string, kb *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if kb != nil {
		msg.ReplyMarkup = kb
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("failed to send markdown, retrying plain",
			slog.String("error", err.Error()),
		)
		fallback := tgbotapi.NewMessage(chatID, plain)
		if kb != nil {
			fallback.ReplyMarkup = kb
		}
		if _, err := b.api.Send(fallback); err != nil {
			b.logger.Error("failed to send message",
				slog.Int64("chat_id", chatID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// editMarkdown replaces a message's text and keyboard in place.
func (b *Bot) editMarkdown(chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	edit.ReplyMarkup = kb
	if _, err := b.api.Send(edit); err != nil {
		if strings.Contains(err.Error(), "message is not modified") {
			return
		}
		b.logger.Warn("failed to edit message",
			slog.Int64("chat_id", chatID),
			slog.Int("message_id", messageID),
			slog.String("error", err.Error()),
		)
	}
}
