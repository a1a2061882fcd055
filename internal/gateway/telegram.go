package gateway

import (
	"context"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender delivers a reply to a chat.
type Sender interface {
	SendHTML(ctx context.Context, chatID int64, text string) error
}

// TelegramSender delivers replies through the Telegram Bot API.
type TelegramSender struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramSender connects to the Bot API with token. An empty endpoint
// uses the public Telegram API; a nil client uses http.DefaultClient.
func NewTelegramSender(token, endpoint string, client *http.Client) (*TelegramSender, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	return &TelegramSender{bot: bot}, nil
}

// Username returns the bot's username.
func (s *TelegramSender) Username() string {
	return s.bot.Self.UserName
}

// SendHTML sends text to chatID with HTML parse mode.
func (s *TelegramSender) SendHTML(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("send message to chat %d: %w", chatID, err)
	}
	return nil
}

// RegisterWebhook points the bot's webhook at url.
func (s *TelegramSender) RegisterWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("parse webhook url: %w", err)
	}
	if _, err := s.bot.Request(wh); err != nil {
		return fmt.Errorf("register webhook: %w", err)
	}
	return nil
}
