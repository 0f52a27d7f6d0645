package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const defaultTimeout = 10 * time.Second

// ClientConfig contains configuration for the Telegram client.
type ClientConfig struct {
	// Token is the Telegram Bot API token.
	Token string

	// APIEndpoint is the Bot API URL format with two %s verbs for the token
	// and method. Defaults to tgbotapi.APIEndpoint.
	APIEndpoint string

	// Timeout bounds every Bot API request. Defaults to 10s.
	Timeout time.Duration
}

// Client sends text messages as a Telegram bot.
type Client struct {
	api *tgbotapi.BotAPI
}

// NewClient creates a [Client] and verifies the token with a getMe call.
func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("bot token is required")
	}
	if cfg.APIEndpoint == "" {
		cfg.APIEndpoint = tgbotapi.APIEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, cfg.APIEndpoint, &http.Client{Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot client: %w", err)
	}

	return &Client{api: api}, nil
}

// Username returns the bot's Telegram username.
func (c *Client) Username() string {
	return c.api.Self.UserName
}

// SendMessage sends text to chatID, which is either a numeric chat id or a
// public channel username starting with "@".
//
// The underlying library has no context support; ctx is only checked
// before the request is made.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("message is required")
	}

	msg, err := newMessage(chatID, text)
	if err != nil {
		return err
	}

	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// ValidateChatID reports whether chatID can be used as a message target.
func ValidateChatID(chatID string) error {
	_, err := newMessage(chatID, "")
	return err
}

func newMessage(chatID, text string) (tgbotapi.MessageConfig, error) {
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return tgbotapi.MessageConfig{}, errors.New("chat_id is required")
	}

	if strings.HasPrefix(chatID, "@") {
		if len(chatID) == 1 {
			return tgbotapi.MessageConfig{}, fmt.Errorf("invalid chat_id %q: empty channel username", chatID)
		}
		return tgbotapi.NewMessageToChannel(chatID, text), nil
	}

	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return tgbotapi.MessageConfig{}, fmt.Errorf("invalid chat_id %q: must be an integer or @channel", chatID)
	}
	return tgbotapi.NewMessage(id, text), nil
}
