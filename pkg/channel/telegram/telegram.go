// Package telegram delivers messages through the Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/umputun/pushscope/pkg/channel"
)

// BotAPI is the part of tgbotapi.BotAPI used by Sender
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Recipients resolves subscription owner to a Telegram chat
type Recipients interface {
	ChatID(ctx context.Context, ownerID string) (int64, error)
}

// StaticRecipients is an owner -> chat map, usually loaded from config
type StaticRecipients map[string]int64

// ChatID returns chat for the owner
func (r StaticRecipients) ChatID(_ context.Context, ownerID string) (int64, error) {
	id, ok := r[ownerID]
	if !ok {
		return 0, channel.NewPermanentError("no_recipient", fmt.Sprintf("no telegram chat for owner %q", ownerID))
	}
	return id, nil
}

// Sender implements channel.Sender for Telegram
type Sender struct {
	api        BotAPI
	recipients Recipients
}

// New makes a sender over an existing bot api client
func New(api BotAPI, recipients Recipients) *Sender {
	return &Sender{api: api, recipients: recipients}
}

// NewWithToken connects to Telegram with the bot token, timeout limits each api request
func NewWithToken(token string, timeout time.Duration, recipients Recipients) (*Sender, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return New(api, recipients), nil
}

// Send posts the message as HTML to the owner's chat
func (s *Sender) Send(ctx context.Context, msg channel.Message) (channel.Receipt, error) {
	chatID, err := s.recipients.ChatID(ctx, msg.OwnerID)
	if err != nil {
		return channel.Receipt{}, err
	}
	if err := ctx.Err(); err != nil {
		return channel.Receipt{}, err
	}

	tgMsg := tgbotapi.NewMessage(chatID, formatMessage(msg))
	tgMsg.ParseMode = tgbotapi.ModeHTML
	tgMsg.DisableWebPagePreview = msg.Content.URL == ""

	st := time.Now()
	sent, err := s.api.Send(tgMsg)
	elapsed := time.Since(st)
	if err != nil {
		return channel.Receipt{}, classify(err)
	}
	return channel.Receipt{
		MessageID:    strconv.Itoa(sent.MessageID),
		ResponseTime: elapsed,
		RawResponse:  fmt.Sprintf(`{"chat_id":%d,"message_id":%d}`, chatID, sent.MessageID),
	}, nil
}

// formatMessage renders content as Telegram HTML
func formatMessage(msg channel.Message) string {
	var sb strings.Builder
	if msg.Content.Title != "" {
		sb.WriteString("<b>" + html.EscapeString(msg.Content.Title) + "</b>\n\n")
	}
	body := msg.Content.Body
	if body == "" {
		body = msg.Content.Summary
	}
	sb.WriteString(html.EscapeString(body))
	if msg.Content.URL != "" {
		sb.WriteString("\n\n<a href=\"" + html.EscapeString(msg.Content.URL) + "\">open</a>")
	}
	return sb.String()
}

// classify converts telegram api errors to channel errors, blocked or missing chats are permanent
func classify(err error) error {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	res := &channel.Error{Code: strconv.Itoa(apiErr.Code), Message: apiErr.Message}
	switch apiErr.Code {
	case 403:
		res.Permanent = true
	case 400:
		res.Permanent = strings.Contains(strings.ToLower(apiErr.Message), "chat not found")
	}
	if apiErr.RetryAfter > 0 {
		res.RawResponse = fmt.Sprintf(`{"retry_after":%d}`, apiErr.RetryAfter)
	}
	return res
}
