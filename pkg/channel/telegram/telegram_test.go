package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/pushscope/pkg/channel"
	"github.com/umputun/pushscope/pkg/domain"
)

type fakeBot struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, errors.New("unexpected chattable")
	}
	f.sent = append(f.sent, msg)
	return tgbotapi.Message{MessageID: 77}, nil
}

func TestSender_Send(t *testing.T) {
	bot := &fakeBot{}
	s := New(bot, StaticRecipients{"user-1": 12345})

	receipt, err := s.Send(context.Background(), channel.Message{
		OwnerID: "user-1",
		Channel: domain.ChannelTelegram,
		Content: domain.Content{Title: "Go <1.24>", Body: "generics & iterators", URL: "https://example.com/p?a=1&b=2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "77", receipt.MessageID)
	assert.Contains(t, receipt.RawResponse, `"chat_id":12345`)

	require.Len(t, bot.sent, 1)
	sent := bot.sent[0]
	assert.Equal(t, int64(12345), sent.ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, sent.ParseMode)
	assert.Equal(t, "<b>Go &lt;1.24&gt;</b>\n\ngenerics &amp; iterators\n\n<a href=\"https://example.com/p?a=1&amp;b=2\">open</a>", sent.Text)
	assert.False(t, sent.DisableWebPagePreview)
}

func TestSender_SendErrors(t *testing.T) {
	msg := channel.Message{OwnerID: "user-1", Content: domain.Content{Body: "hi"}}

	t.Run("unknown recipient is permanent", func(t *testing.T) {
		s := New(&fakeBot{}, StaticRecipients{})
		_, err := s.Send(context.Background(), msg)
		require.Error(t, err)
		assert.True(t, channel.IsPermanent(err))
		assert.Equal(t, "no_recipient", channel.ErrorCode(err))
	})

	t.Run("blocked bot is permanent", func(t *testing.T) {
		s := New(&fakeBot{err: &tgbotapi.Error{Code: 403, Message: "Forbidden: bot was blocked by the user"}}, StaticRecipients{"user-1": 1})
		_, err := s.Send(context.Background(), msg)
		require.Error(t, err)
		assert.True(t, channel.IsPermanent(err))
		assert.Equal(t, "403", channel.ErrorCode(err))
	})

	t.Run("rate limit is transient", func(t *testing.T) {
		apiErr := &tgbotapi.Error{Code: 429, Message: "Too Many Requests", ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 5}}
		s := New(&fakeBot{err: apiErr}, StaticRecipients{"user-1": 1})
		_, err := s.Send(context.Background(), msg)
		require.Error(t, err)
		assert.False(t, channel.IsPermanent(err))
		assert.Equal(t, `{"retry_after":5}`, channel.RawResponse(err))
	})

	t.Run("network error passes through", func(t *testing.T) {
		s := New(&fakeBot{err: errors.New("connection reset")}, StaticRecipients{"user-1": 1})
		_, err := s.Send(context.Background(), msg)
		require.EqualError(t, err, "connection reset")
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		bot := &fakeBot{}
		s := New(bot, StaticRecipients{"user-1": 1})
		_, err := s.Send(ctx, msg)
		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, bot.sent)
	})
}
