// Package telegram отправляет сигналы в групповой чат Telegram.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mymmrac/telego"
	"github.com/mymmrac/telego/telegoapi"
	tu "github.com/mymmrac/telego/telegoutil"
)

// ErrRejected Telegram отклонил сообщение, повторная отправка не поможет:
// неверный чат, бот удалён из группы, некорректный запрос.
var ErrRejected = errors.New("message rejected by telegram")

// Sender публикует сообщения в один чат.
type Sender struct {
	bot    *telego.Bot
	chatID int64
}

// NewSender создаёт бота по токену.
func NewSender(token string, chatID int64, opts ...telego.BotOption) (*Sender, error) {
	const op = "telegram.NewSender"
	bot, err := telego.NewBot(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Sender{bot: bot, chatID: chatID}, nil
}

// Send отправляет текст в чат. Ответ API с кодом 4xx, кроме 429, оборачивается в ErrRejected.
func (s *Sender) Send(ctx context.Context, text string) error {
	const op = "telegram.Send"
	if _, err := s.bot.SendMessage(ctx, tu.Message(tu.ID(s.chatID), text)); err != nil {
		if isPermanent(err) {
			return fmt.Errorf("%s: %w: %w", op, ErrRejected, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func isPermanent(err error) bool {
	var apiErr *telegoapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.ErrorCode >= http.StatusBadRequest &&
		apiErr.ErrorCode < http.StatusInternalServerError &&
		apiErr.ErrorCode != http.StatusTooManyRequests
}
