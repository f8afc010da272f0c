package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/jmfx-signals/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/jmfx-signals/internal/lib/sl"
	"github.com/magabrotheeeer/jmfx-signals/internal/models"
	"github.com/magabrotheeeer/jmfx-signals/internal/telegram"
)

// TextSender доставляет текст в групповой чат.
type TextSender interface {
	Send(ctx context.Context, text string) error
}

// Relay возвращает обработчик сообщений очереди сигналов.
// Нечитаемое или отклонённое Telegram сообщение отбрасывается,
// временная ошибка доставки возвращает его в очередь.
func Relay(ctx context.Context, sender TextSender, log *slog.Logger, metrics Metrics) func([]byte) error {
	return func(body []byte) error {
		const op = "broadcast.Relay"

		var msg models.SignalMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			log.Error("failed to decode signal message", sl.Err(err))
			metrics.IncBroadcast("dropped")
			return fmt.Errorf("%s: %w: %v", op, rabbitmq.ErrDrop, err)
		}
		if msg.Text == "" {
			log.Error("signal message has no text", slog.String("id", msg.ID))
			metrics.IncBroadcast("dropped")
			return fmt.Errorf("%s: %w: empty text", op, rabbitmq.ErrDrop)
		}

		if err := sender.Send(ctx, msg.Text); err != nil {
			if errors.Is(err, telegram.ErrRejected) {
				log.Error("signal rejected by telegram, dropping", slog.String("id", msg.ID), sl.Err(err))
				metrics.IncBroadcast("rejected")
				return fmt.Errorf("%s: %w: %v", op, rabbitmq.ErrDrop, err)
			}
			metrics.IncBroadcast("delivery_failed")
			return fmt.Errorf("%s: %w", op, err)
		}

		metrics.IncBroadcast("delivered")
		log.Info("signal delivered", slog.String("id", msg.ID), slog.String("pair", msg.Pair))
		return nil
	}
}
