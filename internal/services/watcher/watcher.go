// Package watcher периодически перечитывает статус подписки неоплаченного
// пользователя, пока администратор не подтвердит оплату.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/jmfx-signals/internal/lib/sl"
	"github.com/magabrotheeeer/jmfx-signals/internal/models"
)

// ErrTimeout статус не стал оплаченным за отведённое время.
var ErrTimeout = errors.New("subscription is still unpaid")

// SubscriptionReader источник статуса подписки.
type SubscriptionReader interface {
	GetSubscription(ctx context.Context, email string) (models.Subscription, error)
}

// Watcher опрашивает реестр с фиксированным интервалом.
type Watcher struct {
	reader   SubscriptionReader
	log      *slog.Logger
	interval time.Duration
	timeout  time.Duration
}

// New создаёт Watcher. Нулевой timeout означает ожидание до отмены ctx.
func New(reader SubscriptionReader, log *slog.Logger, interval, timeout time.Duration) *Watcher {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Watcher{reader: reader, log: log, interval: interval, timeout: timeout}
}

// Wait возвращает запись, как только она станет оплаченной.
// Первая проверка выполняется сразу. При истечении timeout возвращает
// последнюю прочитанную запись вместе с ErrTimeout.
func (w *Watcher) Wait(ctx context.Context, email string) (models.Subscription, error) {
	const op = "watcher.Wait"

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var last models.Subscription
	for {
		sub, err := w.reader.GetSubscription(ctx, email)
		switch {
		case err == nil:
			last = sub
			if sub.IsPaid {
				return sub, nil
			}
		case ctx.Err() != nil:
		default:
			w.log.Warn("status re-check failed", slog.String("email", email), sl.Err(err))
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return last, fmt.Errorf("%s: %w", op, ErrTimeout)
			}
			return last, fmt.Errorf("%s: %w", op, ctx.Err())
		case <-ticker.C:
		}
	}
}
