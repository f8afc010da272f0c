// Package sweeper периодически перечитывает весь реестр подписок, чтобы истёкшие
// записи исправлялись даже для пользователей, которые давно не заходили.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/jmfx-signals/internal/lib/sl"
	"github.com/magabrotheeeer/jmfx-signals/internal/models"
)

// Ledger реестр подписок. Чтение применяет истечение и сохраняет исправления.
type Ledger interface {
	GetAllSubscriptions(ctx context.Context) ([]models.Subscription, error)
}

// Sweeper планировщик перечитывания реестра.
type Sweeper struct {
	ledger   Ledger
	log      *slog.Logger
	interval time.Duration
}

// New создаёт Sweeper.
func New(ledger Ledger, log *slog.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{
		ledger:   ledger,
		log:      log,
		interval: interval,
	}
}

// Run выполняет проход сразу и затем с интервалом до отмены ctx.
func (s *Sweeper) Run(ctx context.Context) {
	s.Sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep выполняет один проход и возвращает число оплаченных подписок.
func (s *Sweeper) Sweep(ctx context.Context) int {
	subs, err := s.ledger.GetAllSubscriptions(ctx)
	if err != nil {
		s.log.Error("failed to sweep subscriptions", sl.Err(err))
		return 0
	}

	active := 0
	for _, sub := range subs {
		if sub.IsPaid {
			active++
		}
	}
	s.log.Info("subscriptions swept", slog.Int("total", len(subs)), slog.Int("active", active))
	return active
}
