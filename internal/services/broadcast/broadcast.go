// Package broadcast формирует текст торгового сигнала и рассылает его в VIP группу.
package broadcast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/jmfx-signals/internal/models"
)

// ErrIncompleteSignal в анализе нет пары или направления сигнала.
var ErrIncompleteSignal = errors.New("analysis has no signal to broadcast")

// Publisher доставляет сигнал подписчикам группы.
type Publisher interface {
	PublishSignal(ctx context.Context, msg models.SignalMessage) error
}

// Metrics счётчик рассылок.
type Metrics interface {
	IncBroadcast(result string)
}

// FormatSignal собирает текст сигнала для публикации в группе.
func FormatSignal(a models.ForexAnalysis) string {
	s := a.PrimarySignal
	var b strings.Builder
	fmt.Fprintf(&b, "🚀 JM FX SIGNAL: %s (%s)\n\n", a.Pair, a.Timeframe)
	fmt.Fprintf(&b, "📌 TYPE: %s\n", strings.ToUpper(string(s.Type)))
	fmt.Fprintf(&b, "💰 ENTRY: %s\n", s.EntryPrice)
	fmt.Fprintf(&b, "🛑 STOP LOSS: %s\n", s.StopLoss)
	fmt.Fprintf(&b, "🎯 TAKE PROFIT: %s\n", s.TakeProfit)
	fmt.Fprintf(&b, "⚖️ R:R: %s\n\n", s.RiskReward)
	fmt.Fprintf(&b, "📝 LOGIC: %s\n\n", s.Reasoning)
	b.WriteString("Powered by JM FX AI ⚡")
	return b.String()
}

// Service рассылает сигналы.
type Service struct {
	pub     Publisher
	log     *slog.Logger
	metrics Metrics
	now     func() time.Time
}

// New создаёт Service.
func New(pub Publisher, log *slog.Logger, metrics Metrics) *Service {
	return &Service{pub: pub, log: log, metrics: metrics, now: time.Now}
}

// Broadcast публикует сигнал анализа от имени email.
func (s *Service) Broadcast(ctx context.Context, email string, a models.ForexAnalysis) (models.SignalMessage, error) {
	const op = "broadcast.Broadcast"
	if strings.TrimSpace(a.Pair) == "" || a.PrimarySignal.Type == "" {
		return models.SignalMessage{}, fmt.Errorf("%s: %w", op, ErrIncompleteSignal)
	}

	msg := models.SignalMessage{
		ID:     uuid.NewString(),
		Pair:   a.Pair,
		Text:   FormatSignal(a),
		SentBy: email,
		SentAt: s.now().UTC(),
	}
	if err := s.pub.PublishSignal(ctx, msg); err != nil {
		s.metrics.IncBroadcast("failed")
		return models.SignalMessage{}, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.IncBroadcast("ok")
	s.log.Info("signal broadcast", slog.String("id", msg.ID), slog.String("pair", msg.Pair))
	return msg, nil
}

// LogPublisher пишет сигналы в лог. Используется, когда брокер не настроен.
type LogPublisher struct {
	Log *slog.Logger
}

// PublishSignal логирует сигнал.
func (p LogPublisher) PublishSignal(_ context.Context, msg models.SignalMessage) error {
	p.Log.Info("signal not published, broker is not configured",
		slog.String("id", msg.ID),
		slog.String("pair", msg.Pair),
		slog.String("text", msg.Text),
	)
	return nil
}
