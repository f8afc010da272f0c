// Package broadcaster собирает приложение, которое читает сигналы из очереди
// и публикует их в VIP группу Telegram.
package broadcaster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/jmfx-signals/internal/config"
	"github.com/magabrotheeeer/jmfx-signals/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/jmfx-signals/internal/lib/sl"
	"github.com/magabrotheeeer/jmfx-signals/internal/metrics"
	"github.com/magabrotheeeer/jmfx-signals/internal/services/broadcast"
	"github.com/magabrotheeeer/jmfx-signals/internal/telegram"
)

// App потребитель очереди сигналов.
type App struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	sender  *telegram.Sender
	queue   string
	logger  *slog.Logger
	metrics metrics.Metrics
	// metricsSrv отдаёт /metrics, nil если адрес не задан
	metricsSrv *http.Server
}

// New подключается к брокеру и создаёт бота.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "broadcaster.New"
	if cfg.RabbitMQ.URL == "" {
		return nil, fmt.Errorf("%s: %w", op, errors.New("rabbitmq url is not set"))
	}
	if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == 0 {
		return nil, fmt.Errorf("%s: %w", op, errors.New("telegram bot token and chat id are required"))
	}

	sender, err := telegram.NewSender(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, cfg.RabbitMQ.Exchange, rabbitmq.SignalQueues(cfg.RabbitMQ))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	registry := prometheus.NewRegistry()
	a := &App{
		conn:    conn,
		ch:      ch,
		sender:  sender,
		queue:   cfg.RabbitMQ.Queue,
		logger:  logger,
		metrics: metrics.New(registry),
	}
	if cfg.AddressHTTP != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		a.metricsSrv = &http.Server{
			Addr:              cfg.AddressHTTP,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return a, nil
}

// Run потребляет очередь до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	handler := broadcast.Relay(ctx, a.sender, a.logger, a.metrics)
	if err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, a.queue, handler); err != nil {
		a.logger.Error("failed to start signals consumer", sl.Err(err))
		return err
	}
	a.logger.Info("signals consumer started", slog.String("queue", a.queue))

	if a.metricsSrv != nil {
		go func() {
			if err := a.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server stopped", sl.Err(err))
			}
		}()
	}

	<-ctx.Done()
	a.logger.Info("broadcaster shutting down gracefully")

	if a.metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.metricsSrv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("failed to stop metrics server", sl.Err(err))
		}
	}

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	return nil
}
