// Package dashboard собирает HTTP приложение дашборда сигналов: хранилище,
// сервисы и маршруты.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/jmfx-signals/internal/config"
	"github.com/magabrotheeeer/jmfx-signals/internal/gemini"
	"github.com/magabrotheeeer/jmfx-signals/internal/lib/jwt"
	"github.com/magabrotheeeer/jmfx-signals/internal/lib/latency"
	"github.com/magabrotheeeer/jmfx-signals/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/jmfx-signals/internal/lib/sl"
	"github.com/magabrotheeeer/jmfx-signals/internal/metrics"
	"github.com/magabrotheeeer/jmfx-signals/internal/migrations"
	"github.com/magabrotheeeer/jmfx-signals/internal/services/analysis"
	"github.com/magabrotheeeer/jmfx-signals/internal/services/broadcast"
	"github.com/magabrotheeeer/jmfx-signals/internal/services/chat"
	"github.com/magabrotheeeer/jmfx-signals/internal/services/cloudstore"
	"github.com/magabrotheeeer/jmfx-signals/internal/services/ledger"
	"github.com/magabrotheeeer/jmfx-signals/internal/services/sweeper"
	"github.com/magabrotheeeer/jmfx-signals/internal/services/watcher"
	"github.com/magabrotheeeer/jmfx-signals/internal/storage"
	"github.com/magabrotheeeer/jmfx-signals/internal/storage/postgresql"
	"github.com/magabrotheeeer/jmfx-signals/internal/storage/redisstore"
)

// Драйверы хранилища.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// App HTTP приложение дашборда.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	sweeper *sweeper.Sweeper
	closers []func() error
}

// New создаёт приложение по конфигу.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "dashboard.New"
	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("%s: jwt secret key is not set", op)
	}

	a := &App{logger: logger}

	store, err := a.openStore(ctx, cfg)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var delay latency.Delayer = latency.None{}
	if !cfg.Latency.Disabled {
		delay = latency.New(cfg.Latency.Scale)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	gem, err := gemini.New(ctx, cfg.Gemini, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pub, err := a.openPublisher(cfg)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	subs := ledger.New(store, delay, logger, m, cfg.AdminEmail)
	cloud := cloudstore.New(store, delay, logger, m)

	if cfg.StatusPoll.Sweep > 0 {
		a.sweeper = sweeper.New(subs, logger, cfg.StatusPoll.Sweep)
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Services{
		Ledger:    subs,
		Cloud:     cloud,
		Analysis:  analysis.New(gem, cloud, logger, m),
		Chat:      chat.New(gem, logger, m),
		Broadcast: broadcast.New(pub, logger, m),
		Watcher:   watcher.New(subs, logger, cfg.StatusPoll.Interval, cfg.StatusPoll.Timeout),
		Tokens:    jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL),
		Limiter:   rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst),
		Metrics:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	a.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return a, nil
}

// openStore открывает key-value хранилище выбранного драйвера.
func (a *App) openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case DriverMemory, "":
		a.logger.Warn("using in-memory store, data is lost on restart")
		return storage.NewMemory(), nil
	case DriverRedis:
		s, err := redisstore.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	case DriverPostgres:
		s, err := postgresql.New(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		if err := migrations.Run(s.DB, cfg.Storage.MigrationsPath); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// openPublisher подключается к брокеру. Без URL сигналы только логируются.
func (a *App) openPublisher(cfg *config.Config) (broadcast.Publisher, error) {
	if cfg.RabbitMQ.URL == "" {
		a.logger.Warn("rabbitmq url is not set, signals will be logged only")
		return broadcast.LogPublisher{Log: a.logger}, nil
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, conn.Close)

	ch, err := rabbitmq.SetupChannel(conn, cfg.RabbitMQ.Exchange, rabbitmq.SignalQueues(cfg.RabbitMQ))
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, ch.Close)
	return rabbitmq.NewSignalPublisher(ch, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.RoutingKey), nil
}

// Handler возвращает корневой HTTP обработчик.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run запускает сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	if a.sweeper != nil {
		go a.sweeper.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

// close закрывает ресурсы в обратном порядке открытия.
func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Error("failed to close resource", sl.Err(err))
		}
	}
	a.closers = nil
}
