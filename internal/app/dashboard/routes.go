package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/jmfx-signals/internal/http/handlers/admin/approve"
	"github.com/magabrotheeeer/jmfx-signals/internal/http/handlers/admin/history"
	"github.com/magabrotheeeer/jmfx-signals/internal/http/handlers/admin/list"
	"github.com/magabrotheeeer/jmfx-signals/internal/http/handlers/admin/reject"
	"github.com/magabrotheeeer/jmfx-signals/internal/http/handlers/analysis/analyze"
	broadcasthandler "github.com/magabrotheeeer/jmfx-signals/internal/http/handlers/analysis/broadcast"
	"github.com/magabrotheeeer/jmfx-signals/internal/http/handlers/auth/login"
	chathandler "github.com/magabrotheeeer/jmfx-signals/internal/http/handlers/chat"
	"github.com/magabrotheeeer/jmfx-signals/internal/http/handlers/group/add"
	"github.com/magabrotheeeer/jmfx-signals/internal/http/handlers/group/bulk"
	"github.com/magabrotheeeer/jmfx-signals/internal/http/handlers/group/members"
	"github.com/magabrotheeeer/jmfx-signals/internal/http/handlers/health"
	"github.com/magabrotheeeer/jmfx-signals/internal/http/handlers/payment/info"
	"github.com/magabrotheeeer/jmfx-signals/internal/http/handlers/payment/update"
	"github.com/magabrotheeeer/jmfx-signals/internal/http/handlers/subscription/activate"
	"github.com/magabrotheeeer/jmfx-signals/internal/http/handlers/subscription/read"
	"github.com/magabrotheeeer/jmfx-signals/internal/http/handlers/subscription/wait"
	"github.com/magabrotheeeer/jmfx-signals/internal/http/middlewarectx"
	"github.com/magabrotheeeer/jmfx-signals/internal/lib/jwt"
	"github.com/magabrotheeeer/jmfx-signals/internal/services/analysis"
	"github.com/magabrotheeeer/jmfx-signals/internal/services/broadcast"
	"github.com/magabrotheeeer/jmfx-signals/internal/services/chat"
	"github.com/magabrotheeeer/jmfx-signals/internal/services/cloudstore"
	"github.com/magabrotheeeer/jmfx-signals/internal/services/ledger"
	"github.com/magabrotheeeer/jmfx-signals/internal/services/watcher"
)

// Services зависимости маршрутов.
type Services struct {
	Ledger    *ledger.Ledger
	Cloud     *cloudstore.Store
	Analysis  *analysis.Service
	Chat      *chat.Service
	Broadcast *broadcast.Service
	Watcher   *watcher.Watcher
	Tokens    jwt.Maker
	Limiter   *rate.Limiter
	Metrics   http.Handler
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/login", login.New(logger, s.Tokens, s.Ledger).ServeHTTP)
		r.Get("/health", health.New(logger, s.Cloud).ServeHTTP)

		// Группа с токеном сессии
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Tokens, logger))

			r.Get("/subscription", read.New(logger, s.Ledger).ServeHTTP)
			r.Post("/subscription/activate", activate.New(logger, s.Ledger).ServeHTTP)
			r.Get("/subscription/wait", wait.New(logger, s.Watcher).ServeHTTP)
			r.Get("/payment-info", info.New(logger, s.Cloud).ServeHTTP)
			r.Post("/chat", chathandler.New(logger, s.Chat).ServeHTTP)

			// Только оплаченные подписки
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.SubscriptionStatusMiddleware(logger, s.Ledger))

				r.With(middlewarectx.RateLimitMiddleware(logger, s.Limiter)).
					Post("/analysis", analyze.New(logger, s.Analysis).ServeHTTP)
				r.Post("/analysis/broadcast", broadcasthandler.New(logger, s.Broadcast).ServeHTTP)
				r.Get("/group/members", members.New(logger, s.Cloud).ServeHTTP)
				r.Post("/group/members", add.New(logger, s.Cloud).ServeHTTP)
				r.Post("/group/members/bulk", bulk.New(logger, s.Cloud).ServeHTTP)
			})

			// Администратор
			r.Route("/admin", func(r chi.Router) {
				r.Use(middlewarectx.AdminMiddleware(logger))

				r.Get("/subscriptions", list.New(logger, s.Ledger).ServeHTTP)
				r.Post("/subscriptions/{email}/approve", approve.New(logger, s.Ledger).ServeHTTP)
				r.Post("/subscriptions/{email}/reject", reject.New(logger, s.Ledger).ServeHTTP)
				r.Put("/payment-info", update.New(logger, s.Cloud).ServeHTTP)
				r.Get("/history", history.New(logger, s.Cloud).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", s.Metrics)
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
