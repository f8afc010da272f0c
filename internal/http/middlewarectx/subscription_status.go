package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/jmfx-signals/internal/http/response"
	"github.com/magabrotheeeer/jmfx-signals/internal/lib/sl"
	"github.com/magabrotheeeer/jmfx-signals/internal/models"
)

// SubscriptionReader читает подписку пользователя из реестра.
type SubscriptionReader interface {
	GetSubscription(ctx context.Context, email string) (models.Subscription, error)
}

// SubscriptionStatusMiddleware создает middleware для проверки статуса подписки пользователя.
// Доступ получают только оплаченные подписки. Истечение применяется при чтении.
func SubscriptionStatusMiddleware(log *slog.Logger, subs SubscriptionReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, ok := EmailFrom(r.Context())
			if !ok {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			sub, err := subs.GetSubscription(r.Context(), email)
			if err != nil {
				log.Error("failed to get subscription status", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}

			if !sub.IsPaid {
				log.Info("subscription is not active, access denied", slog.String("email", email))
				render.Status(r, http.StatusPaymentRequired)
				render.JSON(w, r, response.Error("subscription is not active"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
