// Package wait держит запрос открытым, пока подписка не станет оплаченной
// или не истечёт время ожидания.
package wait

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/jmfx-signals/internal/http/middlewarectx"
	"github.com/magabrotheeeer/jmfx-signals/internal/http/response"
	"github.com/magabrotheeeer/jmfx-signals/internal/lib/sl"
	"github.com/magabrotheeeer/jmfx-signals/internal/models"
	"github.com/magabrotheeeer/jmfx-signals/internal/services/watcher"
)

// Watcher ожидает оплаты подписки.
type Watcher interface {
	Wait(ctx context.Context, email string) (models.Subscription, error)
}

// Handler обработчик ожидания.
type Handler struct {
	log     *slog.Logger
	watcher Watcher
}

// New создаёт Handler.
func New(log *slog.Logger, w Watcher) *Handler {
	return &Handler{
		log:     log,
		watcher: w,
	}
}

// ServeHTTP godoc
// @Summary Ожидание подтверждения оплаты
// @Description Периодически перечитывает статус подписки. По таймауту возвращает последний статус с paid=false.
// @Tags Subscription
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /subscription/wait [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.wait"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	email, ok := middlewarectx.EmailFrom(r.Context())
	if !ok {
		log.Error("user identification missing")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}

	sub, err := h.watcher.Wait(r.Context(), email)
	switch {
	case err == nil:
	case errors.Is(err, watcher.ErrTimeout):
		log.Info("subscription still unpaid", slog.String("email", email))
	case errors.Is(err, context.Canceled):
		log.Info("client stopped waiting", slog.String("email", email))
		return
	default:
		log.Error("failed to wait for subscription", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read subscription"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"paid":         sub.IsPaid,
		"subscription": sub,
	}))
}
