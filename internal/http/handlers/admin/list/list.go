// Package list отдаёт администратору реестр подписок, разделённый на
// ожидающие подтверждения и активные.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/jmfx-signals/internal/http/response"
	"github.com/magabrotheeeer/jmfx-signals/internal/lib/sl"
	"github.com/magabrotheeeer/jmfx-signals/internal/models"
	"github.com/magabrotheeeer/jmfx-signals/internal/services/ledger"
)

// Service реестр подписок.
type Service interface {
	GetAllSubscriptions(ctx context.Context) ([]models.Subscription, error)
}

// Handler обработчик списка подписок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Реестр подписок
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /admin/subscriptions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	subs, err := h.service.GetAllSubscriptions(r.Context())
	if err != nil {
		log.Error("failed to list subscriptions", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list subscriptions"))
		return
	}

	pending, active := ledger.Partition(subs)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"pending": pending,
		"active":  active,
	}))
}
