// Package approve реализует подтверждение оплаты подписки администратором.
package approve

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/jmfx-signals/internal/http/response"
	"github.com/magabrotheeeer/jmfx-signals/internal/lib/sl"
	"github.com/magabrotheeeer/jmfx-signals/internal/models"
	"github.com/magabrotheeeer/jmfx-signals/internal/services/ledger"
)

// Service реестр подписок.
type Service interface {
	AdminApproveUser(ctx context.Context, email string) (models.Subscription, error)
}

// Handler обработчик подтверждения.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Подтверждение оплаты
// @Description Активирует подписку на 30 дней. Запрос без записи в реестре возвращает 404.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param email path string true "Email пользователя"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /admin/subscriptions/{email}/approve [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.approve"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil {
		log.Error("failed to decode email from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid email"))
		return
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		log.Error("empty email in url")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid email"))
		return
	}

	sub, err := h.service.AdminApproveUser(r.Context(), email)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("subscription not found"))
			return
		}
		log.Error("failed to approve user", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not approve user"))
		return
	}

	log.Info("user approved", slog.String("email", email))
	render.JSON(w, r, response.StatusOKWithData(sub))
}
