// Package reject реализует отклонение запроса активации администратором.
// Запись удаляется из реестра, пользователь снова видит неоплаченный статус.
package reject

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/jmfx-signals/internal/http/response"
	"github.com/magabrotheeeer/jmfx-signals/internal/lib/sl"
)

// Service реестр подписок.
type Service interface {
	AdminRejectUser(ctx context.Context, email string) error
}

// Handler обработчик отклонения.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отклонение запроса
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param email path string true "Email пользователя"
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse
// @Router /admin/subscriptions/{email}/reject [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.reject"

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

	if err := h.service.AdminRejectUser(r.Context(), email); err != nil {
		log.Error("failed to reject user", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not reject user"))
		return
	}

	log.Info("user rejected", slog.String("email", email))
	render.JSON(w, r, response.OK())
}
