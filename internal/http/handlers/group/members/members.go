// Package members отдаёт список участников VIP группы и их общее число.
package members

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/jmfx-signals/internal/http/response"
	"github.com/magabrotheeeer/jmfx-signals/internal/lib/sl"
	"github.com/magabrotheeeer/jmfx-signals/internal/models"
)

// Service облачное хранилище участников.
type Service interface {
	GetMembers(ctx context.Context) ([]models.Member, error)
	TotalMembers(ctx context.Context) (int, error)
}

// Handler обработчик списка участников.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Участники VIP группы
// @Tags Group
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse
// @Router /group/members [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.group.members"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	list, err := h.service.GetMembers(r.Context())
	if err != nil {
		log.Error("failed to get members", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load members"))
		return
	}
	total, err := h.service.TotalMembers(r.Context())
	if err != nil {
		log.Error("failed to get members total", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load members"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"members": list,
		"total":   total,
	}))
}
