// Package history отдаёт историю выполненных анализов.
package history

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

// Service хранилище истории.
type Service interface {
	GetHistory(ctx context.Context) ([]models.AnalysisRecord, error)
}

// Handler обработчик истории.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary История анализов
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse
// @Router /admin/history [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.history"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	records, err := h.service.GetHistory(r.Context())
	if err != nil {
		log.Error("failed to get history", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load history"))
		return
	}
	if records == nil {
		records = []models.AnalysisRecord{}
	}
	render.JSON(w, r, response.StatusOKWithData(records))
}
