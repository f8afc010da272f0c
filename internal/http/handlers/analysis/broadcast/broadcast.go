// Package broadcast реализует отправку сигнала анализа в VIP группу.
package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/jmfx-signals/internal/http/middlewarectx"
	"github.com/magabrotheeeer/jmfx-signals/internal/http/response"
	"github.com/magabrotheeeer/jmfx-signals/internal/lib/sl"
	"github.com/magabrotheeeer/jmfx-signals/internal/models"
	broadcastsvc "github.com/magabrotheeeer/jmfx-signals/internal/services/broadcast"
)

// Service рассылка сигналов.
type Service interface {
	Broadcast(ctx context.Context, email string, a models.ForexAnalysis) (models.SignalMessage, error)
}

// Handler обработчик рассылки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Рассылка сигнала в VIP группу
// @Tags Analysis
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ForexAnalysis true "Результат анализа"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /analysis/broadcast [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.analysis.broadcast"

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

	var req models.ForexAnalysis
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	msg, err := h.service.Broadcast(r.Context(), email, req)
	if err != nil {
		if errors.Is(err, broadcastsvc.ErrIncompleteSignal) {
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("analysis has no signal to broadcast"))
			return
		}
		log.Error("failed to broadcast signal", sl.Err(err))
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, response.Error("could not broadcast signal"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(msg))
}
