// Package bulk реализует массовое увеличение счётчика участников группы.
package bulk

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/jmfx-signals/internal/http/response"
	"github.com/magabrotheeeer/jmfx-signals/internal/lib/sl"
)

// Request число добавляемых участников.
type Request struct {
	Count int `json:"count" validate:"gt=0,lte=100000"`
}

// Service облачное хранилище участников.
type Service interface {
	BulkAddMembers(ctx context.Context, count int) (int, error)
}

// Handler обработчик массового добавления.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Массовое добавление участников
// @Description Увеличивает счётчик участников, список не меняется.
// @Tags Group
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Количество"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /group/members/bulk [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.group.bulk"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	total, err := h.service.BulkAddMembers(r.Context(), req.Count)
	if err != nil {
		log.Error("failed to bulk add members", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not add members"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"total": total,
	}))
}
