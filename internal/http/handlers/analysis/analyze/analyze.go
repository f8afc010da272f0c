// Package analyze реализует HTTP-обработчик запроса анализа валютной пары.
//
// Ошибки модели возвращаются текстом для пользователя и флагом needs_key,
// по которому клиент предлагает заново выбрать ключ API.
package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/jmfx-signals/internal/http/middlewarectx"
	"github.com/magabrotheeeer/jmfx-signals/internal/http/response"
	"github.com/magabrotheeeer/jmfx-signals/internal/lib/sl"
	"github.com/magabrotheeeer/jmfx-signals/internal/llm"
	"github.com/magabrotheeeer/jmfx-signals/internal/models"
	"github.com/magabrotheeeer/jmfx-signals/internal/services/analysis"
)

// Request пара и таймфрейм.
type Request struct {
	Pair      string `json:"pair" validate:"required,max=32"`
	Timeframe string `json:"timeframe" validate:"required,oneof=1M 5M 15M 1H 4H 1D 1W"`
}

// Service сервис анализа.
type Service interface {
	Analyze(ctx context.Context, email, pair string, timeframe models.TimeFrame) (models.ForexAnalysis, error)
}

// Handler обработчик анализа.
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
// @Summary Анализ валютной пары
// @Tags Analysis
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Пара и таймфрейм"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 402 {object} response.ErrorResponse "Подписка не активна"
// @Failure 422 {object} response.ErrorResponse
// @Failure 429 {object} response.ErrorResponse
// @Failure 502 {object} response.Response "Ошибка модели, data.needs_key"
// @Router /analysis [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.analysis.analyze"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	req.Pair = analysis.NormalizePair(req.Pair)

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	res, err := h.service.Analyze(r.Context(), email, req.Pair, models.TimeFrame(req.Timeframe))
	switch {
	case err == nil:
	case errors.Is(err, analysis.ErrEmptyPair), errors.Is(err, analysis.ErrInvalidTimeFrame):
		log.Error("invalid analysis request", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(err.Error()))
		return
	default:
		log.Error("analysis failed", sl.Err(err))
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, response.ErrorWithData(llm.Message(err), map[string]any{
			"needs_key": llm.NeedsCredential(err),
		}))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(res))
}
