// Package chat реализует HTTP-обработчик чата с ассистентом.
//
// История диалога хранится на клиенте и присылается целиком в каждом запросе.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/jmfx-signals/internal/http/response"
	"github.com/magabrotheeeer/jmfx-signals/internal/lib/sl"
	"github.com/magabrotheeeer/jmfx-signals/internal/models"
	chatsvc "github.com/magabrotheeeer/jmfx-signals/internal/services/chat"
)

// Request сообщение пользователя и предыдущие реплики.
type Request struct {
	History []models.ChatTurn `json:"history" validate:"max=100,dive"`
	Message string            `json:"message" validate:"required,max=4000"`
}

// Service ассистент.
type Service interface {
	Reply(ctx context.Context, history []models.ChatTurn, message string) (chatsvc.Result, error)
}

// Handler обработчик чата.
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
// @Summary Сообщение ассистенту
// @Description Ошибка модели возвращается как реплика ассистента, needs_key просит повторно выбрать ключ.
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Сообщение и история"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /chat [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chat"

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

	res, err := h.service.Reply(r.Context(), req.History, req.Message)
	if err != nil {
		if errors.Is(err, chatsvc.ErrEmptyMessage) {
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("message is empty"))
			return
		}
		log.Error("chat failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("chat is unavailable"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(res))
}
