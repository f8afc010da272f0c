// Package update реализует изменение реквизитов оплаты администратором.
package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/jmfx-signals/internal/http/response"
	"github.com/magabrotheeeer/jmfx-signals/internal/lib/sl"
	"github.com/magabrotheeeer/jmfx-signals/internal/models"
)

// Request новые реквизиты.
type Request struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,max=32"`
	AccountName string `json:"accountName" validate:"required,max=128"`
}

// Service хранилище реквизитов.
type Service interface {
	UpdatePaymentInfo(ctx context.Context, phoneNumber, accountName string) (models.PaymentInfo, error)
}

// Handler обработчик изменения реквизитов.
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
// @Summary Изменение реквизитов оплаты
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Реквизиты"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /admin/payment-info [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.update"

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
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	req.AccountName = strings.TrimSpace(req.AccountName)

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	info, err := h.service.UpdatePaymentInfo(r.Context(), req.PhoneNumber, req.AccountName)
	if err != nil {
		log.Error("failed to update payment info", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update payment info"))
		return
	}

	log.Info("payment info updated")
	render.JSON(w, r, response.StatusOKWithData(info))
}
