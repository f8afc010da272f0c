// Package login реализует HTTP-обработчик входа в дашборд по email.
//
// Пароля нет: обработчик выдаёт токен сессии с ролью admin для email администратора
// и ролью user для всех остальных.
package login

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/jmfx-signals/internal/http/response"
	"github.com/magabrotheeeer/jmfx-signals/internal/lib/jwt"
	"github.com/magabrotheeeer/jmfx-signals/internal/lib/sl"
)

// Request структура входных данных для входа.
type Request struct {
	Email string `json:"email" validate:"required,email"`
}

// TokenMaker выпускает токен сессии.
type TokenMaker interface {
	GenerateToken(email, role string) (string, error)
}

// AdminChecker определяет администратора по email.
type AdminChecker interface {
	IsAdmin(email string) bool
}

// Handler обрабатывает HTTP-запросы для входа.
type Handler struct {
	log      *slog.Logger
	tokens   TokenMaker
	admins   AdminChecker
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, tokens TokenMaker, admins AdminChecker) *Handler {
	return &Handler{
		log:      log,
		tokens:   tokens,
		admins:   admins,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход в дашборд
// @Description Выдаёт токен сессии для email. Роль admin получает только email администратора.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Email пользователя"
// @Success 200 {object} response.Response "Успешный вход"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	role := jwt.RoleUser
	if h.admins.IsAdmin(req.Email) {
		role = jwt.RoleAdmin
	}

	token, err := h.tokens.GenerateToken(req.Email, role)
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create session"))
		return
	}

	log.Info("login success", slog.String("email", req.Email), slog.String("role", role))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"token": token,
		"email": req.Email,
		"role":  role,
	}))
}
