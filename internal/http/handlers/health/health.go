// Package health отдаёт состояние сервиса и облачного хранилища.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/jmfx-signals/internal/http/response"
)

// StatusChecker проверяет доступность хранилища.
type StatusChecker interface {
	CheckServerStatus(ctx context.Context) bool
}

// Handler обработчик проверки здоровья.
type Handler struct {
	log    *slog.Logger
	status StatusChecker
}

// New создаёт Handler.
func New(log *slog.Logger, status StatusChecker) *Handler {
	return &Handler{
		log:    log,
		status: status,
	}
}

// ServeHTTP godoc
// @Summary Проверка состояния
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cloud := "online"
	if !h.status.CheckServerStatus(r.Context()) {
		cloud = "offline"
		h.log.Warn("cloud store is offline")
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": "ok",
		"cloud":  cloud,
	}))
}
