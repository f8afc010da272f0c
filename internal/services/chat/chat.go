// Package chat реализует ассистента JM FX поверх языковой модели.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/jmfx-signals/internal/lib/sl"
	"github.com/magabrotheeeer/jmfx-signals/internal/llm"
	"github.com/magabrotheeeer/jmfx-signals/internal/models"
)

const (
	// MaxTurns сколько последних реплик уходит в модель.
	MaxTurns = 10

	SystemInstruction = "You are a helpful Forex assistant for JM FX. Keep answers brief and professional in Swahili/English mix."

	FallbackReply   = "Samahani, siwezi kujibu sasa."
	KeyErrorReply   = "API Key error. Please re-select your API key in Settings."
	NetworkErrReply = "Error: Tatizo la mtandao."
)

// ErrEmptyMessage сообщение пользователя пустое.
var ErrEmptyMessage = errors.New("message is empty")

// Metrics счётчик ответов ассистента.
type Metrics interface {
	IncChat(result string)
}

// Result ответ ассистента и полная история диалога с ним.
type Result struct {
	Reply    models.ChatTurn   `json:"reply"`
	History  []models.ChatTurn `json:"history"`
	NeedsKey bool              `json:"needs_key"`
}

// Service ассистент.
type Service struct {
	responder llm.ChatResponder
	log       *slog.Logger
	metrics   Metrics
}

// New создаёт Service.
func New(responder llm.ChatResponder, log *slog.Logger, metrics Metrics) *Service {
	return &Service{responder: responder, log: log, metrics: metrics}
}

// Reply добавляет реплику пользователя к истории и запрашивает ответ модели по последним MaxTurns репликам.
// Ошибка модели превращается в реплику ассистента с текстом ошибки.
func (s *Service) Reply(ctx context.Context, history []models.ChatTurn, message string) (Result, error) {
	const op = "chat.Reply"
	if strings.TrimSpace(message) == "" {
		return Result{}, fmt.Errorf("%s: %w", op, ErrEmptyMessage)
	}

	turns := make([]models.ChatTurn, 0, len(history)+2)
	turns = append(turns, history...)
	turns = append(turns, models.ChatTurn{Role: models.ChatRoleUser, Text: message})

	window := turns
	if len(window) > MaxTurns {
		window = window[len(window)-MaxTurns:]
	}

	res := Result{}
	text, err := s.responder.Respond(ctx, SystemInstruction, window)
	switch {
	case err != nil:
		s.log.Error("chat reply failed", sl.Err(err))
		res.NeedsKey = llm.NeedsCredential(err)
		text = NetworkErrReply
		if errors.Is(err, llm.ErrCredentialRejected) {
			text = KeyErrorReply
		}
		s.metrics.IncChat("error")
	case strings.TrimSpace(text) == "":
		text = FallbackReply
		s.metrics.IncChat("empty")
	default:
		s.metrics.IncChat("ok")
	}

	res.Reply = models.ChatTurn{Role: models.ChatRoleAssistant, Text: text}
	res.History = append(turns, res.Reply)
	return res, nil
}
