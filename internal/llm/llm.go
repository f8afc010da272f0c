// Package llm описывает внешнюю языковую модель, которой пользуются анализ и чат,
// и классификацию её ошибок.
package llm

import (
	"context"
	"errors"

	"github.com/magabrotheeeer/jmfx-signals/internal/models"
)

// Ошибки модели. Адаптеры оборачивают ими исходную ошибку.
var (
	ErrCredentialMissing  = errors.New("llm: api key is missing")
	ErrCredentialRejected = errors.New("llm: api key rejected or model not found")
	ErrMalformedResponse  = errors.New("llm: malformed or empty response")
	ErrTransportFailure   = errors.New("llm: transport failure")
)

// AnalysisResponse сырой ответ модели на запрос анализа.
type AnalysisResponse struct {
	// Body JSON объект по схеме анализа.
	Body    string
	Sources []models.GroundingSource
}

// AnalysisGenerator выполняет один запрос структурированного анализа валютной пары.
type AnalysisGenerator interface {
	GenerateAnalysis(ctx context.Context, pair string, timeframe models.TimeFrame) (AnalysisResponse, error)
}

// ChatResponder отвечает на диалог одной репликой ассистента.
type ChatResponder interface {
	Respond(ctx context.Context, systemInstruction string, turns []models.ChatTurn) (string, error)
}

// Message возвращает сообщение об ошибке для пользователя.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCredentialMissing):
		return "API Key haijapatikana. Tafadhali bonyeza Settings (⚙️) kuchagua key."
	case errors.Is(err, ErrCredentialRejected):
		return "API Key error au Model haipatikani. Hakikisha umechagua key sahihi."
	case errors.Is(err, ErrMalformedResponse):
		return "Samahani, model haijatuma jibu sahihi. Jaribu tena."
	case errors.Is(err, ErrTransportFailure):
		return "Imeshindikana kufanya uchambuzi. Tatizo la mtandao."
	default:
		return "Hitilafu imetokea."
	}
}

// NeedsCredential сообщает, что пользователю нужно заново выбрать API key.
func NeedsCredential(err error) bool {
	return errors.Is(err, ErrCredentialMissing) || errors.Is(err, ErrCredentialRejected)
}
