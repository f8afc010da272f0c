// Package analysis запрашивает у модели технический анализ валютной пары
// и сохраняет результат в историю.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/jmfx-signals/internal/lib/sl"
	"github.com/magabrotheeeer/jmfx-signals/internal/llm"
	"github.com/magabrotheeeer/jmfx-signals/internal/models"
)

var (
	ErrEmptyPair        = errors.New("currency pair is empty")
	ErrInvalidTimeFrame = errors.New("invalid timeframe")
)

// HistoryStore сохраняет завершённые анализы.
type HistoryStore interface {
	SaveAnalysis(ctx context.Context, rec models.AnalysisRecord) error
}

// Metrics счётчик результатов анализа.
type Metrics interface {
	IncAnalysis(result string)
}

// Service выполняет запросы анализа.
type Service struct {
	gen     llm.AnalysisGenerator
	history HistoryStore
	log     *slog.Logger
	metrics Metrics
	now     func() time.Time
}

// New создаёт Service.
func New(gen llm.AnalysisGenerator, history HistoryStore, log *slog.Logger, metrics Metrics) *Service {
	return &Service{
		gen:     gen,
		history: history,
		log:     log,
		metrics: metrics,
		now:     time.Now,
	}
}

// NormalizePair приводит пару к виду, в котором её вводит пользователь: без пробелов по краям, в верхнем регистре.
func NormalizePair(pair string) string {
	return strings.ToUpper(strings.TrimSpace(pair))
}

// Analyze запрашивает анализ pair на таймфрейме timeframe от имени email.
// Ошибка сохранения в историю только логируется.
func (s *Service) Analyze(ctx context.Context, email, pair string, timeframe models.TimeFrame) (models.ForexAnalysis, error) {
	const op = "analysis.Analyze"

	pair = NormalizePair(pair)
	if pair == "" {
		return models.ForexAnalysis{}, fmt.Errorf("%s: %w", op, ErrEmptyPair)
	}
	if !timeframe.Valid() {
		return models.ForexAnalysis{}, fmt.Errorf("%s: %w: %q", op, ErrInvalidTimeFrame, timeframe)
	}

	resp, err := s.gen.GenerateAnalysis(ctx, pair, timeframe)
	if err != nil {
		s.metrics.IncAnalysis(resultLabel(err))
		return models.ForexAnalysis{}, fmt.Errorf("%s: %w", op, err)
	}

	var result models.ForexAnalysis
	if err := json.Unmarshal([]byte(resp.Body), &result); err != nil {
		s.metrics.IncAnalysis(resultLabel(llm.ErrMalformedResponse))
		return models.ForexAnalysis{}, fmt.Errorf("%s: %w: %v", op, llm.ErrMalformedResponse, err)
	}
	if len(resp.Sources) > 0 {
		result.GroundingSources = resp.Sources
	}

	rec := models.AnalysisRecord{
		ID:          uuid.NewString(),
		RequestedBy: email,
		CreatedAt:   s.now().UTC(),
		Analysis:    result,
	}
	if err := s.history.SaveAnalysis(ctx, rec); err != nil {
		s.log.Error("failed to save analysis to history", slog.String("id", rec.ID), sl.Err(err))
	}

	s.metrics.IncAnalysis("ok")
	s.log.Info("analysis completed",
		slog.String("pair", pair),
		slog.String("timeframe", string(timeframe)),
		slog.String("signal", string(result.PrimarySignal.Type)),
	)
	return result, nil
}

func resultLabel(err error) string {
	switch {
	case llm.NeedsCredential(err):
		return "credential"
	case errors.Is(err, llm.ErrMalformedResponse):
		return "malformed"
	default:
		return "transport"
	}
}
