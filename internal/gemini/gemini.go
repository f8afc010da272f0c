// Package gemini реализует llm.AnalysisGenerator и llm.ChatResponder поверх Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/magabrotheeeer/jmfx-signals/internal/config"
	"github.com/magabrotheeeer/jmfx-signals/internal/llm"
	"github.com/magabrotheeeer/jmfx-signals/internal/models"
)

const notFoundMessage = "Requested entity was not found"

// Client адаптер Gemini. Без API key клиент создаётся, но каждый вызов возвращает llm.ErrCredentialMissing.
type Client struct {
	genai *genai.Client
	model string
	log   *slog.Logger
}

// New создаёт клиента Gemini по настройкам из конфига.
func New(ctx context.Context, cfg config.Gemini, log *slog.Logger) (*Client, error) {
	const op = "gemini.New"
	c := &Client{model: cfg.Model, log: log}
	if cfg.APIKey == "" {
		log.Warn("gemini api key is not set, analysis and chat are unavailable")
		return c, nil
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.genai = client
	return c, nil
}

// GenerateAnalysis запрашивает анализ пары с поиском в интернете и структурированным ответом.
func (c *Client) GenerateAnalysis(ctx context.Context, pair string, timeframe models.TimeFrame) (llm.AnalysisResponse, error) {
	const op = "gemini.GenerateAnalysis"
	if c.genai == nil {
		return llm.AnalysisResponse{}, fmt.Errorf("%s: %w", op, llm.ErrCredentialMissing)
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(analysisPrompt(pair, timeframe)), &genai.GenerateContentConfig{
		Tools:            []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		ResponseMIMEType: "application/json",
		ResponseSchema:   analysisSchema(),
	})
	if err != nil {
		c.log.Error("gemini analysis request failed", slog.String("pair", pair), slog.String("error", err.Error()))
		return llm.AnalysisResponse{}, fmt.Errorf("%s: %w", op, classify(err))
	}

	body := strings.TrimSpace(resp.Text())
	if body == "" {
		return llm.AnalysisResponse{}, fmt.Errorf("%s: %w", op, llm.ErrMalformedResponse)
	}
	return llm.AnalysisResponse{Body: body, Sources: groundingSources(resp)}, nil
}

// Respond отправляет диалог с системной инструкцией и возвращает текст ответа.
func (c *Client) Respond(ctx context.Context, systemInstruction string, turns []models.ChatTurn) (string, error) {
	const op = "gemini.Respond"
	if c.genai == nil {
		return "", fmt.Errorf("%s: %w", op, llm.ErrCredentialMissing)
	}

	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		contents = append(contents, genai.NewContentFromText(t.Text, genai.Role(t.Role)))
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	})
	if err != nil {
		c.log.Error("gemini chat request failed", slog.String("error", err.Error()))
		return "", fmt.Errorf("%s: %w", op, classify(err))
	}
	return resp.Text(), nil
}

// classify сопоставляет ошибку SDK с таксономией llm.
func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 401, apiErr.Code == 403, apiErr.Code == 404,
			strings.Contains(apiErr.Message, notFoundMessage),
			strings.Contains(apiErr.Message, "API key not valid"):
			return fmt.Errorf("%w: %s", llm.ErrCredentialRejected, apiErr.Message)
		}
		return fmt.Errorf("%w: %s", llm.ErrTransportFailure, apiErr.Message)
	}
	if strings.Contains(err.Error(), notFoundMessage) {
		return fmt.Errorf("%w: %v", llm.ErrCredentialRejected, err)
	}
	return fmt.Errorf("%w: %v", llm.ErrTransportFailure, err)
}

// groundingSources извлекает веб-источники из метаданных первого кандидата.
func groundingSources(resp *genai.GenerateContentResponse) []models.GroundingSource {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil
	}
	meta := resp.Candidates[0].GroundingMetadata
	if meta == nil {
		return nil
	}

	var sources []models.GroundingSource
	for _, chunk := range meta.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		sources = append(sources, models.GroundingSource{Title: chunk.Web.Title, URI: chunk.Web.URI})
	}
	return sources
}
