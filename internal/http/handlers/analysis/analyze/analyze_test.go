package analyze

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/jmfx-signals/internal/http/middlewarectx"
	"github.com/magabrotheeeer/jmfx-signals/internal/lib/jwt"
	"github.com/magabrotheeeer/jmfx-signals/internal/llm"
	"github.com/magabrotheeeer/jmfx-signals/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Analyze(ctx context.Context, email, pair string, tf models.TimeFrame) (models.ForexAnalysis, error) {
	args := m.Called(ctx, email, pair, tf)
	return args.Get(0).(models.ForexAnalysis), args.Error(1)
}

func TestAnalyzeHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   []string
	}{
		{
			name: "ok",
			body: `{"pair":" xau/usd ","timeframe":"15M"}`,
			setupMock: func(m *MockService) {
				m.On("Analyze", mock.Anything, "u@x.com", "XAU/USD", models.TimeFrame15M).
					Return(models.ForexAnalysis{Pair: "XAU/USD", Timeframe: "15M"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"pair":"XAU/USD"`},
		},
		{
			name:           "unknown timeframe",
			body:           `{"pair":"EUR/USD","timeframe":"2H"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   []string{`field Timeframe must be one of`},
		},
		{
			name:           "blank pair",
			body:           `{"pair":"   ","timeframe":"1H"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   []string{`field Pair is a required field`},
		},
		{
			name: "missing key",
			body: `{"pair":"EUR/USD","timeframe":"1H"}`,
			setupMock: func(m *MockService) {
				m.On("Analyze", mock.Anything, "u@x.com", "EUR/USD", models.TimeFrame1H).
					Return(models.ForexAnalysis{}, fmt.Errorf("analysis.Analyze: %w", llm.ErrCredentialMissing))
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   []string{`"needs_key":true`, llm.Message(llm.ErrCredentialMissing)},
		},
		{
			name: "transport failure",
			body: `{"pair":"EUR/USD","timeframe":"1H"}`,
			setupMock: func(m *MockService) {
				m.On("Analyze", mock.Anything, "u@x.com", "EUR/USD", models.TimeFrame1H).
					Return(models.ForexAnalysis{}, fmt.Errorf("analysis.Analyze: %w", llm.ErrTransportFailure))
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   []string{`"needs_key":false`, llm.Message(llm.ErrTransportFailure)},
		},
		{
			name:           "bad json",
			body:           `nope`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   []string{`"error":"invalid request body"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis", strings.NewReader(tt.body))
			req = req.WithContext(middlewarectx.WithUser(req.Context(), "u@x.com", jwt.RoleUser))
			w := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			for _, want := range tt.expectedBody {
				assert.Contains(t, w.Body.String(), want)
			}
			svc.AssertExpectations(t)
		})
	}
}
