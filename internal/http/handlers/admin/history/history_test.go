package history

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/jmfx-signals/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) GetHistory(ctx context.Context) ([]models.AnalysisRecord, error) {
	args := m.Called(ctx)
	recs, _ := args.Get(0).([]models.AnalysisRecord)
	return recs, args.Error(1)
}

func TestHistoryHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "records",
			setupMock: func(m *MockService) {
				m.On("GetHistory", mock.Anything).Return([]models.AnalysisRecord{
					{ID: "r1", RequestedBy: "u@x.com", Analysis: models.ForexAnalysis{Pair: "EUR/USD"}},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"requestedBy":"u@x.com"`,
		},
		{
			name: "empty",
			setupMock: func(m *MockService) {
				m.On("GetHistory", mock.Anything).Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"data":[]`,
		},
		{
			name: "error",
			setupMock: func(m *MockService) {
				m.On("GetHistory", mock.Anything).Return(nil, errors.New("down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not load history"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			w := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/history", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
