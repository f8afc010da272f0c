package bulk

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) BulkAddMembers(ctx context.Context, count int) (int, error) {
	args := m.Called(ctx, count)
	return args.Int(0), args.Error(1)
}

func TestBulkHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "added",
			body: `{"count":500}`,
			setupMock: func(m *MockService) {
				m.On("BulkAddMembers", mock.Anything, 500).Return(11040, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"total":11040`,
		},
		{
			name:           "zero count",
			body:           `{"count":0}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Count must be greater than 0`,
		},
		{
			name:           "negative count",
			body:           `{"count":-5}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Count`,
		},
		{
			name: "store error",
			body: `{"count":1}`,
			setupMock: func(m *MockService) {
				m.On("BulkAddMembers", mock.Anything, 1).Return(0, errors.New("down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not add members"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/group/members/bulk", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
