package create

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/lukaskostka/janrichtertrainingapp/internal/apperrors"
	"github.com/lukaskostka/janrichtertrainingapp/internal/http/middlewarectx"
)

// MockService реализует интерфейс create.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, trainerID, clientID uuid.UUID, name string, totalSessions int, price *float64) (uuid.UUID, error) {
	args := m.Called(ctx, trainerID, clientID, name, totalSessions, price)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func TestPackageCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	trainerID := uuid.New()
	clientID := uuid.New()
	packageID := uuid.New()

	validBody := map[string]any{
		"client_id":      clientID.String(),
		"name":           "10 tréninků",
		"total_sessions": 10,
		"price":          8500.0,
	}

	tests := []struct {
		name           string
		body           any
		withTrainer    bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "успешное создание пакета",
			body:        validBody,
			withTrainer: true,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, trainerID, clientID, "10 tréninků", 10,
					mock.MatchedBy(func(p *float64) bool { return p != nil && *p == 8500 })).
					Return(packageID, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   packageID.String(),
		},
		{
			name: "нулевой размер пакета",
			body: map[string]any{
				"client_id":      clientID.String(),
				"name":           "Prázdný",
				"total_sessions": 0,
			},
			withTrainer:    true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field TotalSessions is a required field`,
		},
		{
			name:        "активный пакет уже существует",
			body:        validBody,
			withTrainer: true,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, trainerID, clientID, "10 tréninků", 10, mock.Anything).
					Return(uuid.Nil, apperrors.ErrActivePackageExists)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `client already has an active package`,
		},
		{
			name:        "клиент не найден",
			body:        validBody,
			withTrainer: true,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, trainerID, clientID, "10 tréninků", 10, mock.Anything).
					Return(uuid.Nil, apperrors.ErrClientNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `client not found`,
		},
		{
			name:           "отсутствует авторизация",
			body:           validBody,
			withTrainer:    false,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `unauthorized`,
		},
		{
			name:        "ошибка сервиса",
			body:        validBody,
			withTrainer: true,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, trainerID, clientID, "10 tréninků", 10, mock.Anything).
					Return(uuid.Nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not create package`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			body, err := json.Marshal(tt.body)
			assert.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/packages", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			ctx := req.Context()
			if tt.withTrainer {
				ctx = context.WithValue(ctx, middlewarectx.TrainerID, trainerID.String())
			}
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
