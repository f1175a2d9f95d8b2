package status

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/lukaskostka/janrichtertrainingapp/internal/apperrors"
	"github.com/lukaskostka/janrichtertrainingapp/internal/http/middlewarectx"
	"github.com/lukaskostka/janrichtertrainingapp/internal/models"
)

// MockService реализует интерфейс status.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Complete(ctx context.Context, trainerID, sessionID uuid.UUID) (*models.Session, *models.Package, error) {
	args := m.Called(ctx, trainerID, sessionID)
	var sess *models.Session
	var pkg *models.Package
	if args.Get(0) != nil {
		sess = args.Get(0).(*models.Session)
	}
	if args.Get(1) != nil {
		pkg = args.Get(1).(*models.Package)
	}
	return sess, pkg, args.Error(2)
}

func (m *MockService) SetStatus(ctx context.Context, trainerID, sessionID uuid.UUID, status string) (*models.Session, error) {
	args := m.Called(ctx, trainerID, sessionID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func TestStatusHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	trainerID := uuid.New()
	sessionID := uuid.New()

	tests := []struct {
		name           string
		body           string
		withTrainer    bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "завершение списывает кредит",
			body:        `{"status":"completed"}`,
			withTrainer: true,
			setupMock: func(m *MockService) {
				m.On("Complete", mock.Anything, trainerID, sessionID).
					Return(
						&models.Session{ID: sessionID, Status: models.SessionStatusCompleted},
						&models.Package{ID: uuid.New(), UsedSessions: 3, TotalSessions: 10},
						nil,
					)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name:        "отмена без пакета",
			body:        `{"status":"cancelled"}`,
			withTrainer: true,
			setupMock: func(m *MockService) {
				m.On("SetStatus", mock.Anything, trainerID, sessionID, "cancelled").
					Return(&models.Session{ID: sessionID, Status: models.SessionStatusCancelled}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name:           "недопустимый статус",
			body:           `{"status":"paused"}`,
			withTrainer:    true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Status has an unsupported value`,
		},
		{
			name:           "некорректный JSON",
			body:           "not a json",
			withTrainer:    true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid request body`,
		},
		{
			name:           "отсутствует авторизация",
			body:           `{"status":"cancelled"}`,
			withTrainer:    false,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `unauthorized`,
		},
		{
			name:        "повторное завершение без списания",
			body:        `{"status":"completed"}`,
			withTrainer: true,
			setupMock: func(m *MockService) {
				m.On("Complete", mock.Anything, trainerID, sessionID).
					Return(
						&models.Session{ID: sessionID, Status: models.SessionStatusCompleted},
						nil,
						nil,
					)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name:        "завершение отменённой тренировки",
			body:        `{"status":"completed"}`,
			withTrainer: true,
			setupMock: func(m *MockService) {
				m.On("Complete", mock.Anything, trainerID, sessionID).
					Return(nil, nil, apperrors.ErrInvalidTransition)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `only scheduled sessions can change status`,
		},
		{
			name:        "тренировка не найдена",
			body:        `{"status":"no_show"}`,
			withTrainer: true,
			setupMock: func(m *MockService) {
				m.On("SetStatus", mock.Anything, trainerID, sessionID, "no_show").
					Return(nil, apperrors.ErrSessionNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `session not found`,
		},
		{
			name:        "ошибка сервиса",
			body:        `{"status":"cancelled"}`,
			withTrainer: true,
			setupMock: func(m *MockService) {
				m.On("SetStatus", mock.Anything, trainerID, sessionID, "cancelled").
					Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not change session status`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/sessions/"+sessionID.String()+"/status",
				bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", "application/json")

			ctx := req.Context()
			if tt.withTrainer {
				ctx = context.WithValue(ctx, middlewarectx.TrainerID, trainerID.String())
			}
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
			req = req.WithContext(ctx)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", sessionID.String())
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
