package create

import (
	"bytes"
	"context"
	"encoding/json"
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
	recurrenceservice "github.com/lukaskostka/janrichtertrainingapp/internal/services/recurrence"
)

// MockService реализует интерфейс create.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Generate(ctx context.Context, trainerID uuid.UUID, req recurrenceservice.GenerateRequest) (*recurrenceservice.GenerateResult, error) {
	args := m.Called(ctx, trainerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recurrenceservice.GenerateResult), args.Error(1)
}

func TestRecurringCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	trainerID := uuid.New()
	clientID := uuid.New()
	groupID := uuid.New()

	validBody := map[string]any{
		"client_id":      clientID.String(),
		"start_date":     "2025-01-15",
		"day_of_week":    1,
		"time":           "09:00",
		"interval_weeks": 1,
		"count":          10,
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
			name:        "успешная генерация серии",
			body:        validBody,
			withTrainer: true,
			setupMock: func(m *MockService) {
				m.On("Generate", mock.Anything, trainerID, mock.MatchedBy(func(req recurrenceservice.GenerateRequest) bool {
					return req.ClientID == clientID &&
						req.StartDate == "2025-01-15" &&
						req.Rule.DayOfWeek == 1 &&
						req.Rule.Time == "09:00" &&
						req.Rule.IntervalWeeks == 1 &&
						req.Count == 10
				})).Return(&recurrenceservice.GenerateResult{
					GroupID:          groupID,
					SessionIDs:       []uuid.UUID{uuid.New(), uuid.New()},
					AssignedSessions: 2,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   groupID.String(),
		},
		{
			name: "слишком длинная серия",
			body: map[string]any{
				"client_id":      clientID.String(),
				"start_date":     "2025-01-15",
				"day_of_week":    1,
				"time":           "09:00",
				"interval_weeks": 1,
				"count":          500,
			},
			withTrainer:    true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Count is above the allowed maximum`,
		},
		{
			name: "некорректное время",
			body: map[string]any{
				"client_id":      clientID.String(),
				"start_date":     "2025-01-15",
				"day_of_week":    1,
				"time":           "9 utra",
				"interval_weeks": 1,
				"count":          10,
			},
			withTrainer:    true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Time can contain only time in format 15:04`,
		},
		{
			name:        "клиент не найден",
			body:        validBody,
			withTrainer: true,
			setupMock: func(m *MockService) {
				m.On("Generate", mock.Anything, trainerID, mock.Anything).
					Return(nil, apperrors.ErrClientNotFound)
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
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			body, err := json.Marshal(tt.body)
			assert.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/sessions/recurring", bytes.NewReader(body))
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
