package middlewarectx_test

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/lukaskostka/janrichtertrainingapp/internal/http/middlewarectx"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/jwt"
)

// MakerMock реализует интерфейс jwt.Maker
type MakerMock struct {
	mock.Mock
}

func (m *MakerMock) GenerateToken(trainerID, email string) (string, error) {
	args := m.Called(trainerID, email)
	return args.String(0), args.Error(1)
}

func (m *MakerMock) ParseToken(tokenStr string) (*jwt.CustomClaims, error) {
	args := m.Called(tokenStr)
	claims, _ := args.Get(0).(*jwt.CustomClaims)
	return claims, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestJWTMiddleware(t *testing.T) {
	trainerID := uuid.New().String()
	logger := newNoopLogger()

	tests := []struct {
		name           string
		authHeader     string
		mockClaims     *jwt.CustomClaims
		mockErr        error
		wantStatusCode int
		wantNextCalled bool
	}{
		{
			name:           "валидный токен",
			authHeader:     "Bearer good-token",
			mockClaims:     &jwt.CustomClaims{TrainerID: trainerID, Email: "jan@example.com"},
			wantStatusCode: http.StatusOK,
			wantNextCalled: true,
		},
		{
			name:           "отсутствует заголовок",
			authHeader:     "",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "заголовок без Bearer",
			authHeader:     "Token abc",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "просроченный токен",
			authHeader:     "Bearer expired-token",
			mockErr:        errors.New("token is expired"),
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maker := new(MakerMock)
			if tt.mockClaims != nil || tt.mockErr != nil {
				token := "good-token"
				if tt.mockErr != nil {
					token = "expired-token"
				}
				maker.On("ParseToken", token).Return(tt.mockClaims, tt.mockErr)
			}

			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				gotID, ok := middlewarectx.TrainerFromContext(r.Context())
				assert.True(t, ok)
				assert.Equal(t, trainerID, gotID.String())
				assert.Equal(t, "jan@example.com", r.Context().Value(middlewarectx.Email))
				w.WriteHeader(http.StatusOK)
			})

			handler := middlewarectx.JWTMiddleware(maker, logger)(next)

			req := httptest.NewRequest(http.MethodGet, "/clients", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatusCode, w.Code)
			assert.Equal(t, tt.wantNextCalled, nextCalled)
			maker.AssertExpectations(t)
		})
	}
}
