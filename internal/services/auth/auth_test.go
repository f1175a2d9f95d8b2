package services_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lukaskostka/janrichtertrainingapp/internal/apperrors"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/jwt"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/password"
	"github.com/lukaskostka/janrichtertrainingapp/internal/models"
	authservices "github.com/lukaskostka/janrichtertrainingapp/internal/services/auth"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateTrainer(ctx context.Context, email, name, passwordHash string) (uuid.UUID, error) {
	args := m.Called(ctx, email, name, passwordHash)
	return args.Get(0).(uuid.UUID), args.Error(1)
}
func (m *RepoMock) GetTrainerByEmail(ctx context.Context, email string) (*models.Trainer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Trainer), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestAuthService_Register(t *testing.T) {
	trainerID := uuid.New()

	repo := new(RepoMock)
	repo.On("CreateTrainer", mock.Anything, "jan@example.com", "Jan Richter",
		mock.MatchedBy(func(hash string) bool {
			return password.CompareHash(hash, "tajneheslo") == nil
		})).Return(trainerID, nil)

	service := authservices.NewAuthService(repo, jwt.NewMaker("secret", time.Hour), newNoopLogger())
	got, err := service.Register(context.Background(), "jan@example.com", "Jan Richter", "tajneheslo")

	require.NoError(t, err)
	assert.Equal(t, trainerID, got)
	repo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	trainerID := uuid.New()
	hash, err := password.GetHash("tajneheslo")
	require.NoError(t, err)

	tests := []struct {
		name        string
		email       string
		rawPassword string
		mockSetup   func(repo *RepoMock)
		wantErr     error
	}{
		{
			name:        "successful login",
			email:       "jan@example.com",
			rawPassword: "tajneheslo",
			mockSetup: func(repo *RepoMock) {
				repo.On("GetTrainerByEmail", mock.Anything, "jan@example.com").Return(&models.Trainer{
					ID: trainerID, Email: "jan@example.com", PasswordHash: hash,
				}, nil)
			},
		},
		{
			name:        "wrong password",
			email:       "jan@example.com",
			rawPassword: "spatneheslo",
			mockSetup: func(repo *RepoMock) {
				repo.On("GetTrainerByEmail", mock.Anything, "jan@example.com").Return(&models.Trainer{
					ID: trainerID, Email: "jan@example.com", PasswordHash: hash,
				}, nil)
			},
			wantErr: apperrors.ErrInvalidCredentials,
		},
		{
			name:        "unknown email yields the same error",
			email:       "neznamy@example.com",
			rawPassword: "tajneheslo",
			mockSetup: func(repo *RepoMock) {
				repo.On("GetTrainerByEmail", mock.Anything, "neznamy@example.com").
					Return(nil, apperrors.ErrTrainerNotFound)
			},
			wantErr: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.mockSetup(repo)

			maker := jwt.NewMaker("secret", time.Hour)
			service := authservices.NewAuthService(repo, maker, newNoopLogger())
			token, err := service.Login(context.Background(), tt.email, tt.rawPassword)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)
			assert.Equal(t, trainerID.String(), claims.TrainerID)
			assert.Equal(t, "jan@example.com", claims.Email)
		})
	}
}
