package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lukaskostka/janrichtertrainingapp/internal/apperrors"
	"github.com/lukaskostka/janrichtertrainingapp/internal/models"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) CreateExercise(ctx context.Context, e models.Exercise) (uuid.UUID, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *RepoMock) ListExercises(ctx context.Context, trainerID uuid.UUID) ([]*models.Exercise, error) {
	args := m.Called(ctx, trainerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Exercise), args.Error(1)
}

func (m *RepoMock) GetSession(ctx context.Context, trainerID, sessionID uuid.UUID) (*models.Session, error) {
	args := m.Called(ctx, trainerID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *RepoMock) ReplaceSessionExercises(ctx context.Context, sessionID uuid.UUID, items []models.SessionExercise) error {
	args := m.Called(ctx, sessionID, items)
	return args.Error(0)
}

func (m *RepoMock) ListSessionExercises(ctx context.Context, sessionID uuid.UUID) ([]*models.SessionExercise, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SessionExercise), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExerciseService_Create(t *testing.T) {
	trainerID := uuid.New()
	exerciseID := uuid.New()

	repo := new(RepoMock)
	service := NewExerciseService(newNoopLogger(), repo)

	repo.On("CreateExercise", mock.Anything, mock.MatchedBy(func(e models.Exercise) bool {
		return e.TrainerID == trainerID && e.Name == "Dřep"
	})).Return(exerciseID, nil)

	id, err := service.Create(context.Background(), trainerID, "Dřep", nil)
	require.NoError(t, err)
	assert.Equal(t, exerciseID, id)
}

func TestExerciseService_Create_EmptyName(t *testing.T) {
	repo := new(RepoMock)
	service := NewExerciseService(newNoopLogger(), repo)

	_, err := service.Create(context.Background(), uuid.New(), "", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestExerciseService_AttachPlan(t *testing.T) {
	trainerID := uuid.New()
	sessionID := uuid.New()
	exerciseID := uuid.New()

	repo := new(RepoMock)
	service := NewExerciseService(newNoopLogger(), repo)

	repo.On("GetSession", mock.Anything, trainerID, sessionID).
		Return(&models.Session{ID: sessionID}, nil)
	repo.On("ReplaceSessionExercises", mock.Anything, sessionID, mock.MatchedBy(func(items []models.SessionExercise) bool {
		return len(items) == 2 &&
			items[0].SessionID == sessionID && items[0].OrderIndex == 0 &&
			items[1].SessionID == sessionID && items[1].OrderIndex == 1
	})).Return(nil)
	repo.On("ListSessionExercises", mock.Anything, sessionID).
		Return([]*models.SessionExercise{{SessionID: sessionID}, {SessionID: sessionID}}, nil)

	plan, err := service.AttachPlan(context.Background(), trainerID, sessionID, []models.SessionExercise{
		{ExerciseID: &exerciseID, Sets: []models.ExerciseSet{{Reps: 8, Weight: 100}}},
		{ExerciseName: "Výpady", OrderIndex: 99},
	})
	require.NoError(t, err)
	assert.Len(t, plan, 2)
	repo.AssertExpectations(t)
}

func TestExerciseService_AttachPlan_MissingName(t *testing.T) {
	trainerID := uuid.New()
	sessionID := uuid.New()

	repo := new(RepoMock)
	service := NewExerciseService(newNoopLogger(), repo)

	repo.On("GetSession", mock.Anything, trainerID, sessionID).
		Return(&models.Session{ID: sessionID}, nil)

	_, err := service.AttachPlan(context.Background(), trainerID, sessionID, []models.SessionExercise{{}})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	repo.AssertNotCalled(t, "ReplaceSessionExercises", mock.Anything, mock.Anything, mock.Anything)
}

func TestExerciseService_AttachPlan_UnknownSession(t *testing.T) {
	repo := new(RepoMock)
	service := NewExerciseService(newNoopLogger(), repo)

	repo.On("GetSession", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrSessionNotFound)

	_, err := service.AttachPlan(context.Background(), uuid.New(), uuid.New(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}
