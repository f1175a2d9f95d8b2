// Package services реализует бизнес-логику каталога упражнений и плана
// тренировки: ведение каталога тренера и привязку упражнений с подходами
// к конкретной тренировке.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lukaskostka/janrichtertrainingapp/internal/apperrors"
	"github.com/lukaskostka/janrichtertrainingapp/internal/models"
)

// ExerciseRepository интерфейс хранилища упражнений.
type ExerciseRepository interface {
	CreateExercise(ctx context.Context, e models.Exercise) (uuid.UUID, error)
	ListExercises(ctx context.Context, trainerID uuid.UUID) ([]*models.Exercise, error)
	GetSession(ctx context.Context, trainerID, sessionID uuid.UUID) (*models.Session, error)
	ReplaceSessionExercises(ctx context.Context, sessionID uuid.UUID, items []models.SessionExercise) error
	ListSessionExercises(ctx context.Context, sessionID uuid.UUID) ([]*models.SessionExercise, error)
}

// ExerciseService сервис каталога упражнений и плана тренировки.
type ExerciseService struct {
	repo ExerciseRepository
	log  *slog.Logger
}

// NewExerciseService создаёт новый сервис упражнений.
func NewExerciseService(log *slog.Logger, repo ExerciseRepository) *ExerciseService {
	return &ExerciseService{repo: repo, log: log}
}

// Create добавляет упражнение в каталог тренера.
func (s *ExerciseService) Create(ctx context.Context, trainerID uuid.UUID, name string, description *string) (uuid.UUID, error) {
	const op = "services.ExerciseService.Create"

	if name == "" {
		return uuid.Nil, fmt.Errorf("%s: %w: name is required", op, apperrors.ErrValidation)
	}
	id, err := s.repo.CreateExercise(ctx, models.Exercise{
		TrainerID:   trainerID,
		Name:        name,
		Description: description,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// List возвращает каталог упражнений тренера.
func (s *ExerciseService) List(ctx context.Context, trainerID uuid.UUID) ([]*models.Exercise, error) {
	const op = "services.ExerciseService.List"

	exercises, err := s.repo.ListExercises(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return exercises, nil
}

// AttachPlan заменяет план тренировки переданным набором упражнений.
// Порядок позиций определяется порядком элементов; OrderIndex
// перенумеровывается с нуля.
func (s *ExerciseService) AttachPlan(ctx context.Context, trainerID, sessionID uuid.UUID, items []models.SessionExercise) ([]*models.SessionExercise, error) {
	const op = "services.ExerciseService.AttachPlan"

	if _, err := s.repo.GetSession(ctx, trainerID, sessionID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range items {
		if items[i].ExerciseID == nil && items[i].ExerciseName == "" {
			return nil, fmt.Errorf("%s: %w: item %d has neither exercise_id nor name", op, apperrors.ErrValidation, i)
		}
		items[i].SessionID = sessionID
		items[i].OrderIndex = i
	}

	if err := s.repo.ReplaceSessionExercises(ctx, sessionID, items); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("session plan replaced",
		slog.String("op", op),
		slog.String("session_id", sessionID.String()),
		slog.Int("items", len(items)))

	plan, err := s.repo.ListSessionExercises(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plan, nil
}

// Plan возвращает план тренировки.
func (s *ExerciseService) Plan(ctx context.Context, trainerID, sessionID uuid.UUID) ([]*models.SessionExercise, error) {
	const op = "services.ExerciseService.Plan"

	if _, err := s.repo.GetSession(ctx, trainerID, sessionID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	plan, err := s.repo.ListSessionExercises(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plan, nil
}
