// Package services содержит логику регистрации и аутентификации тренеров.
package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lukaskostka/janrichtertrainingapp/internal/apperrors"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/jwt"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/password"
	"github.com/lukaskostka/janrichtertrainingapp/internal/models"
)

// TrainerRepository определяет методы для работы с тренерами в хранилище.
type TrainerRepository interface {
	// CreateTrainer регистрирует тренера и возвращает его ID.
	CreateTrainer(ctx context.Context, email, name, passwordHash string) (uuid.UUID, error)
	// GetTrainerByEmail возвращает тренера по email.
	GetTrainerByEmail(ctx context.Context, email string) (*models.Trainer, error)
}

// AuthService реализует регистрацию и выдачу JWT-токенов.
type AuthService struct {
	repo  TrainerRepository
	maker jwt.Maker
	log   *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(repo TrainerRepository, maker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{repo: repo, maker: maker, log: log}
}

// Register регистрирует тренера. Пароль хранится только в виде bcrypt-хэша.
func (s *AuthService) Register(ctx context.Context, email, name, rawPassword string) (uuid.UUID, error) {
	hash, err := password.GetHash(rawPassword)
	if err != nil {
		return uuid.Nil, err
	}

	id, err := s.repo.CreateTrainer(ctx, email, name, hash)
	if err != nil {
		return uuid.Nil, err
	}
	s.log.Info("registered new trainer", slog.String("trainer_id", id.String()))
	return id, nil
}

// Login проверяет пару email/пароль и возвращает JWT-токен. Несуществующий
// email и неверный пароль дают одинаковую ошибку ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, error) {
	trainer, err := s.repo.GetTrainerByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrTrainerNotFound) {
			return "", apperrors.ErrInvalidCredentials
		}
		return "", err
	}
	if err := password.CompareHash(trainer.PasswordHash, rawPassword); err != nil {
		return "", apperrors.ErrInvalidCredentials
	}

	token, err := s.maker.GenerateToken(trainer.ID.String(), trainer.Email)
	if err != nil {
		return "", err
	}
	s.log.Info("trainer logged in", slog.String("trainer_id", trainer.ID.String()))
	return token, nil
}
