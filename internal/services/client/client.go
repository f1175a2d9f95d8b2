// Package services реализует бизнес-логику управления клиентами тренера:
// создание, чтение, списки и обновление карточек клиентов. Все операции
// ограничены клиентами текущего тренера.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lukaskostka/janrichtertrainingapp/internal/apperrors"
	"github.com/lukaskostka/janrichtertrainingapp/internal/models"
)

// ClientRepository интерфейс хранилища клиентов.
type ClientRepository interface {
	CreateClient(ctx context.Context, c models.Client) (uuid.UUID, error)
	GetClient(ctx context.Context, trainerID, clientID uuid.UUID) (*models.Client, error)
	ListClients(ctx context.Context, trainerID uuid.UUID) ([]*models.Client, error)
	UpdateClient(ctx context.Context, c models.Client) (*models.Client, error)
}

// ClientService сервис управления клиентами.
type ClientService struct {
	repo ClientRepository
	log  *slog.Logger
}

// NewClientService создаёт новый сервис клиентов.
func NewClientService(log *slog.Logger, repo ClientRepository) *ClientService {
	return &ClientService{repo: repo, log: log}
}

func validStatus(status string) bool {
	switch status {
	case models.ClientStatusActive, models.ClientStatusInactive, models.ClientStatusArchived:
		return true
	}
	return false
}

// Create создаёт нового клиента текущего тренера. Пустой статус
// трактуется как active.
func (s *ClientService) Create(ctx context.Context, trainerID uuid.UUID, c models.Client) (uuid.UUID, error) {
	const op = "services.ClientService.Create"

	if c.Status == "" {
		c.Status = models.ClientStatusActive
	}
	if !validStatus(c.Status) {
		return uuid.Nil, fmt.Errorf("%s: %w: unknown status %q", op, apperrors.ErrValidation, c.Status)
	}
	c.TrainerID = trainerID

	id, err := s.repo.CreateClient(ctx, c)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("client created", slog.String("op", op), slog.String("client_id", id.String()))
	return id, nil
}

// Get возвращает карточку клиента текущего тренера.
func (s *ClientService) Get(ctx context.Context, trainerID, clientID uuid.UUID) (*models.Client, error) {
	const op = "services.ClientService.Get"

	client, err := s.repo.GetClient(ctx, trainerID, clientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return client, nil
}

// List возвращает всех клиентов тренера.
func (s *ClientService) List(ctx context.Context, trainerID uuid.UUID) ([]*models.Client, error) {
	const op = "services.ClientService.List"

	clients, err := s.repo.ListClients(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return clients, nil
}

// Update обновляет карточку клиента текущего тренера.
func (s *ClientService) Update(ctx context.Context, trainerID uuid.UUID, c models.Client) (*models.Client, error) {
	const op = "services.ClientService.Update"

	if !validStatus(c.Status) {
		return nil, fmt.Errorf("%s: %w: unknown status %q", op, apperrors.ErrValidation, c.Status)
	}
	if _, err := s.repo.GetClient(ctx, trainerID, c.ID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.TrainerID = trainerID

	updated, err := s.repo.UpdateClient(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}
