// Package services содержит бизнес-логику учёта кредитов пакетов тренировок.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lukaskostka/janrichtertrainingapp/internal/apperrors"
	"github.com/lukaskostka/janrichtertrainingapp/internal/models"
)

// MaxTotalSessions верхняя граница размера пакета.
const MaxTotalSessions = 200

// PackageRepository определяет методы для работы с пакетами в хранилище.
type PackageRepository interface {
	// CreatePackage добавляет новый пакет и возвращает его ID.
	CreatePackage(ctx context.Context, p models.Package) (uuid.UUID, error)
	// GetPackage возвращает пакет по ID.
	GetPackage(ctx context.Context, id uuid.UUID) (*models.Package, error)
	// GetActivePackage возвращает активный пакет клиента либо nil.
	GetActivePackage(ctx context.Context, clientID uuid.UUID) (*models.Package, error)
	// ListPackages возвращает пакеты клиента.
	ListPackages(ctx context.Context, clientID uuid.UUID) ([]*models.Package, error)
	// UpdatePackage записывает итоговые значения полей пакета.
	UpdatePackage(ctx context.Context, p models.Package) (*models.Package, error)
	// TogglePaid инвертирует флаг оплаты пакета.
	TogglePaid(ctx context.Context, id uuid.UUID) (*models.Package, error)
	// GetClient возвращает клиента тренера.
	GetClient(ctx context.Context, trainerID, clientID uuid.UUID) (*models.Client, error)
}

// LedgerService реализует учёт пакетов: создание, правку и оплату.
// Списание и возврат кредитов делают сервисы тренировок, здесь только
// операции над самим пакетом.
type LedgerService struct {
	repo PackageRepository
	log  *slog.Logger
}

// NewLedgerService создает новый экземпляр LedgerService.
func NewLedgerService(repo PackageRepository, log *slog.Logger) *LedgerService {
	return &LedgerService{repo: repo, log: log}
}

// Create создает пакет клиенту. У клиента может быть не более одного
// активного пакета, нарушение возвращает ErrActivePackageExists.
func (s *LedgerService) Create(ctx context.Context, trainerID, clientID uuid.UUID, name string, totalSessions int, price *float64) (uuid.UUID, error) {
	if totalSessions < 1 || totalSessions > MaxTotalSessions {
		return uuid.Nil, fmt.Errorf("%w: total_sessions must be between 1 and %d", apperrors.ErrValidation, MaxTotalSessions)
	}
	if _, err := s.repo.GetClient(ctx, trainerID, clientID); err != nil {
		return uuid.Nil, err
	}

	id, err := s.repo.CreatePackage(ctx, models.Package{
		ClientID:      clientID,
		Name:          name,
		TotalSessions: totalSessions,
		Price:         price,
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.log.Info("created new package",
		slog.String("package_id", id.String()),
		slog.String("client_id", clientID.String()))
	return id, nil
}

// List возвращает пакеты клиента тренера.
func (s *LedgerService) List(ctx context.Context, trainerID, clientID uuid.UUID) ([]*models.Package, error) {
	if _, err := s.repo.GetClient(ctx, trainerID, clientID); err != nil {
		return nil, err
	}
	return s.repo.ListPackages(ctx, clientID)
}

// GetActive возвращает активный пакет клиента либо nil, если его нет.
func (s *LedgerService) GetActive(ctx context.Context, trainerID, clientID uuid.UUID) (*models.Package, error) {
	if _, err := s.repo.GetClient(ctx, trainerID, clientID); err != nil {
		return nil, err
	}
	return s.repo.GetActivePackage(ctx, clientID)
}

// UpdateRequest описывает частичную правку пакета, nil-поле остаётся как есть.
type UpdateRequest struct {
	Name          *string
	TotalSessions *int
	UsedSessions  *int
	Price         *float64
	Status        *string
}

// Update меняет поля пакета. Статус выводится из итоговых счётчиков поверх
// запрошенного: исчерпанный пакет всегда completed, неисчерпанный не может
// остаться completed. Истёкший пакет правкой можно вернуть в active.
func (s *LedgerService) Update(ctx context.Context, trainerID, packageID uuid.UUID, req UpdateRequest) (*models.Package, error) {
	current, err := s.repo.GetPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetClient(ctx, trainerID, current.ClientID); err != nil {
		return nil, err
	}

	updated := *current
	if req.Name != nil {
		updated.Name = *req.Name
	}
	if req.TotalSessions != nil {
		if *req.TotalSessions < 1 || *req.TotalSessions > MaxTotalSessions {
			return nil, fmt.Errorf("%w: total_sessions must be between 1 and %d", apperrors.ErrValidation, MaxTotalSessions)
		}
		updated.TotalSessions = *req.TotalSessions
	}
	if req.UsedSessions != nil {
		if *req.UsedSessions < 0 || *req.UsedSessions > updated.TotalSessions {
			return nil, fmt.Errorf("%w: used_sessions must be between 0 and %d", apperrors.ErrValidation, updated.TotalSessions)
		}
		updated.UsedSessions = *req.UsedSessions
	}
	if req.Price != nil {
		updated.Price = req.Price
	}
	if req.Status != nil {
		switch *req.Status {
		case models.PackageStatusActive, models.PackageStatusCompleted, models.PackageStatusExpired:
			updated.Status = *req.Status
		default:
			return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, *req.Status)
		}
	}
	if updated.UsedSessions >= updated.TotalSessions {
		updated.Status = models.PackageStatusCompleted
	} else if updated.Status == models.PackageStatusCompleted {
		updated.Status = models.PackageStatusActive
	}

	result, err := s.repo.UpdatePackage(ctx, updated)
	if err != nil {
		return nil, err
	}
	s.log.Info("updated package",
		slog.String("package_id", packageID.String()),
		slog.String("status", result.Status))
	return result, nil
}

// TogglePaid инвертирует отметку об оплате пакета.
func (s *LedgerService) TogglePaid(ctx context.Context, trainerID, packageID uuid.UUID) (*models.Package, error) {
	current, err := s.repo.GetPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetClient(ctx, trainerID, current.ClientID); err != nil {
		return nil, err
	}

	result, err := s.repo.TogglePaid(ctx, packageID)
	if err != nil {
		return nil, err
	}
	s.log.Info("toggled package payment",
		slog.String("package_id", packageID.String()),
		slog.Bool("paid", result.Paid))
	return result, nil
}
