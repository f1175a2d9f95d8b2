// Package services содержит бизнес-логику жизненного цикла тренировок:
// создание одиночных тренировок, завершение со списанием кредита, отмену,
// перенос и удаление с возвратом кредита.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lukaskostka/janrichtertrainingapp/internal/apperrors"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/timezone"
	"github.com/lukaskostka/janrichtertrainingapp/internal/models"
	"github.com/lukaskostka/janrichtertrainingapp/internal/storage/repository"
)

// SessionRepository определяет методы хранилища для жизненного цикла тренировок.
type SessionRepository interface {
	// CreateSession вставляет одну тренировку.
	CreateSession(ctx context.Context, sess models.Session) (uuid.UUID, error)
	// GetSession возвращает тренировку тренера.
	GetSession(ctx context.Context, trainerID, sessionID uuid.UUID) (*models.Session, error)
	// ListSessions возвращает тренировки тренера с фильтрами.
	ListSessions(ctx context.Context, trainerID uuid.UUID, filter repository.SessionFilter) ([]*models.Session, error)
	// UpdateSessionSchedule переносит запланированную тренировку.
	UpdateSessionSchedule(ctx context.Context, trainerID, sessionID uuid.UUID, scheduledAt time.Time, location, notes *string) (*models.Session, error)
	// SetStatusIfScheduled переводит запланированную тренировку в новый статус.
	SetStatusIfScheduled(ctx context.Context, trainerID, sessionID uuid.UUID, status string) (*models.Session, error)
	// CompleteSession завершает тренировку и списывает кредит пакета.
	// Уже завершённую возвращает как есть без повторного списания.
	CompleteSession(ctx context.Context, trainerID, sessionID uuid.UUID) (*models.Session, *models.Package, error)
	// DeleteSession удаляет тренировку, возвращая кредит завершённой.
	DeleteSession(ctx context.Context, trainerID, sessionID uuid.UUID) error
	// DeleteFutureInGroup удаляет запланированные тренировки серии строго после момента.
	DeleteFutureInGroup(ctx context.Context, trainerID, groupID uuid.UUID, after time.Time) (int64, error)
	// GetClient возвращает клиента тренера.
	GetClient(ctx context.Context, trainerID, clientID uuid.UUID) (*models.Client, error)
	// GetActivePackage возвращает активный пакет клиента либо nil.
	GetActivePackage(ctx context.Context, clientID uuid.UUID) (*models.Package, error)
}

// SessionService реализует операции над отдельными тренировками.
type SessionService struct {
	repo SessionRepository
	tz   *timezone.Adapter
	log  *slog.Logger
}

// NewSessionService создает новый экземпляр SessionService.
func NewSessionService(repo SessionRepository, tz *timezone.Adapter, log *slog.Logger) *SessionService {
	return &SessionService{repo: repo, tz: tz, log: log}
}

// CreateRequest параметры создания одиночной тренировки.
type CreateRequest struct {
	ClientID    uuid.UUID
	ScheduledAt string // гражданское время "2006-01-02T15:04"
	Location    *string
	Notes       *string
}

// Create создает одиночную тренировку. Если у клиента есть активный пакет
// с оставшимися кредитами, тренировка привязывается к нему; кредит при этом
// не списывается до завершения.
func (s *SessionService) Create(ctx context.Context, trainerID uuid.UUID, req CreateRequest) (*models.Session, error) {
	scheduledAt, err := s.tz.ParseCivil(req.ScheduledAt)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetClient(ctx, trainerID, req.ClientID); err != nil {
		return nil, err
	}
	pkg, err := s.repo.GetActivePackage(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	sess := models.Session{
		TrainerID:       trainerID,
		ClientID:        req.ClientID,
		ScheduledAt:     scheduledAt,
		DurationMinutes: models.SessionDurationMinutes,
		Status:          models.SessionStatusScheduled,
		Location:        req.Location,
		Notes:           req.Notes,
	}
	if pkg != nil && pkg.Remaining() > 0 {
		sess.PackageID = &pkg.ID
	}

	id, err := s.repo.CreateSession(ctx, sess)
	if err != nil {
		return nil, err
	}
	sess.ID = id

	s.log.Info("created session",
		slog.String("session_id", id.String()),
		slog.String("client_id", req.ClientID.String()),
		slog.Bool("has_package", sess.PackageID != nil))
	return &sess, nil
}

// Get возвращает тренировку тренера.
func (s *SessionService) Get(ctx context.Context, trainerID, sessionID uuid.UUID) (*models.Session, error) {
	return s.repo.GetSession(ctx, trainerID, sessionID)
}

// List возвращает тренировки тренера с фильтрами.
func (s *SessionService) List(ctx context.Context, trainerID uuid.UUID, filter repository.SessionFilter) ([]*models.Session, error) {
	return s.repo.ListSessions(ctx, trainerID, filter)
}

// Reschedule переносит запланированную тренировку на новое гражданское время.
// Завершённую или отменённую тренировку переносить нельзя.
func (s *SessionService) Reschedule(ctx context.Context, trainerID, sessionID uuid.UUID, scheduledAt string, location, notes *string) (*models.Session, error) {
	at, err := s.tz.ParseCivil(scheduledAt)
	if err != nil {
		return nil, err
	}
	sess, err := s.repo.UpdateSessionSchedule(ctx, trainerID, sessionID, at, location, notes)
	if err != nil {
		return nil, err
	}
	s.log.Info("rescheduled session",
		slog.String("session_id", sessionID.String()),
		slog.Time("scheduled_at", at))
	return sess, nil
}

// Complete завершает тренировку. Из пакета тренировки списывается один
// кредит; если кредит был последним, пакет переходит в completed. Повторное
// завершение — no-op: тренировка возвращается как есть, кредит не списывается.
func (s *SessionService) Complete(ctx context.Context, trainerID, sessionID uuid.UUID) (*models.Session, *models.Package, error) {
	sess, pkg, err := s.repo.CompleteSession(ctx, trainerID, sessionID)
	if err != nil {
		return nil, nil, err
	}

	attrs := []any{slog.String("session_id", sessionID.String())}
	if pkg != nil {
		attrs = append(attrs,
			slog.String("package_id", pkg.ID.String()),
			slog.Int("used_sessions", pkg.UsedSessions),
			slog.String("package_status", pkg.Status))
	}
	s.log.Info("completed session", attrs...)
	return sess, pkg, nil
}

// SetStatus переводит запланированную тренировку в cancelled или no_show.
// Отмена и неявка кредит не списывают. Прочие целевые статусы — ошибка
// валидации, завершение идёт через Complete.
func (s *SessionService) SetStatus(ctx context.Context, trainerID, sessionID uuid.UUID, status string) (*models.Session, error) {
	switch status {
	case models.SessionStatusCancelled, models.SessionStatusNoShow:
	case models.SessionStatusCompleted:
		return nil, fmt.Errorf("%w: use the completion endpoint to complete a session", apperrors.ErrValidation)
	default:
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, status)
	}

	sess, err := s.repo.SetStatusIfScheduled(ctx, trainerID, sessionID, status)
	if err != nil {
		return nil, err
	}
	s.log.Info("updated session status",
		slog.String("session_id", sessionID.String()),
		slog.String("status", status))
	return sess, nil
}

// Delete удаляет тренировку. Кредит завершённой тренировки возвращается
// в пакет; завершённый пакет при этом может вернуться в active.
func (s *SessionService) Delete(ctx context.Context, trainerID, sessionID uuid.UUID) error {
	if err := s.repo.DeleteSession(ctx, trainerID, sessionID); err != nil {
		return err
	}
	s.log.Info("deleted session", slog.String("session_id", sessionID.String()))
	return nil
}

// DeleteFuture удаляет из повторяющейся серии запланированные вхождения
// после опорной тренировки, а саму опорную тренировку удаляет обычным
// путём независимо от её статуса: кредит завершённой возвращается в пакет.
func (s *SessionService) DeleteFuture(ctx context.Context, trainerID, sessionID uuid.UUID) (int64, error) {
	sess, err := s.repo.GetSession(ctx, trainerID, sessionID)
	if err != nil {
		return 0, err
	}
	if sess.RecurrenceGroupID == nil {
		return 0, fmt.Errorf("%w: session is not part of a recurring series", apperrors.ErrValidation)
	}

	deleted, err := s.repo.DeleteFutureInGroup(ctx, trainerID, *sess.RecurrenceGroupID, sess.ScheduledAt)
	if err != nil {
		return 0, err
	}
	if err := s.repo.DeleteSession(ctx, trainerID, sessionID); err != nil {
		return deleted, err
	}
	deleted++

	s.log.Info("deleted future sessions in series",
		slog.String("group_id", sess.RecurrenceGroupID.String()),
		slog.Int64("deleted", deleted))
	return deleted, nil
}
