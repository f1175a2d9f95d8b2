// Package services содержит автозавершение тренировок: запланированные
// тренировки, у которых истек льготный период после времени начала,
// переводятся в completed со списанием кредита пакета.
package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/sl"
	"github.com/lukaskostka/janrichtertrainingapp/internal/models"
	"github.com/lukaskostka/janrichtertrainingapp/internal/storage/repository"
)

const (
	// GracePeriod время после начала тренировки, в течение которого
	// автозавершение ее не трогает.
	GracePeriod = 60 * time.Minute
	// Cooldown минимальный интервал между проходами для одного тренера.
	Cooldown = 60 * time.Second
)

// SweeperRepository определяет методы хранилища для автозавершения.
type SweeperRepository interface {
	// FindOverdueScheduled возвращает просроченные запланированные тренировки.
	FindOverdueScheduled(ctx context.Context, trainerID uuid.UUID, cutoff time.Time) ([]repository.OverdueSession, error)
	// MarkCompletedIfScheduled завершает тренировку, если она еще запланирована.
	MarkCompletedIfScheduled(ctx context.Context, sessionID uuid.UUID) (*uuid.UUID, error)
	// IncrementUsedSessions списывает кредит пакета.
	IncrementUsedSessions(ctx context.Context, id uuid.UUID) (*models.Package, error)
}

// Result итог одного прохода автозавершения.
type Result struct {
	Completed int  `json:"completed"`
	Failed    int  `json:"failed"`
	Skipped   bool `json:"skipped"`
}

// SweeperService выполняет проходы автозавершения. Защита от частых проходов
// держится в памяти процесса: повторный запрос одного тренера в пределах
// Cooldown возвращает Skipped без обращения к базе.
type SweeperService struct {
	repo SweeperRepository
	log  *slog.Logger
	now  func() time.Time

	mu      sync.Mutex
	lastRun map[uuid.UUID]time.Time
}

// NewSweeperService создает новый экземпляр SweeperService.
func NewSweeperService(repo SweeperRepository, log *slog.Logger) *SweeperService {
	return &SweeperService{
		repo:    repo,
		log:     log,
		now:     time.Now,
		lastRun: make(map[uuid.UUID]time.Time),
	}
}

// Run выполняет один проход автозавершения для тренера.
//
// Каждая тренировка обрабатывается независимо: переход в completed
// условный (сработает только из scheduled, ручное завершение не
// дублируется), затем списывается кредит пакета. Ошибка одной тренировки
// логируется и не прерывает проход.
func (s *SweeperService) Run(ctx context.Context, trainerID uuid.UUID) (*Result, error) {
	now := s.now()

	s.mu.Lock()
	if last, ok := s.lastRun[trainerID]; ok && now.Sub(last) < Cooldown {
		s.mu.Unlock()
		return &Result{Skipped: true}, nil
	}
	s.lastRun[trainerID] = now
	s.mu.Unlock()

	cutoff := now.Add(-GracePeriod)
	overdue, err := s.repo.FindOverdueScheduled(ctx, trainerID, cutoff)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, item := range overdue {
		packageID, err := s.repo.MarkCompletedIfScheduled(ctx, item.ID)
		if err != nil {
			// Тренировку могли успеть завершить или удалить вручную.
			s.log.Warn("sweeper: failed to complete session",
				slog.String("session_id", item.ID.String()), sl.Err(err))
			result.Failed++
			continue
		}
		if packageID != nil {
			if _, err := s.repo.IncrementUsedSessions(ctx, *packageID); err != nil {
				s.log.Error("sweeper: session completed but credit not consumed",
					slog.String("session_id", item.ID.String()),
					slog.String("package_id", packageID.String()), sl.Err(err))
				result.Failed++
				continue
			}
		}
		result.Completed++
	}

	if result.Completed > 0 || result.Failed > 0 {
		s.log.Info("sweeper pass finished",
			slog.String("trainer_id", trainerID.String()),
			slog.Int("completed", result.Completed),
			slog.Int("failed", result.Failed))
	}
	return result, nil
}
