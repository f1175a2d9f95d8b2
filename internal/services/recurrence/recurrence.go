// Package services содержит генератор повторяющихся тренировок: разворачивает
// правило повторения в конкретные даты и привязывает тренировки к активному
// пакету клиента в пределах оставшихся кредитов.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"github.com/lukaskostka/janrichtertrainingapp/internal/apperrors"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/timezone"
	"github.com/lukaskostka/janrichtertrainingapp/internal/models"
)

// Границы правила повторения.
const (
	MaxIntervalWeeks = 52
	MaxCount         = 104
)

// SessionRepository определяет методы хранилища, нужные генератору серии.
type SessionRepository interface {
	// GetClient возвращает клиента тренера.
	GetClient(ctx context.Context, trainerID, clientID uuid.UUID) (*models.Client, error)
	// GetActivePackage возвращает активный пакет клиента либо nil.
	GetActivePackage(ctx context.Context, clientID uuid.UUID) (*models.Package, error)
	// CreateSessionsBatch вставляет серию тренировок атомарно.
	CreateSessionsBatch(ctx context.Context, sessions []models.Session) ([]uuid.UUID, error)
}

// GenerateRequest параметры генерации серии.
type GenerateRequest struct {
	ClientID  uuid.UUID
	StartDate string // "2006-01-02", гражданская дата пояса бизнеса
	Rule      models.RecurrenceRule
	Count     int
	Location  *string
	Notes     *string
}

// GenerateResult итог генерации серии.
type GenerateResult struct {
	GroupID          uuid.UUID
	SessionIDs       []uuid.UUID
	Sessions         []models.Session
	AssignedPackage  *uuid.UUID
	AssignedSessions int
}

// RecurrenceService разворачивает правило повторения в серию тренировок.
type RecurrenceService struct {
	repo SessionRepository
	tz   *timezone.Adapter
	log  *slog.Logger
}

// NewRecurrenceService создает новый экземпляр RecurrenceService.
func NewRecurrenceService(repo SessionRepository, tz *timezone.Adapter, log *slog.Logger) *RecurrenceService {
	return &RecurrenceService{repo: repo, tz: tz, log: log}
}

// Generate создает серию тренировок по правилу повторения.
//
// Первая дата — ближайший заданный день недели не раньше стартовой даты
// (неделя считается с понедельника); дальше даты идут с шагом interval_weeks
// недель, всегда в одно и то же гражданское время пояса бизнеса, в том числе
// через переводы часов. Все тренировки серии получают общий
// recurrence_group_id и снимок правила.
//
// Если у клиента есть активный пакет, первые Remaining() тренировок серии
// привязываются к нему, остальные создаются без пакета. Кредиты при этом
// не списываются: списание происходит при завершении тренировки.
func (s *RecurrenceService) Generate(ctx context.Context, trainerID uuid.UUID, req GenerateRequest) (*GenerateResult, error) {
	const op = "services.RecurrenceService.Generate"

	if err := validateRule(req.Rule, req.Count); err != nil {
		return nil, err
	}
	start, err := s.tz.ParseCivilDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	hour, minute, err := s.tz.ParseClock(req.Rule.Time)
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

	firstDay := s.tz.NextWeekday(start, req.Rule.DayOfWeek)
	firstOccurrence := s.tz.At(firstDay, hour, minute)

	// Правило якорится на первой дате, день недели которой уже совпадает
	// с запрошенным: каждая следующая дата ровно на interval_weeks недель
	// позже в гражданском времени.
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.WEEKLY,
		Interval: req.Rule.IntervalWeeks,
		Count:    req.Count,
		Dtstart:  firstOccurrence,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	occurrences := r.All()

	groupID := uuid.New()
	rule := req.Rule
	remaining := pkg.Remaining()
	assigned := 0

	sessions := make([]models.Session, 0, len(occurrences))
	for _, occ := range occurrences {
		sess := models.Session{
			TrainerID:         trainerID,
			ClientID:          req.ClientID,
			ScheduledAt:       occ,
			DurationMinutes:   models.SessionDurationMinutes,
			Status:            models.SessionStatusScheduled,
			RecurrenceGroupID: &groupID,
			RecurrenceRule:    &rule,
			Location:          req.Location,
			Notes:             req.Notes,
		}
		if pkg != nil && remaining > 0 {
			sess.PackageID = &pkg.ID
			remaining--
			assigned++
		}
		sessions = append(sessions, sess)
	}

	ids, err := s.repo.CreateSessionsBatch(ctx, sessions)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		sessions[i].ID = ids[i]
	}

	result := &GenerateResult{
		GroupID:          groupID,
		SessionIDs:       ids,
		Sessions:         sessions,
		AssignedSessions: assigned,
	}
	if pkg != nil {
		result.AssignedPackage = &pkg.ID
	}

	s.log.Info("generated recurring series",
		slog.String("group_id", groupID.String()),
		slog.Int("count", len(ids)),
		slog.Int("assigned_to_package", assigned))
	return result, nil
}

func validateRule(rule models.RecurrenceRule, count int) error {
	if rule.DayOfWeek < 0 || rule.DayOfWeek > 6 {
		return fmt.Errorf("%w: day_of_week must be between 0 and 6", apperrors.ErrValidation)
	}
	if rule.IntervalWeeks < 1 || rule.IntervalWeeks > MaxIntervalWeeks {
		return fmt.Errorf("%w: interval_weeks must be between 1 and %d", apperrors.ErrValidation, MaxIntervalWeeks)
	}
	if count < 1 || count > MaxCount {
		return fmt.Errorf("%w: count must be between 1 and %d", apperrors.ErrValidation, MaxCount)
	}
	return nil
}
