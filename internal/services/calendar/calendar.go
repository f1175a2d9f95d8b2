// Package services содержит генератор календарного фида iCalendar: тренировки
// тренера публикуются по непрозрачному токену для подписки из календарных
// приложений, с напоминаниями о начале, InBody-измерении и оплате пакета.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/lukaskostka/janrichtertrainingapp/internal/apperrors"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/sl"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/timezone"
	"github.com/lukaskostka/janrichtertrainingapp/internal/models"
)

const (
	// FeedTTL рекомендованный интервал обновления фида календарными приложениями.
	FeedTTL = "PT15M"

	tokenCacheTTL = 15 * time.Minute

	// Подстановки для пустых имён.
	fallbackClientName   = "Klient"
	fallbackExerciseName = "Cvik"
)

// CalendarRepository определяет методы хранилища для генерации фида.
type CalendarRepository interface {
	// GetTrainerByICSToken резолвит токен фида в тренера.
	GetTrainerByICSToken(ctx context.Context, token uuid.UUID) (*models.Trainer, error)
	// ListFeedSessions возвращает тренировки с данными клиента и пакета.
	ListFeedSessions(ctx context.Context, trainerID uuid.UUID) ([]*models.FeedSession, error)
	// ListFeedExercises возвращает планы упражнений, сгруппированные по тренировке.
	ListFeedExercises(ctx context.Context, trainerID uuid.UUID) (map[uuid.UUID][]*models.SessionExercise, error)
	// GetICSToken возвращает текущий токен фида тренера.
	GetICSToken(ctx context.Context, trainerID uuid.UUID) (uuid.UUID, error)
	// RegenerateICSToken выпускает новый токен, возвращая пару (старый, новый).
	RegenerateICSToken(ctx context.Context, trainerID uuid.UUID) (uuid.UUID, uuid.UUID, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// CalendarService генерирует подписной фид iCalendar.
type CalendarService struct {
	repo  CalendarRepository
	cache Cache
	tz    *timezone.Adapter
	log   *slog.Logger
}

// NewCalendarService создает новый экземпляр CalendarService.
func NewCalendarService(repo CalendarRepository, cache Cache, tz *timezone.Adapter, log *slog.Logger) *CalendarService {
	return &CalendarService{repo: repo, cache: cache, tz: tz, log: log}
}

func tokenCacheKey(token uuid.UUID) string {
	return fmt.Sprintf("ics_token:%s", token)
}

// ResolveToken резолвит токен фида в ID тренера. Некорректный и неизвестный
// токены неразличимы для вызывающего: оба дают ErrTrainerNotFound.
func (s *CalendarService) ResolveToken(ctx context.Context, rawToken string) (uuid.UUID, error) {
	token, err := uuid.Parse(rawToken)
	if err != nil {
		return uuid.Nil, apperrors.ErrTrainerNotFound
	}

	var cachedID uuid.UUID
	found, err := s.cache.Get(tokenCacheKey(token), &cachedID)
	if err != nil {
		s.log.Warn("failed to read token cache", sl.Err(err))
	}
	if found {
		return cachedID, nil
	}

	trainer, err := s.repo.GetTrainerByICSToken(ctx, token)
	if err != nil {
		return uuid.Nil, err
	}
	if err := s.cache.Set(tokenCacheKey(token), trainer.ID, tokenCacheTTL); err != nil {
		s.log.Warn("failed to cache token", sl.Err(err))
	}
	return trainer.ID, nil
}

// Token возвращает текущий токен фида тренера.
func (s *CalendarService) Token(ctx context.Context, trainerID uuid.UUID) (uuid.UUID, error) {
	return s.repo.GetICSToken(ctx, trainerID)
}

// RegenerateToken выпускает новый токен фида. Старый токен немедленно
// отзывается: запись о нём снимается из кеша, последующие запросы с ним
// получают 404.
func (s *CalendarService) RegenerateToken(ctx context.Context, trainerID uuid.UUID) (uuid.UUID, error) {
	old, fresh, err := s.repo.RegenerateICSToken(ctx, trainerID)
	if err != nil {
		return uuid.Nil, err
	}
	if err := s.cache.Invalidate(tokenCacheKey(old)); err != nil {
		s.log.Warn("failed to invalidate old token in cache", sl.Err(err))
	}
	s.log.Info("regenerated ics token", slog.String("trainer_id", trainerID.String()))
	return fresh, nil
}

// BuildFeed собирает фид iCalendar тренера: по событию на каждую
// запланированную и завершённую тренировку, время указано в гражданском
// времени пояса бизнеса с TZID.
func (s *CalendarService) BuildFeed(ctx context.Context, trainerID uuid.UUID, trainerName string) (string, error) {
	sessions, err := s.repo.ListFeedSessions(ctx, trainerID)
	if err != nil {
		return "", err
	}
	exercises, err := s.repo.ListFeedExercises(ctx, trainerID)
	if err != nil {
		return "", err
	}

	inbodySessions := pickInBodySessions(sessions)
	paymentSessions := pickPaymentSessions(sessions)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetXWRCalName(fmt.Sprintf("%s – Trénink", trainerName))
	cal.SetXWRTimezone(timezone.BusinessTZ)
	cal.SetXPublishedTTL(FeedTTL)
	cal.SetRefreshInterval(FeedTTL)

	for _, sess := range sessions {
		s.addEvent(cal, sess, exercises[sess.ID], inbodySessions[sess.ID], paymentSessions[sess.ID])
	}
	return cal.Serialize(), nil
}

func (s *CalendarService) addEvent(cal *ics.Calendar, sess *models.FeedSession, plan []*models.SessionExercise, inbodyAlarm, paymentAlarm bool) {
	clientName := sess.ClientName
	if clientName == "" {
		clientName = fallbackClientName
	}

	event := cal.AddEvent(sess.ID.String())
	event.SetDtStampTime(time.Now().UTC())
	event.SetSummary(fmt.Sprintf("Trénink – %s", clientName))
	if sess.Location != nil && *sess.Location != "" {
		event.SetLocation(*sess.Location)
	}
	event.SetDescription(buildDescription(sess, clientName, plan))

	start := s.tz.ToLocal(sess.ScheduledAt)
	end := start.Add(time.Duration(sess.DurationMinutes) * time.Minute)
	tzid := &ics.KeyValues{Key: string(ics.ParameterTzid), Value: []string{timezone.BusinessTZ}}
	event.SetProperty(ics.ComponentPropertyDtStart, start.Format("20060102T150405"), tzid)
	event.SetProperty(ics.ComponentPropertyDtEnd, end.Format("20060102T150405"), tzid)

	// Стандартное напоминание за 15 минут до начала.
	alarm := event.AddAlarm()
	alarm.SetAction(ics.ActionDisplay)
	alarm.SetTrigger("-PT15M")
	alarm.SetProperty(ics.ComponentPropertyDescription, fmt.Sprintf("Trénink – %s", clientName))

	if inbodyAlarm {
		a := event.AddAlarm()
		a.SetAction(ics.ActionDisplay)
		a.SetTrigger("-PT5M")
		a.SetProperty(ics.ComponentPropertyDescription,
			fmt.Sprintf("📏 Čas na InBody měření – %s", clientName))
	}

	if paymentAlarm {
		a := event.AddAlarm()
		a.SetAction(ics.ActionDisplay)
		a.SetTrigger(paymentTrigger(sess.DurationMinutes))
		a.SetProperty(ics.ComponentPropertyDescription,
			fmt.Sprintf("⚠️ Poslední trénink z balíčku – připomenout platbu – %s", clientName))
	}
}

// paymentTrigger срабатывает за 5 минут до конца тренировки, то есть через
// duration-5 минут после начала.
func paymentTrigger(durationMinutes int) string {
	minutes := durationMinutes - 5
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("PT%dM", minutes)
}

// pickInBodySessions выбирает тренировки, на которых нужно напомнить про
// InBody-измерение: хронологически первая тренировка каждого пакета, из
// которого ещё не списан ни один кредит.
func pickInBodySessions(sessions []*models.FeedSession) map[uuid.UUID]bool {
	firstOfPackage := make(map[uuid.UUID]*models.FeedSession)
	for _, sess := range sessions {
		if sess.PackageID == nil || sess.PackageUsed == nil || *sess.PackageUsed != 0 {
			continue
		}
		cur, ok := firstOfPackage[*sess.PackageID]
		if !ok || sess.ScheduledAt.Before(cur.ScheduledAt) {
			firstOfPackage[*sess.PackageID] = sess
		}
	}

	picked := make(map[uuid.UUID]bool, len(firstOfPackage))
	for _, sess := range firstOfPackage {
		picked[sess.ID] = true
	}
	return picked
}

// pickPaymentSessions выбирает тренировки для напоминания об оплате: для
// каждого пакета — самая ранняя запланированная тренировка, завершение
// которой исчерпает этот пакет.
func pickPaymentSessions(sessions []*models.FeedSession) map[uuid.UUID]bool {
	lastOfPackage := make(map[uuid.UUID]*models.FeedSession)
	for _, sess := range sessions {
		if sess.Status != models.SessionStatusScheduled || sess.PackageID == nil {
			continue
		}
		if sess.PackageUsed == nil || sess.PackageTotal == nil {
			continue
		}
		if *sess.PackageUsed+1 < *sess.PackageTotal {
			continue
		}
		cur, ok := lastOfPackage[*sess.PackageID]
		if !ok || sess.ScheduledAt.Before(cur.ScheduledAt) {
			lastOfPackage[*sess.PackageID] = sess
		}
	}

	picked := make(map[uuid.UUID]bool, len(lastOfPackage))
	for _, sess := range lastOfPackage {
		picked[sess.ID] = true
	}
	return picked
}

func buildDescription(sess *models.FeedSession, clientName string, plan []*models.SessionExercise) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("Trénink – %s", clientName))

	if sess.PackageName != nil && sess.PackageUsed != nil && sess.PackageTotal != nil {
		lines = append(lines, fmt.Sprintf("Balíček: %s (%d/%d)",
			*sess.PackageName, *sess.PackageUsed, *sess.PackageTotal))
	}

	if len(plan) > 0 {
		lines = append(lines, "", "Plánované cviky:")
		lines = append(lines, formatPlan(plan)...)
	}

	if sess.Notes != nil && *sess.Notes != "" {
		lines = append(lines, "", fmt.Sprintf("Poznámky: %s", *sess.Notes))
	}
	return strings.Join(lines, "\n")
}

// formatPlan нумерует упражнения плана; соседние упражнения с одинаковой
// непустой группой суперсета получают общий заголовок "Superset:".
func formatPlan(plan []*models.SessionExercise) []string {
	var lines []string
	number := 0
	for i := 0; i < len(plan); {
		group := plan[i].SupersetGroup
		j := i + 1
		for group != nil && j < len(plan) &&
			plan[j].SupersetGroup != nil && *plan[j].SupersetGroup == *group {
			j++
		}

		if group != nil && j-i > 1 {
			lines = append(lines, "Superset:")
		}
		for k := i; k < j; k++ {
			number++
			lines = append(lines, fmt.Sprintf("%d. %s", number, formatExercise(plan[k])))
		}
		i = j
	}
	return lines
}

// formatExercise описывает упражнение строкой вида
// "Bench press – 3x10 @ 80kg" по первому подходу.
func formatExercise(item *models.SessionExercise) string {
	name := item.ExerciseName
	if name == "" {
		name = fallbackExerciseName
	}
	if len(item.Sets) == 0 {
		return name
	}

	first := item.Sets[0]
	line := fmt.Sprintf("%s – %dx%d", name, len(item.Sets), first.Reps)
	if first.Weight > 0 {
		line += fmt.Sprintf(" @ %skg", strconv.FormatFloat(first.Weight, 'f', -1, 64))
	}
	return line
}
