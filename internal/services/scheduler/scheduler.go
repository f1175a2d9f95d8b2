// Package services содержит планировщик напоминаний об оплате: периодически
// выбирает пакеты, требующие оплаты, и публикует их в очереди RabbitMQ.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/rabbitmq"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/sl"
	"github.com/lukaskostka/janrichtertrainingapp/internal/models"
)

// PackageRepository определяет выборки пакетов для напоминаний.
type PackageRepository interface {
	// FindPackagesAwaitingPayment возвращает завершённые неоплаченные пакеты.
	FindPackagesAwaitingPayment(ctx context.Context) ([]*models.PaymentReminder, error)
	// FindPackagesNearExhaustion возвращает пакеты с последним кредитом.
	FindPackagesNearExhaustion(ctx context.Context) ([]*models.PaymentReminder, error)
}

// SchedulerService периодически публикует напоминания об оплате в RabbitMQ.
type SchedulerService struct {
	repo PackageRepository
	log  *slog.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo PackageRepository, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo: repo,
		log:  log,
	}
}

// FindPackagesAwaitingPayment раз в сутки публикует напоминания о
// завершённых, но не оплаченных пакетах.
func (s *SchedulerService) FindPackagesAwaitingPayment(ctx context.Context, channel *amqp.Channel) {
	s.runFindPackagesAwaitingPayment(ctx, channel)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		s.runFindPackagesAwaitingPayment(ctx, channel)
	}
}

func (s *SchedulerService) runFindPackagesAwaitingPayment(ctx context.Context, channel *amqp.Channel) {
	s.log.Info("starting service to find packages awaiting payment")
	reminders, err := s.repo.FindPackagesAwaitingPayment(ctx)
	if err != nil {
		s.log.Error("failed to find packages", sl.Err(err))
		return
	}
	if len(reminders) == 0 {
		s.log.Info("no packages awaiting payment found")
		return
	}
	s.log.Info("found packages awaiting payment", "count", len(reminders))
	for _, reminder := range reminders {
		err = rabbitmq.PublishMessage(channel, rabbitmq.ReminderExchange, rabbitmq.PaymentDueRoutingKey, reminder)
		if err != nil {
			s.log.Error("failed to publish message", sl.Err(err))
		}
	}
}

// FindPackagesNearExhaustion раз в 12 часов публикует напоминания о пакетах,
// у которых остался последний кредит и есть запланированная тренировка.
func (s *SchedulerService) FindPackagesNearExhaustion(ctx context.Context, channel *amqp.Channel) {
	s.runFindPackagesNearExhaustion(ctx, channel)

	ticker := time.NewTicker(12 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		s.runFindPackagesNearExhaustion(ctx, channel)
	}
}

func (s *SchedulerService) runFindPackagesNearExhaustion(ctx context.Context, channel *amqp.Channel) {
	s.log.Info("starting service to find packages near exhaustion")
	reminders, err := s.repo.FindPackagesNearExhaustion(ctx)
	if err != nil {
		s.log.Error("failed to find packages", sl.Err(err))
		return
	}
	if len(reminders) == 0 {
		s.log.Info("no packages near exhaustion found")
		return
	}
	s.log.Info("found packages near exhaustion", "count", len(reminders))
	for _, reminder := range reminders {
		err = rabbitmq.PublishMessage(channel, rabbitmq.ReminderExchange, rabbitmq.PaymentUpcomingRoutingKey, reminder)
		if err != nil {
			s.log.Error("failed to publish message", sl.Err(err))
		}
	}
}
