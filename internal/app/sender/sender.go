// Package sender собирает приложение отправки платёжных напоминаний по почте.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/lukaskostka/janrichtertrainingapp/internal/config"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/rabbitmq"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/smtp"
	senderservice "github.com/lukaskostka/janrichtertrainingapp/internal/services/sender"
)

type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}

	queues := rabbitmq.GetReminderQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	newTransport := smtp.NewTransport(cfg, logger)
	senderService := senderservice.NewSenderService(logger, newTransport)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.PaymentDueQueue, a.senderService.SendPaymentDue)
	if err != nil {
		a.logger.Error("failed to start payment due consumer", slog.Any("err", err))
		return err
	}

	err = rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.PaymentUpcomingQueue, a.senderService.SendPaymentUpcoming)
	if err != nil {
		a.logger.Error("failed to start payment upcoming consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
