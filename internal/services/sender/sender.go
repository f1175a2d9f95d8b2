// Package services содержит отправку почтовых напоминаний об оплате пакетов,
// потребляемых из очередей RabbitMQ.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/sl"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/smtp"
	"github.com/lukaskostka/janrichtertrainingapp/internal/models"
)

// Transport описывает подключение к SMTP-серверу.
type Transport interface {
	Connect() (smtp.Client, error)
	GetSMTPUser() string
}

// SenderService отправляет письма-напоминания тренеру.
type SenderService struct {
	transport Transport
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport Transport) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendPaymentDue отправляет напоминание о завершённом неоплаченном пакете.
func (s *SenderService) SendPaymentDue(body []byte) error {
	var message models.PaymentReminder
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("Failed to unmarshal message body", "error", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.TrainerEmail}
	subject := fmt.Sprintf("Neuhrazený balíček – %s", message.ClientName)
	bodyText := fmt.Sprintf(`Dobrý den, %s,

klient %s vyčerpal balíček "%s", který zatím není uhrazen.%s

Připomeňte prosím klientovi platbu.`,
		message.TrainerName, message.ClientName, message.PackageName, priceLine(message.Price))

	return s.sendEmail(to, subject, bodyText)
}

// SendPaymentUpcoming отправляет напоминание о последнем оставшемся
// кредите пакета.
func (s *SenderService) SendPaymentUpcoming(body []byte) error {
	var message models.PaymentReminder
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("Failed to unmarshal message body", "error", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.TrainerEmail}
	subject := fmt.Sprintf("Poslední trénink z balíčku – %s", message.ClientName)
	bodyText := fmt.Sprintf(`Dobrý den, %s,

klientovi %s zbývá poslední trénink z balíčku "%s".%s

Domluvte prosím s klientem navazující balíček a platbu.`,
		message.TrainerName, message.ClientName, message.PackageName, priceLine(message.Price))

	return s.sendEmail(to, subject, bodyText)
}

func priceLine(price *float64) string {
	if price == nil {
		return ""
	}
	return fmt.Sprintf("\nCena balíčku: %s Kč.", strconv.FormatFloat(*price, 'f', -1, 64))
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("Failed to connect to SMTP server", "error", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("Failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), "error", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("Failed to set RCPT TO", "recipient", addr, "error", sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("Failed to get Data writer", "error", sl.Err(err))
		return err
	}

	_, err = wc.Write([]byte(msg))
	if err != nil {
		s.log.Error("Failed to write email body", "error", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("Failed to close Data writer", "error", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("Failed to quit SMTP client", "error", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
