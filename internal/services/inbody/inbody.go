// Package services реализует бизнес-логику измерений InBody: распознавание
// снимка протокола через внешний OCR-сервис и ведение истории измерений
// клиента.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lukaskostka/janrichtertrainingapp/internal/apperrors"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/sl"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/timezone"
	"github.com/lukaskostka/janrichtertrainingapp/internal/models"
	"github.com/lukaskostka/janrichtertrainingapp/internal/vision"
)

// InBodyRepository интерфейс хранилища измерений.
type InBodyRepository interface {
	GetClient(ctx context.Context, trainerID, clientID uuid.UUID) (*models.Client, error)
	CreateInBodyRecord(ctx context.Context, r models.InBodyRecord) (uuid.UUID, error)
	ListInBodyRecords(ctx context.Context, clientID uuid.UUID) ([]*models.InBodyRecord, error)
}

// Recognizer интерфейс OCR-клиента.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, mimeType string) (*vision.RecognizeResponse, error)
}

// InBodyService сервис измерений InBody.
type InBodyService struct {
	repo       InBodyRepository
	recognizer Recognizer
	tz         *timezone.Adapter
	log        *slog.Logger
}

// NewInBodyService создаёт новый сервис измерений.
func NewInBodyService(log *slog.Logger, repo InBodyRepository, recognizer Recognizer, tz *timezone.Adapter) *InBodyService {
	return &InBodyService{
		repo:       repo,
		recognizer: recognizer,
		tz:         tz,
		log:        log,
	}
}

// RecognizeAndSave распознаёт снимок протокола InBody и сохраняет измерение.
// Если OCR не распознал дату, измерение датируется сегодняшним днём.
func (s *InBodyService) RecognizeAndSave(ctx context.Context, trainerID, clientID uuid.UUID,
	image []byte, mimeType string) (*models.InBodyRecord, error) {
	const op = "services.InBodyService.RecognizeAndSave"
	log := s.log.With(slog.String("op", op), slog.String("client_id", clientID.String()))

	if _, err := s.repo.GetClient(ctx, trainerID, clientID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := s.recognizer.Recognize(ctx, image, mimeType)
	if err != nil {
		log.Error("ocr recognition failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	measuredAt := s.tz.Today()
	if resp.MeasuredAt != nil {
		parsed, err := s.tz.ParseCivilDate(*resp.MeasuredAt)
		if err != nil {
			log.Warn("ocr returned unparseable date", slog.String("value", *resp.MeasuredAt))
		} else {
			measuredAt = parsed
		}
	}

	record := models.InBodyRecord{
		ClientID:    clientID,
		MeasuredAt:  measuredAt,
		Weight:      resp.Weight,
		BodyFatPct:  resp.BodyFatPct,
		MuscleMass:  resp.MuscleMass,
		BMI:         resp.BMI,
		VisceralFat: resp.VisceralFat,
	}
	id, err := s.repo.CreateInBodyRecord(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	record.ID = id
	record.CreatedAt = time.Now()
	log.Info("inbody record saved", slog.String("record_id", id.String()))
	return &record, nil
}

// Create сохраняет измерение, введённое тренером вручную.
func (s *InBodyService) Create(ctx context.Context, trainerID uuid.UUID, record models.InBodyRecord) (uuid.UUID, error) {
	const op = "services.InBodyService.Create"

	if _, err := s.repo.GetClient(ctx, trainerID, record.ClientID); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	if record.MeasuredAt.IsZero() {
		return uuid.Nil, fmt.Errorf("%s: %w: measured_at is required", op, apperrors.ErrValidation)
	}
	id, err := s.repo.CreateInBodyRecord(ctx, record)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// List возвращает историю измерений клиента.
func (s *InBodyService) List(ctx context.Context, trainerID, clientID uuid.UUID) ([]*models.InBodyRecord, error) {
	const op = "services.InBodyService.List"

	if _, err := s.repo.GetClient(ctx, trainerID, clientID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	records, err := s.repo.ListInBodyRecords(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return records, nil
}
