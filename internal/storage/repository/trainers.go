package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lukaskostka/janrichtertrainingapp/internal/apperrors"
	"github.com/lukaskostka/janrichtertrainingapp/internal/models"
)

const trainerColumns = `id, email, name, password_hash, ics_token, created_at`

func scanTrainer(row interface{ Scan(...any) error }) (*models.Trainer, error) {
	var t models.Trainer
	if err := row.Scan(&t.ID, &t.Email, &t.Name, &t.PasswordHash, &t.ICSToken, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTrainer регистрирует нового тренера. Токен календарного фида
// генерируется базой при вставке.
func (s *Storage) CreateTrainer(ctx context.Context, email, name, passwordHash string) (uuid.UUID, error) {
	const op = "storage.CreateTrainer"
	select {
	case <-ctx.Done():
		return uuid.Nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO trainers (email, name, password_hash)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	var newID uuid.UUID
	err := s.DB.QueryRowContext(ctx, query, email, name, passwordHash).Scan(&newID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return uuid.Nil, fmt.Errorf("%s: %w", op, apperrors.ErrTrainerExists)
		}
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetTrainerByEmail возвращает тренера по email.
func (s *Storage) GetTrainerByEmail(ctx context.Context, email string) (*models.Trainer, error) {
	const op = "storage.GetTrainerByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + trainerColumns + ` FROM trainers WHERE email = $1`
	t, err := scanTrainer(s.DB.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrTrainerNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// GetTrainerByID возвращает тренера по ID.
func (s *Storage) GetTrainerByID(ctx context.Context, id uuid.UUID) (*models.Trainer, error) {
	const op = "storage.GetTrainerByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + trainerColumns + ` FROM trainers WHERE id = $1`
	t, err := scanTrainer(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrTrainerNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// GetTrainerByICSToken резолвит токен календарного фида в тренера.
// Неизвестный токен неотличим от отозванного: оба дают ErrTrainerNotFound.
func (s *Storage) GetTrainerByICSToken(ctx context.Context, token uuid.UUID) (*models.Trainer, error) {
	const op = "storage.GetTrainerByICSToken"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + trainerColumns + ` FROM trainers WHERE ics_token = $1`
	t, err := scanTrainer(s.DB.QueryRowContext(ctx, query, token))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrTrainerNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// GetICSToken возвращает текущий токен календарного фида тренера.
func (s *Storage) GetICSToken(ctx context.Context, trainerID uuid.UUID) (uuid.UUID, error) {
	const op = "storage.GetICSToken"
	select {
	case <-ctx.Done():
		return uuid.Nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var token uuid.UUID
	err := s.DB.QueryRowContext(ctx, `SELECT ics_token FROM trainers WHERE id = $1`, trainerID).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("%s: %w", op, apperrors.ErrTrainerNotFound)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// RegenerateICSToken выпускает новый токен фида и возвращает пару
// (старый, новый). Старый токен нужен вызывающему, чтобы снять его из кэша
// и тем самым немедленно отозвать доступ.
func (s *Storage) RegenerateICSToken(ctx context.Context, trainerID uuid.UUID) (old, fresh uuid.UUID, err error) {
	const op = "storage.RegenerateICSToken"
	select {
	case <-ctx.Done():
		return uuid.Nil, uuid.Nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE trainers t
			  SET ics_token = gen_random_uuid()
			  FROM (SELECT id, ics_token FROM trainers WHERE id = $1 FOR UPDATE) prev
			  WHERE t.id = prev.id
			  RETURNING prev.ics_token, t.ics_token`
	err = s.DB.QueryRowContext(ctx, query, trainerID).Scan(&old, &fresh)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%s: %w", op, apperrors.ErrTrainerNotFound)
	}
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	return old, fresh, nil
}
