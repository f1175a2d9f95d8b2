package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/lukaskostka/janrichtertrainingapp/internal/apperrors"
	"github.com/lukaskostka/janrichtertrainingapp/internal/models"
)

const clientColumns = `id, trainer_id, name, email, phone, status, notes, created_at`

func scanClient(row interface{ Scan(...any) error }) (*models.Client, error) {
	var c models.Client
	if err := row.Scan(&c.ID, &c.TrainerID, &c.Name, &c.Email, &c.Phone,
		&c.Status, &c.Notes, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateClient добавляет клиента тренеру и возвращает его ID.
func (s *Storage) CreateClient(ctx context.Context, c models.Client) (uuid.UUID, error) {
	const op = "storage.CreateClient"
	select {
	case <-ctx.Done():
		return uuid.Nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO clients (trainer_id, name, email, phone, notes)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	var newID uuid.UUID
	err := s.DB.QueryRowContext(ctx, query, c.TrainerID, c.Name, c.Email, c.Phone, c.Notes).Scan(&newID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetClient возвращает клиента тренера по ID.
func (s *Storage) GetClient(ctx context.Context, trainerID, clientID uuid.UUID) (*models.Client, error) {
	const op = "storage.GetClient"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + clientColumns + `
			  FROM clients
			  WHERE id = $1 AND trainer_id = $2`
	c, err := scanClient(s.DB.QueryRowContext(ctx, query, clientID, trainerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrClientNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// ListClients возвращает клиентов тренера в алфавитном порядке.
func (s *Storage) ListClients(ctx context.Context, trainerID uuid.UUID) ([]*models.Client, error) {
	const op = "storage.ListClients"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + clientColumns + `
			  FROM clients
			  WHERE trainer_id = $1
			  ORDER BY name`
	rows, err := s.DB.QueryContext(ctx, query, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateClient обновляет карточку клиента.
func (s *Storage) UpdateClient(ctx context.Context, c models.Client) (*models.Client, error) {
	const op = "storage.UpdateClient"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE clients
			  SET name = $1, email = $2, phone = $3, status = $4, notes = $5
			  WHERE id = $6 AND trainer_id = $7
			  RETURNING ` + clientColumns
	updated, err := scanClient(s.DB.QueryRowContext(ctx, query,
		c.Name, c.Email, c.Phone, c.Status, c.Notes, c.ID, c.TrainerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrClientNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}
