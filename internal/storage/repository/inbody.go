package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/lukaskostka/janrichtertrainingapp/internal/models"
)

// CreateInBodyRecord сохраняет результат измерения состава тела.
func (s *Storage) CreateInBodyRecord(ctx context.Context, r models.InBodyRecord) (uuid.UUID, error) {
	const op = "storage.CreateInBodyRecord"
	select {
	case <-ctx.Done():
		return uuid.Nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO inbody_records (client_id, measured_at, weight, body_fat_pct,
			      muscle_mass, bmi, visceral_fat, notes)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id`
	var newID uuid.UUID
	err := s.DB.QueryRowContext(ctx, query, r.ClientID, r.MeasuredAt, r.Weight, r.BodyFatPct,
		r.MuscleMass, r.BMI, r.VisceralFat, r.Notes).Scan(&newID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListInBodyRecords возвращает историю измерений клиента, свежие первыми.
func (s *Storage) ListInBodyRecords(ctx context.Context, clientID uuid.UUID) ([]*models.InBodyRecord, error) {
	const op = "storage.ListInBodyRecords"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, client_id, measured_at, weight, body_fat_pct,
			     muscle_mass, bmi, visceral_fat, notes, created_at
			  FROM inbody_records
			  WHERE client_id = $1
			  ORDER BY measured_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.InBodyRecord
	for rows.Next() {
		var r models.InBodyRecord
		if err := rows.Scan(&r.ID, &r.ClientID, &r.MeasuredAt, &r.Weight, &r.BodyFatPct,
			&r.MuscleMass, &r.BMI, &r.VisceralFat, &r.Notes, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
