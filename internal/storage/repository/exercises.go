package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/lukaskostka/janrichtertrainingapp/internal/models"
)

// CreateExercise добавляет упражнение в каталог тренера.
func (s *Storage) CreateExercise(ctx context.Context, e models.Exercise) (uuid.UUID, error) {
	const op = "storage.CreateExercise"
	select {
	case <-ctx.Done():
		return uuid.Nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO exercises (trainer_id, name, description)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	var newID uuid.UUID
	err := s.DB.QueryRowContext(ctx, query, e.TrainerID, e.Name, e.Description).Scan(&newID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListExercises возвращает каталог упражнений тренера.
func (s *Storage) ListExercises(ctx context.Context, trainerID uuid.UUID) ([]*models.Exercise, error) {
	const op = "storage.ListExercises"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, trainer_id, name, description, created_at
			  FROM exercises
			  WHERE trainer_id = $1
			  ORDER BY name`
	rows, err := s.DB.QueryContext(ctx, query, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Exercise
	for rows.Next() {
		var e models.Exercise
		if err := rows.Scan(&e.ID, &e.TrainerID, &e.Name, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ReplaceSessionExercises атомарно заменяет план упражнений тренировки:
// старый план удаляется и новый вставляется в одной транзакции.
func (s *Storage) ReplaceSessionExercises(ctx context.Context, sessionID uuid.UUID, items []models.SessionExercise) error {
	const op = "storage.ReplaceSessionExercises"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_exercises WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO session_exercises (session_id, exercise_id, order_index, sets, notes, superset_group)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	for _, item := range items {
		sets, err := json.Marshal(item.Sets)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if _, err := tx.ExecContext(ctx, query, sessionID, item.ExerciseID,
			item.OrderIndex, sets, item.Notes, item.SupersetGroup); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListSessionExercises возвращает план упражнений тренировки в порядке
// выполнения. Имя берётся из каталога; удалённое упражнение каталога
// оставляет пустое имя, подстановку делает вызывающий.
func (s *Storage) ListSessionExercises(ctx context.Context, sessionID uuid.UUID) ([]*models.SessionExercise, error) {
	const op = "storage.ListSessionExercises"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT se.id, se.session_id, se.exercise_id, COALESCE(e.name, ''),
			     se.order_index, se.sets, se.notes, se.superset_group
			  FROM session_exercises se
			  LEFT JOIN exercises e ON se.exercise_id = e.id
			  WHERE se.session_id = $1
			  ORDER BY se.order_index`
	rows, err := s.DB.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result, err := scanSessionExercises(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListFeedExercises возвращает планы упражнений всех тренировок тренера,
// попадающих в календарный фид, одним запросом, сгруппированные по
// session_id. Это избавляет генератор фида от N+1 запросов.
func (s *Storage) ListFeedExercises(ctx context.Context, trainerID uuid.UUID) (map[uuid.UUID][]*models.SessionExercise, error) {
	const op = "storage.ListFeedExercises"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT se.id, se.session_id, se.exercise_id, COALESCE(e.name, ''),
			     se.order_index, se.sets, se.notes, se.superset_group
			  FROM session_exercises se
			  JOIN sessions s ON se.session_id = s.id
			  LEFT JOIN exercises e ON se.exercise_id = e.id
			  WHERE s.trainer_id = $1 AND s.status IN ('scheduled', 'completed')
			  ORDER BY se.session_id, se.order_index`
	rows, err := s.DB.QueryContext(ctx, query, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	items, err := scanSessionExercises(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	grouped := make(map[uuid.UUID][]*models.SessionExercise)
	for _, item := range items {
		grouped[item.SessionID] = append(grouped[item.SessionID], item)
	}
	return grouped, nil
}

func scanSessionExercises(rows *sql.Rows) ([]*models.SessionExercise, error) {
	var result []*models.SessionExercise
	for rows.Next() {
		var (
			item    models.SessionExercise
			rawSets []byte
		)
		if err := rows.Scan(&item.ID, &item.SessionID, &item.ExerciseID, &item.ExerciseName,
			&item.OrderIndex, &rawSets, &item.Notes, &item.SupersetGroup); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(rawSets, &item.Sets); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
