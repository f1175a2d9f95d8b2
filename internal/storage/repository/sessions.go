package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lukaskostka/janrichtertrainingapp/internal/apperrors"
	"github.com/lukaskostka/janrichtertrainingapp/internal/models"
)

const sessionColumns = `id, trainer_id, client_id, package_id, scheduled_at, duration_minutes,
			      status, recurrence_group_id, recurrence_day_of_week, recurrence_time,
			      recurrence_interval_weeks, location, notes, created_at`

// SessionFilter необязательные фильтры списка тренировок.
type SessionFilter struct {
	ClientID *uuid.UUID
	Status   *string
	From     *time.Time
	To       *time.Time
}

// OverdueSession запланированная тренировка, время которой давно прошло.
type OverdueSession struct {
	ID        uuid.UUID
	PackageID *uuid.UUID
}

func scanSession(row interface{ Scan(...any) error }) (*models.Session, error) {
	var (
		sess          models.Session
		ruleDayOfWeek sql.NullInt64
		ruleTime      sql.NullString
		ruleInterval  sql.NullInt64
	)
	if err := row.Scan(&sess.ID, &sess.TrainerID, &sess.ClientID, &sess.PackageID,
		&sess.ScheduledAt, &sess.DurationMinutes, &sess.Status, &sess.RecurrenceGroupID,
		&ruleDayOfWeek, &ruleTime, &ruleInterval,
		&sess.Location, &sess.Notes, &sess.CreatedAt); err != nil {
		return nil, err
	}
	if ruleDayOfWeek.Valid && ruleTime.Valid && ruleInterval.Valid {
		sess.RecurrenceRule = &models.RecurrenceRule{
			DayOfWeek:     int(ruleDayOfWeek.Int64),
			Time:          ruleTime.String,
			IntervalWeeks: int(ruleInterval.Int64),
		}
	}
	return &sess, nil
}

func sessionInsertArgs(sess models.Session) []any {
	var (
		ruleDayOfWeek *int
		ruleTime      *string
		ruleInterval  *int
	)
	if sess.RecurrenceRule != nil {
		ruleDayOfWeek = &sess.RecurrenceRule.DayOfWeek
		ruleTime = &sess.RecurrenceRule.Time
		ruleInterval = &sess.RecurrenceRule.IntervalWeeks
	}
	return []any{
		sess.TrainerID, sess.ClientID, sess.PackageID, sess.ScheduledAt, sess.DurationMinutes,
		sess.RecurrenceGroupID, ruleDayOfWeek, ruleTime, ruleInterval,
		sess.Location, sess.Notes,
	}
}

const insertSessionQuery = `
	INSERT INTO sessions (trainer_id, client_id, package_id, scheduled_at, duration_minutes,
			      recurrence_group_id, recurrence_day_of_week, recurrence_time,
			      recurrence_interval_weeks, location, notes)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING id`

// CreateSession вставляет одну тренировку и возвращает её ID.
func (s *Storage) CreateSession(ctx context.Context, sess models.Session) (uuid.UUID, error) {
	const op = "storage.CreateSession"
	select {
	case <-ctx.Done():
		return uuid.Nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID uuid.UUID
	err := s.DB.QueryRowContext(ctx, insertSessionQuery, sessionInsertArgs(sess)...).Scan(&newID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// CreateSessionsBatch вставляет серию тренировок в одной транзакции:
// либо сохраняются все, либо ни одна.
func (s *Storage) CreateSessionsBatch(ctx context.Context, sessions []models.Session) ([]uuid.UUID, error) {
	const op = "storage.CreateSessionsBatch"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	ids := make([]uuid.UUID, 0, len(sessions))
	for _, sess := range sessions {
		var newID uuid.UUID
		if err := tx.QueryRowContext(ctx, insertSessionQuery, sessionInsertArgs(sess)...).Scan(&newID); err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, apperrors.ErrBatchInsert, err)
		}
		ids = append(ids, newID)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ids, nil
}

// GetSession возвращает тренировку тренера по ID.
func (s *Storage) GetSession(ctx context.Context, trainerID, sessionID uuid.UUID) (*models.Session, error) {
	const op = "storage.GetSession"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + sessionColumns + `
			  FROM sessions
			  WHERE id = $1 AND trainer_id = $2`
	sess, err := scanSession(s.DB.QueryRowContext(ctx, query, sessionID, trainerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sess, nil
}

// ListSessions возвращает тренировки тренера с необязательными фильтрами,
// отсортированные по времени начала.
func (s *Storage) ListSessions(ctx context.Context, trainerID uuid.UUID, filter SessionFilter) ([]*models.Session, error) {
	const op = "storage.ListSessions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE trainer_id = $1`
	args := []any{trainerID}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		query += fmt.Sprintf(" AND client_id = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND scheduled_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND scheduled_at < $%d", len(args))
	}
	query += " ORDER BY scheduled_at"

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateSessionSchedule переносит тренировку на новое время. Перенос разрешён
// только для запланированных тренировок, условие зашито в сам UPDATE.
func (s *Storage) UpdateSessionSchedule(ctx context.Context, trainerID, sessionID uuid.UUID, scheduledAt time.Time, location, notes *string) (*models.Session, error) {
	const op = "storage.UpdateSessionSchedule"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE sessions
			  SET scheduled_at = $1,
			      location = COALESCE($2, location),
			      notes = COALESCE($3, notes)
			  WHERE id = $4 AND trainer_id = $5 AND status = 'scheduled'
			  RETURNING ` + sessionColumns
	sess, err := scanSession(s.DB.QueryRowContext(ctx, query, scheduledAt, location, notes, sessionID, trainerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrInvalidTransition)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sess, nil
}

// SetStatusIfScheduled переводит запланированную тренировку в указанный
// статус. Пустой результат означает, что тренировка не найдена либо уже
// покинула состояние scheduled.
func (s *Storage) SetStatusIfScheduled(ctx context.Context, trainerID, sessionID uuid.UUID, status string) (*models.Session, error) {
	const op = "storage.SetStatusIfScheduled"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE sessions
			  SET status = $1
			  WHERE id = $2 AND trainer_id = $3 AND status = 'scheduled'
			  RETURNING ` + sessionColumns
	sess, err := scanSession(s.DB.QueryRowContext(ctx, query, status, sessionID, trainerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrInvalidTransition)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sess, nil
}

// CompleteSession атомарно завершает тренировку и списывает кредит пакета.
// Переход и списание происходят в одной транзакции: UPDATE срабатывает только
// из состояния scheduled. Уже завершённая тренировка возвращается как есть
// без повторного списания, отмена или неявка дают ErrInvalidTransition.
func (s *Storage) CompleteSession(ctx context.Context, trainerID, sessionID uuid.UUID) (*models.Session, *models.Package, error) {
	const op = "storage.CompleteSession"
	select {
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE sessions
			  SET status = 'completed'
			  WHERE id = $1 AND trainer_id = $2 AND status = 'scheduled'
			  RETURNING ` + sessionColumns
	sess, err := scanSession(tx.QueryRowContext(ctx, query, sessionID, trainerID))
	if errors.Is(err, sql.ErrNoRows) {
		current, selErr := scanSession(tx.QueryRowContext(ctx,
			`SELECT `+sessionColumns+` FROM sessions WHERE id = $1 AND trainer_id = $2`,
			sessionID, trainerID))
		switch {
		case errors.Is(selErr, sql.ErrNoRows):
			return nil, nil, fmt.Errorf("%s: %w", op, apperrors.ErrSessionNotFound)
		case selErr != nil:
			return nil, nil, fmt.Errorf("%s: %w", op, selErr)
		case current.Status == models.SessionStatusCompleted:
			if err := tx.Commit(); err != nil {
				return nil, nil, fmt.Errorf("%s: %w", op, err)
			}
			return current, nil, nil
		default:
			return nil, nil, fmt.Errorf("%s: %w", op, apperrors.ErrInvalidTransition)
		}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	var pkg *models.Package
	if sess.PackageID != nil {
		pkg, err = scanPackage(tx.QueryRowContext(ctx, incrementPackageQuery, *sess.PackageID))
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("%s: %w", op, apperrors.ErrPackageVanished)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return sess, pkg, nil
}

// DeleteSession удаляет тренировку. Если тренировка была завершена и
// привязана к пакету, кредит возвращается в той же транзакции до удаления.
func (s *Storage) DeleteSession(ctx context.Context, trainerID, sessionID uuid.UUID) error {
	const op = "storage.DeleteSession"
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

	var (
		status    string
		packageID *uuid.UUID
	)
	query := `SELECT status, package_id FROM sessions
			  WHERE id = $1 AND trainer_id = $2
			  FOR UPDATE`
	err = tx.QueryRowContext(ctx, query, sessionID, trainerID).Scan(&status, &packageID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, apperrors.ErrSessionNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if status == models.SessionStatusCompleted && packageID != nil {
		if _, err := scanPackage(tx.QueryRowContext(ctx, decrementPackageQuery, *packageID)); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%s: %w", op, apperrors.ErrPackageVanished)
			}
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_exercises WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, sessionID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteFutureInGroup удаляет запланированные тренировки повторяющейся
// серии строго после указанного момента. Опорную тренировку удаляет
// DeleteSession, который и возвращает кредит завершённой; завершённые и
// прошедшие тренировки серии здесь не трогаются.
func (s *Storage) DeleteFutureInGroup(ctx context.Context, trainerID, groupID uuid.UUID, after time.Time) (int64, error) {
	const op = "storage.DeleteFutureInGroup"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM sessions
			  WHERE trainer_id = $1 AND recurrence_group_id = $2
			    AND status = 'scheduled' AND scheduled_at > $3`
	res, err := s.DB.ExecContext(ctx, query, trainerID, groupID, after)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}

// FindOverdueScheduled возвращает запланированные тренировки тренера,
// время начала которых раньше cutoff.
func (s *Storage) FindOverdueScheduled(ctx context.Context, trainerID uuid.UUID, cutoff time.Time) ([]OverdueSession, error) {
	const op = "storage.FindOverdueScheduled"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, package_id FROM sessions
			  WHERE trainer_id = $1 AND status = 'scheduled' AND scheduled_at < $2
			  ORDER BY scheduled_at`
	rows, err := s.DB.QueryContext(ctx, query, trainerID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []OverdueSession
	for rows.Next() {
		var item OverdueSession
		if err := rows.Scan(&item.ID, &item.PackageID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// MarkCompletedIfScheduled завершает просроченную тренировку, если она всё
// ещё запланирована, и возвращает package_id для списания кредита.
// Если тренировку уже завершили вручную, возвращается ErrInvalidTransition.
func (s *Storage) MarkCompletedIfScheduled(ctx context.Context, sessionID uuid.UUID) (*uuid.UUID, error) {
	const op = "storage.MarkCompletedIfScheduled"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE sessions
			  SET status = 'completed'
			  WHERE id = $1 AND status = 'scheduled'
			  RETURNING package_id`
	var packageID *uuid.UUID
	err := s.DB.QueryRowContext(ctx, query, sessionID).Scan(&packageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrInvalidTransition)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return packageID, nil
}

// ListFeedSessions возвращает тренировки тренера вместе с данными клиента и
// пакета для генерации календарного фида.
func (s *Storage) ListFeedSessions(ctx context.Context, trainerID uuid.UUID) ([]*models.FeedSession, error) {
	const op = "storage.ListFeedSessions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT s.id, s.trainer_id, s.client_id, s.package_id, s.scheduled_at,
			     s.duration_minutes, s.status, s.recurrence_group_id,
			     s.location, s.notes, s.created_at,
			     c.name, p.name, p.total_sessions, p.used_sessions
			  FROM sessions s
			  JOIN clients c ON s.client_id = c.id
			  LEFT JOIN packages p ON s.package_id = p.id
			  WHERE s.trainer_id = $1 AND s.status IN ('scheduled', 'completed')
			  ORDER BY s.scheduled_at`
	rows, err := s.DB.QueryContext(ctx, query, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.FeedSession
	for rows.Next() {
		var fs models.FeedSession
		if err := rows.Scan(&fs.ID, &fs.TrainerID, &fs.ClientID, &fs.PackageID,
			&fs.ScheduledAt, &fs.DurationMinutes, &fs.Status, &fs.RecurrenceGroupID,
			&fs.Location, &fs.Notes, &fs.CreatedAt,
			&fs.ClientName, &fs.PackageName, &fs.PackageTotal, &fs.PackageUsed); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &fs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
