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

const packageColumns = `id, client_id, name, total_sessions, used_sessions, status,
			      paid, paid_at, price, created_at`

func scanPackage(row interface{ Scan(...any) error }) (*models.Package, error) {
	var p models.Package
	if err := row.Scan(&p.ID, &p.ClientID, &p.Name, &p.TotalSessions, &p.UsedSessions,
		&p.Status, &p.Paid, &p.PaidAt, &p.Price, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePackage вставляет новый пакет тренировок и возвращает его ID.
// Частичный уникальный индекс по активным пакетам служит последним рубежом
// инварианта "один активный пакет на клиента"; его нарушение транслируется
// в apperrors.ErrActivePackageExists.
func (s *Storage) CreatePackage(ctx context.Context, p models.Package) (uuid.UUID, error) {
	const op = "storage.CreatePackage"
	select {
	case <-ctx.Done():
		return uuid.Nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO packages (client_id, name, total_sessions, price)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID uuid.UUID
	err := s.DB.QueryRowContext(ctx, query, p.ClientID, p.Name, p.TotalSessions, p.Price).Scan(&newID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return uuid.Nil, fmt.Errorf("%s: %w", op, apperrors.ErrActivePackageExists)
		}
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetActivePackage возвращает активный пакет клиента или nil, если его нет.
func (s *Storage) GetActivePackage(ctx context.Context, clientID uuid.UUID) (*models.Package, error) {
	const op = "storage.GetActivePackage"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + packageColumns + `
			  FROM packages
			  WHERE client_id = $1 AND status = 'active'`
	p, err := scanPackage(s.DB.QueryRowContext(ctx, query, clientID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// GetPackage возвращает пакет по ID.
func (s *Storage) GetPackage(ctx context.Context, id uuid.UUID) (*models.Package, error) {
	const op = "storage.GetPackage"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + packageColumns + ` FROM packages WHERE id = $1`
	p, err := scanPackage(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrPackageNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ListPackages возвращает пакеты клиента, новые первыми.
func (s *Storage) ListPackages(ctx context.Context, clientID uuid.UUID) ([]*models.Package, error) {
	const op = "storage.ListPackages"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + packageColumns + `
			  FROM packages
			  WHERE client_id = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Package
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// Один атомарный UPDATE: счётчик и статус меняются вместе, статус выводится
// из результирующих счётчиков.
const incrementPackageQuery = `
	UPDATE packages
	SET used_sessions = used_sessions + 1,
	    status = CASE WHEN used_sessions + 1 >= total_sessions
	                  THEN 'completed'::package_status
	                  ELSE status END
	WHERE id = $1
	RETURNING ` + packageColumns

const decrementPackageQuery = `
	UPDATE packages
	SET used_sessions = GREATEST(used_sessions - 1, 0),
	    status = CASE WHEN status = 'completed'::package_status
	                   AND used_sessions - 1 < total_sessions
	                  THEN 'active'::package_status
	                  ELSE status END
	WHERE id = $1
	RETURNING ` + packageColumns

// IncrementUsedSessions атомарно увеличивает счётчик использованных
// тренировок; при used >= total пакет переводится в completed.
// Пустой результат означает, что пакет больше не существует.
func (s *Storage) IncrementUsedSessions(ctx context.Context, id uuid.UUID) (*models.Package, error) {
	const op = "storage.IncrementUsedSessions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	p, err := scanPackage(s.DB.QueryRowContext(ctx, incrementPackageQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrPackageNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// DecrementUsedSessions атомарно уменьшает счётчик; завершённый пакет,
// у которого снова used < total, возвращается в active.
func (s *Storage) DecrementUsedSessions(ctx context.Context, id uuid.UUID) (*models.Package, error) {
	const op = "storage.DecrementUsedSessions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	p, err := scanPackage(s.DB.QueryRowContext(ctx, decrementPackageQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrPackageNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// UpdatePackage записывает итоговые значения полей пакета, вычисленные
// сервисом учёта (включая выведенный статус).
func (s *Storage) UpdatePackage(ctx context.Context, p models.Package) (*models.Package, error) {
	const op = "storage.UpdatePackage"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE packages
			  SET name = $1, total_sessions = $2, used_sessions = $3, status = $4, price = $5
			  WHERE id = $6
			  RETURNING ` + packageColumns
	updated, err := scanPackage(s.DB.QueryRowContext(ctx, query,
		p.Name, p.TotalSessions, p.UsedSessions, p.Status, p.Price, p.ID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrPackageNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// TogglePaid атомарно инвертирует флаг оплаты и выставляет либо очищает
// paid_at одним UPDATE, исключая потерю обновлений при конкурентных вызовах.
func (s *Storage) TogglePaid(ctx context.Context, id uuid.UUID) (*models.Package, error) {
	const op = "storage.TogglePaid"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE packages
			  SET paid = NOT paid,
			      paid_at = CASE WHEN paid THEN NULL ELSE now() END
			  WHERE id = $1
			  RETURNING ` + packageColumns
	p, err := scanPackage(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrPackageNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// FindPackagesAwaitingPayment находит завершённые, но не оплаченные пакеты
// для рассылки напоминаний об оплате.
func (s *Storage) FindPackagesAwaitingPayment(ctx context.Context) ([]*models.PaymentReminder, error) {
	const op = "storage.FindPackagesAwaitingPayment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT t.email, t.name, c.name, p.name, p.price
			  FROM packages p
			  JOIN clients c ON p.client_id = c.id
			  JOIN trainers t ON c.trainer_id = t.id
			  WHERE p.status = 'completed' AND p.paid = false`
	return s.queryReminders(ctx, op, query)
}

// FindPackagesNearExhaustion находит активные пакеты, у которых остался один
// кредит и есть запланированная тренировка: её завершение исчерпает пакет.
func (s *Storage) FindPackagesNearExhaustion(ctx context.Context) ([]*models.PaymentReminder, error) {
	const op = "storage.FindPackagesNearExhaustion"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT t.email, t.name, c.name, p.name, p.price
			  FROM packages p
			  JOIN clients c ON p.client_id = c.id
			  JOIN trainers t ON c.trainer_id = t.id
			  WHERE p.status = 'active'
			    AND p.used_sessions + 1 >= p.total_sessions
			    AND EXISTS (
			        SELECT 1 FROM sessions s
			        WHERE s.package_id = p.id AND s.status = 'scheduled'
			    )`
	return s.queryReminders(ctx, op, query)
}

func (s *Storage) queryReminders(ctx context.Context, op, query string) ([]*models.PaymentReminder, error) {
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.PaymentReminder
	for rows.Next() {
		var r models.PaymentReminder
		if err := rows.Scan(&r.TrainerEmail, &r.TrainerName, &r.ClientName, &r.PackageName, &r.Price); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
