// Package models содержит доменные структуры приложения персонального тренера:
// тренеры, клиенты, пакеты тренировок, тренировки (сессии) и упражнения.
// Все даты хранятся как time.Time в UTC; преобразование в локальное время
// бизнеса выполняется на границе (пакет lib/timezone).
package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы пакета тренировок.
const (
	PackageStatusActive    = "active"
	PackageStatusCompleted = "completed"
	PackageStatusExpired   = "expired"
)

// Статусы тренировки.
const (
	SessionStatusScheduled = "scheduled"
	SessionStatusCompleted = "completed"
	SessionStatusCancelled = "cancelled"
	SessionStatusNoShow    = "no_show"
)

// Статусы клиента.
const (
	ClientStatusActive   = "active"
	ClientStatusInactive = "inactive"
	ClientStatusArchived = "archived"
)

// SessionDurationMinutes фиксированная длительность тренировки для бизнеса.
const SessionDurationMinutes = 60

// Trainer представляет аккаунт тренера.
// ICSToken — непрозрачный токен доступа к календарному фиду, может быть
// перегенерирован, при этом старый токен немедленно становится недействительным.
type Trainer struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	ICSToken     uuid.UUID
	CreatedAt    time.Time
}

// Client представляет клиента тренера.
type Client struct {
	ID        uuid.UUID
	TrainerID uuid.UUID
	Name      string
	Email     *string
	Phone     *string
	Status    string
	Notes     *string
	CreatedAt time.Time
}

// Package представляет купленный пакет тренировок — конечный пул кредитов.
// Инвариант: used_sessions >= 0; used_sessions >= total_sessions влечёт
// status = completed. У клиента в любой момент не более одного активного пакета.
type Package struct {
	ID            uuid.UUID
	ClientID      uuid.UUID
	Name          string
	TotalSessions int
	UsedSessions  int
	Status        string
	Paid          bool
	PaidAt        *time.Time
	Price         *float64
	CreatedAt     time.Time
}

// Remaining возвращает количество неизрасходованных кредитов пакета.
func (p *Package) Remaining() int {
	if p == nil {
		return 0
	}
	r := p.TotalSessions - p.UsedSessions
	if r < 0 {
		return 0
	}
	return r
}

// RecurrenceRule снимок правила повторения, общий для всех тренировок
// одной повторяющейся серии.
type RecurrenceRule struct {
	DayOfWeek     int    `json:"day_of_week"`    // 0=воскресенье .. 6=суббота
	Time          string `json:"time"`           // "HH:mm" в часовом поясе бизнеса
	IntervalWeeks int    `json:"interval_weeks"` // шаг в неделях
}

// Session представляет одну запланированную тренировку.
// PackageID фиксируется при создании и далее не меняется; возврат кредита
// возможен только через удаление тренировки.
type Session struct {
	ID                uuid.UUID
	TrainerID         uuid.UUID
	ClientID          uuid.UUID
	PackageID         *uuid.UUID
	ScheduledAt       time.Time
	DurationMinutes   int
	Status            string
	RecurrenceGroupID *uuid.UUID
	RecurrenceRule    *RecurrenceRule
	Location          *string
	Notes             *string
	CreatedAt         time.Time
}

// FeedSession — тренировка с данными клиента и пакета, как её видит
// генератор календарного фида.
type FeedSession struct {
	Session
	ClientName   string
	PackageName  *string
	PackageTotal *int
	PackageUsed  *int
}

// ExerciseSet один подход упражнения.
type ExerciseSet struct {
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
}

// Exercise запись каталога упражнений тренера.
type Exercise struct {
	ID          uuid.UUID
	TrainerID   uuid.UUID
	Name        string
	Description *string
	CreatedAt   time.Time
}

// SessionExercise упражнение, запланированное в рамках тренировки.
// Соседние (по OrderIndex) упражнения с одинаковым непустым SupersetGroup
// отображаются в описании фида одним блоком "Superset".
type SessionExercise struct {
	ID            uuid.UUID
	SessionID     uuid.UUID
	ExerciseID    *uuid.UUID
	ExerciseName  string
	OrderIndex    int
	Sets          []ExerciseSet
	Notes         *string
	SupersetGroup *int
}

// InBodyRecord результат измерения состава тела, полученный от внешнего
// OCR-сервиса. Сервис возвращает запись фиксированной формы; точность
// распознавания не гарантируется.
type InBodyRecord struct {
	ID          uuid.UUID
	ClientID    uuid.UUID
	MeasuredAt  time.Time
	Weight      *float64
	BodyFatPct  *float64
	MuscleMass  *float64
	BMI         *float64
	VisceralFat *float64
	Notes       *string
	CreatedAt   time.Time
}

// PaymentReminder данные для письма-напоминания об оплате пакета.
type PaymentReminder struct {
	TrainerEmail string   `json:"trainer_email"`
	TrainerName  string   `json:"trainer_name"`
	ClientName   string   `json:"client_name"`
	PackageName  string   `json:"package_name"`
	Price        *float64 `json:"price,omitempty"`
}
