// Package timezone реализует преобразования между гражданским временем
// бизнеса и абсолютными моментами. Вся календарная арифметика (добавление
// недель, поиск ближайшего дня недели) выполняется в гражданском времени
// фиксированного часового пояса; преобразование в абсолютный момент
// происходит только на границе персистентности.
package timezone

import (
	"fmt"
	"time"

	"github.com/lukaskostka/janrichtertrainingapp/internal/apperrors"
)

// BusinessTZ часовой пояс бизнеса.
const BusinessTZ = "Europe/Prague"

const (
	civilLayout       = "2006-01-02T15:04:05"
	civilLayoutNoSecs = "2006-01-02T15:04"
	civilDateLayout   = "2006-01-02"
	civilTimeLayout   = "15:04"
)

// Adapter конвертирует гражданские дата-время строки в абсолютные моменты
// и обратно в пределах одного фиксированного часового пояса.
type Adapter struct {
	loc *time.Location
}

// New загружает часовой пояс бизнеса. Ошибка загрузки означает отсутствие
// tzdata в окружении и является фатальной для вызывающего.
func New() (*Adapter, error) {
	const op = "timezone.New"
	loc, err := time.LoadLocation(BusinessTZ)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Adapter{loc: loc}, nil
}

// Location возвращает *time.Location бизнеса.
func (a *Adapter) Location() *time.Location {
	return a.loc
}

// ParseCivil разбирает гражданскую строку "2006-01-02T15:04" или
// "2006-01-02T15:04:05" в момент времени в поясе бизнеса. Некорректный ввод
// — ошибка валидации, значение никогда не подгоняется молча.
func (a *Adapter) ParseCivil(value string) (time.Time, error) {
	const op = "timezone.ParseCivil"
	layout := civilLayout
	if len(value) == len(civilLayoutNoSecs) {
		layout = civilLayoutNoSecs
	}
	t, err := time.ParseInLocation(layout, value, a.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %q: %w", op, value, apperrors.ErrValidation)
	}
	return t, nil
}

// ParseCivilDate разбирает гражданскую дату "2006-01-02" (полночь пояса бизнеса).
func (a *Adapter) ParseCivilDate(value string) (time.Time, error) {
	const op = "timezone.ParseCivilDate"
	t, err := time.ParseInLocation(civilDateLayout, value, a.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %q: %w", op, value, apperrors.ErrValidation)
	}
	return t, nil
}

// ParseClock разбирает время суток "HH:mm" и возвращает час и минуту.
func (a *Adapter) ParseClock(value string) (hour, minute int, err error) {
	const op = "timezone.ParseClock"
	t, perr := time.Parse(civilTimeLayout, value)
	if perr != nil {
		return 0, 0, fmt.Errorf("%s: %q: %w", op, value, apperrors.ErrValidation)
	}
	return t.Hour(), t.Minute(), nil
}

// FormatCivil форматирует момент как гражданскую строку пояса бизнеса,
// с секундами.
func (a *Adapter) FormatCivil(t time.Time) string {
	return t.In(a.loc).Format(civilLayout)
}

// Today возвращает полночь сегодняшнего дня в поясе бизнеса.
func (a *Adapter) Today() time.Time {
	now := time.Now().In(a.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, a.loc)
}

// ToLocal переводит момент в пояс бизнеса.
func (a *Adapter) ToLocal(t time.Time) time.Time {
	return t.In(a.loc)
}

// NextWeekday возвращает самую раннюю гражданскую дату >= start, день недели
// которой равен dayOfWeek (0=воскресенье..6=суббота), при неделе, начинающейся
// с понедельника: кандидат берётся внутри недели start, и если он оказывается
// раньше start — сдвигается на неделю вперёд.
func (a *Adapter) NextWeekday(start time.Time, dayOfWeek int) time.Time {
	start = start.In(a.loc)
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, a.loc)

	// Индекс внутри недели с понедельником в нулевой позиции.
	curIdx := (int(day.Weekday()) + 6) % 7
	wantIdx := (dayOfWeek + 6) % 7

	candidate := day.AddDate(0, 0, wantIdx-curIdx)
	if candidate.Before(day) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}

// At комбинирует гражданскую дату с временем суток в поясе бизнеса.
func (a *Adapter) At(day time.Time, hour, minute int) time.Time {
	day = day.In(a.loc)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, a.loc)
}
