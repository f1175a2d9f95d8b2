package timezone_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukaskostka/janrichtertrainingapp/internal/apperrors"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/timezone"
)

func TestParseCivil_RoundTrip(t *testing.T) {
	adapter, err := timezone.New()
	require.NoError(t, err)

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{
			name:  "обычное зимнее время",
			value: "2025-01-15T10:00:00",
			want:  "2025-01-15T10:00:00",
		},
		{
			name:  "обычное летнее время",
			value: "2025-07-01T18:30:00",
			want:  "2025-07-01T18:30:00",
		},
		{
			name:  "без секунд",
			value: "2025-03-10T09:15",
			want:  "2025-03-10T09:15:00",
		},
		{
			name:  "через границу перехода на летнее время",
			value: "2025-03-30T10:00:00",
			want:  "2025-03-30T10:00:00",
		},
		{
			name:  "через границу перехода на зимнее время",
			value: "2025-10-26T10:00:00",
			want:  "2025-10-26T10:00:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := adapter.ParseCivil(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, adapter.FormatCivil(parsed))
		})
	}
}

func TestParseCivil_DSTOffsets(t *testing.T) {
	adapter, err := timezone.New()
	require.NoError(t, err)

	winter, err := adapter.ParseCivil("2025-01-15T10:00:00")
	require.NoError(t, err)
	summer, err := adapter.ParseCivil("2025-07-15T10:00:00")
	require.NoError(t, err)

	_, winterOffset := winter.Zone()
	_, summerOffset := summer.Zone()
	assert.Equal(t, 3600, winterOffset)
	assert.Equal(t, 7200, summerOffset)
}

func TestParseCivil_Malformed(t *testing.T) {
	adapter, err := timezone.New()
	require.NoError(t, err)

	for _, value := range []string{"", "garbage", "2025-13-01T10:00", "2025-01-01 10:00:00"} {
		_, err := adapter.ParseCivil(value)
		assert.Error(t, err, "value %q", value)
		assert.True(t, errors.Is(err, apperrors.ErrValidation), "value %q", value)
	}
}

func TestNextWeekday(t *testing.T) {
	adapter, err := timezone.New()
	require.NoError(t, err)

	tests := []struct {
		name      string
		start     string
		dayOfWeek int
		want      string
	}{
		{
			// Среда, запрошен понедельник: следующий понедельник, не прошедший.
			name:      "коррекция дня недели назад",
			start:     "2025-01-15", // среда
			dayOfWeek: 1,
			want:      "2025-01-20",
		},
		{
			name:      "тот же день недели",
			start:     "2025-01-13", // понедельник
			dayOfWeek: 1,
			want:      "2025-01-13",
		},
		{
			name:      "день позже в той же неделе",
			start:     "2025-01-13", // понедельник
			dayOfWeek: 5,            // пятница
			want:      "2025-01-17",
		},
		{
			// Воскресенье — последний день недели при счёте с понедельника.
			name:      "воскресенье из вторника",
			start:     "2025-01-14", // вторник
			dayOfWeek: 0,
			want:      "2025-01-19",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, err := adapter.ParseCivilDate(tt.start)
			require.NoError(t, err)
			got := adapter.NextWeekday(start, tt.dayOfWeek)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}
}

func TestAt_CombinesDateAndClock(t *testing.T) {
	adapter, err := timezone.New()
	require.NoError(t, err)

	day, err := adapter.ParseCivilDate("2025-06-02")
	require.NoError(t, err)

	got := adapter.At(day, 10, 30)
	assert.Equal(t, "2025-06-02T10:30:00", adapter.FormatCivil(got))
	assert.Equal(t, time.Monday, got.Weekday())
}
