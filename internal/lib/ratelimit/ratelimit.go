// Package ratelimit реализует лимитер с фиксированным окном на ключ.
// Используется для публичного календарного фида, где клиентом выступают
// календарные приложения без аутентификации.
package ratelimit

import (
	"sync"
	"time"
)

// Decision итог проверки запроса лимитером.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

type window struct {
	start time.Time
	count int
}

// FixedWindow лимитер с фиксированным окном: первые Limit запросов окна
// пропускаются, остальные отклоняются до начала следующего окна.
// Состояние держится в памяти процесса.
type FixedWindow struct {
	limit  int
	period time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

// pruneThreshold размер карты окон, после которого Allow попутно удаляет
// истекшие записи. Не даёт карте расти без ограничения на потоке случайных
// ключей.
const pruneThreshold = 100

// NewFixedWindow создает лимитер: limit запросов на ключ за period.
func NewFixedWindow(limit int, period time.Duration) *FixedWindow {
	return &FixedWindow{
		limit:   limit,
		period:  period,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// Allow регистрирует запрос по ключу и возвращает решение вместе с данными
// для заголовков X-RateLimit-*.
func (l *FixedWindow) Allow(key string) Decision {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.windows) > pruneThreshold {
		for k, w := range l.windows {
			if now.Sub(w.start) >= l.period {
				delete(l.windows, k)
			}
		}
	}

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.period {
		w = &window{start: now}
		l.windows[key] = w
	}
	w.count++

	remaining := l.limit - w.count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   w.count <= l.limit,
		Limit:     l.limit,
		Remaining: remaining,
		Reset:     w.start.Add(l.period),
	}
}

// SetNow подменяет источник времени в тестах.
func (l *FixedWindow) SetNow(now func() time.Time) {
	l.now = now
}
