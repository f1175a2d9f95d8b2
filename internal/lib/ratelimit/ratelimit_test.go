package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedWindow_Allow(t *testing.T) {
	limiter := NewFixedWindow(3, time.Minute)
	current := time.Date(2025, 2, 3, 12, 0, 0, 0, time.UTC)
	limiter.SetNow(func() time.Time { return current })

	for i := range 3 {
		d := limiter.Allow("token-a")
		assert.True(t, d.Allowed, "request %d", i)
		assert.Equal(t, 3, d.Limit)
		assert.Equal(t, 2-i, d.Remaining)
	}

	d := limiter.Allow("token-a")
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, current.Add(time.Minute), d.Reset)

	// Другой ключ считается отдельно.
	assert.True(t, limiter.Allow("token-b").Allowed)
}

func TestFixedWindow_WindowReset(t *testing.T) {
	limiter := NewFixedWindow(1, time.Minute)
	current := time.Date(2025, 2, 3, 12, 0, 0, 0, time.UTC)
	limiter.SetNow(func() time.Time { return current })

	assert.True(t, limiter.Allow("token").Allowed)
	assert.False(t, limiter.Allow("token").Allowed)

	current = current.Add(time.Minute)
	assert.True(t, limiter.Allow("token").Allowed)
}

func TestFixedWindow_PrunesStaleWindows(t *testing.T) {
	limiter := NewFixedWindow(3, time.Minute)
	current := time.Date(2025, 2, 3, 12, 0, 0, 0, time.UTC)
	limiter.SetNow(func() time.Time { return current })

	for i := range pruneThreshold + 10 {
		limiter.Allow(fmt.Sprintf("token-%d", i))
	}
	assert.Greater(t, len(limiter.windows), pruneThreshold)

	// Следующее окно: один запрос выметает все истекшие записи.
	current = current.Add(time.Minute)
	d := limiter.Allow("fresh-token")
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, len(limiter.windows))

	// Живые окна уборку переживают: счётчик fresh-token не сбрасывается.
	for i := range pruneThreshold + 10 {
		limiter.Allow(fmt.Sprintf("token-%d", i))
	}
	d = limiter.Allow("fresh-token")
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
	assert.Contains(t, limiter.windows, "fresh-token")
}
