package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"dispatch/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.RateLimit = &config.RateLimitConfig{
		MaxAttempts: 5,
		Window:      time.Hour,
	}

	return cfg
}

func TestLockout_WindowBoundary(t *testing.T) {
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewLockout(testConfig(), WithClock(func() time.Time { return current }))

	// Four attempts pass, the fifth locks, the sixth stays locked.
	want := []bool{true, true, true, true, false, false}
	for i, expected := range want {
		assert.Equal(t, expected, l.Allow(), "attempt %d", i+1)
	}
	assert.True(t, l.Locked())
}

func TestLockout_UnlocksAfterWindow(t *testing.T) {
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewLockout(testConfig(), WithClock(func() time.Time { return current }))

	for i := 0; i < 6; i++ {
		l.Allow()
	}
	assert.True(t, l.Locked())

	// Window elapses: counter resets and attempts pass again.
	current = current.Add(time.Hour + time.Minute)
	assert.False(t, l.Locked())
	assert.True(t, l.Allow())
}

func TestLockout_AttemptsSpreadInsideWindow(t *testing.T) {
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewLockout(testConfig(), WithClock(func() time.Time { return current }))

	for i := 0; i < 4; i++ {
		assert.True(t, l.Allow())
		current = current.Add(10 * time.Minute)
	}

	// Fifth attempt is still inside the rolling window and locks.
	assert.False(t, l.Allow())
}
