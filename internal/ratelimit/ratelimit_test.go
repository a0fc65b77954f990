package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestConfig implements the Config interface for testing
type TestConfig struct {
	DisableRateLimit bool
	Interval         time.Duration
}

func (c *TestConfig) GetDisableRateLimit() bool {
	return c.DisableRateLimit
}

func (c *TestConfig) GetRateLimitInterval() time.Duration {
	return c.Interval
}

// newTestLimiter returns a limiter whose clock is advanced by the returned
// function.
func newTestLimiter(cfg Config) (*Limiter, func(time.Duration)) {
	l := New(cfg)
	now := time.Date(2025, 4, 17, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, func(d time.Duration) { now = now.Add(d) }
}

func TestLimiter_Disabled(t *testing.T) {
	l, _ := newTestLimiter(&TestConfig{DisableRateLimit: true, Interval: time.Minute})

	for i := 0; i < 3; i++ {
		result := l.Check("10.0.0.1")
		assert.False(t, result.ShouldBlock)
		assert.Equal(t, "rate_limiting_disabled", result.Reason)
	}
	assert.Zero(t, l.Len())
}

func TestLimiter_Enabled(t *testing.T) {
	l, advance := newTestLimiter(&TestConfig{Interval: 2 * time.Second})

	t.Run("FirstRequest", func(t *testing.T) {
		result := l.Check("10.0.0.1")
		assert.False(t, result.ShouldBlock)
		assert.Equal(t, "no_previous_request", result.Reason)
	})

	t.Run("TooSoon", func(t *testing.T) {
		advance(500 * time.Millisecond)
		result := l.Check("10.0.0.1")
		assert.True(t, result.ShouldBlock)
		assert.Equal(t, "rate_limit_active", result.Reason)
		assert.Equal(t, 1500*time.Millisecond, result.RemainingTime)
	})

	t.Run("BlockedRequestDoesNotExtendWait", func(t *testing.T) {
		advance(time.Second)
		result := l.Check("10.0.0.1")
		assert.True(t, result.ShouldBlock)
		assert.Equal(t, 500*time.Millisecond, result.RemainingTime)
	})

	t.Run("OtherClient", func(t *testing.T) {
		result := l.Check("10.0.0.2")
		assert.False(t, result.ShouldBlock)
	})

	t.Run("AfterInterval", func(t *testing.T) {
		advance(500 * time.Millisecond)
		result := l.Check("10.0.0.1")
		assert.False(t, result.ShouldBlock)
		assert.Equal(t, "rate_limit_passed", result.Reason)
	})
}

func TestLimiter_Prune(t *testing.T) {
	l, advance := newTestLimiter(&TestConfig{Interval: time.Second})

	for i := 0; i <= pruneThreshold; i++ {
		l.Check(fmt.Sprintf("client-%d", i))
	}
	assert.Equal(t, pruneThreshold+1, l.Len())

	advance(2 * time.Second)
	l.Check("late")

	assert.Equal(t, 1, l.Len())
}

func TestLimiter_PruneKeepsWaitingClients(t *testing.T) {
	l, advance := newTestLimiter(&TestConfig{Interval: time.Minute})

	for i := 0; i < pruneThreshold; i++ {
		l.Check(fmt.Sprintf("client-%d", i))
	}
	advance(2 * time.Minute)
	l.Check("recent")
	advance(30 * time.Second)
	l.Check("late")

	assert.Equal(t, 2, l.Len())

	result := l.Check("recent")
	assert.True(t, result.ShouldBlock)
	assert.InDelta(t, float64(30*time.Second), float64(result.RemainingTime), float64(time.Millisecond))
}
