package ratelimit

import (
	"testing"
	"time"

	"property-catalog/internal/config"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(perMinute, perHour int) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerMinute: perMinute, RequestsPerHour: perHour})
	rl.now = clock.now
	return rl, clock
}

func TestAllowRequest(t *testing.T) {
	t.Run("minute window", func(t *testing.T) {
		rl, clock := newTestLimiter(2, 100)

		assert.True(t, rl.AllowRequest("a"))
		assert.True(t, rl.AllowRequest("a"))
		assert.False(t, rl.AllowRequest("a"))

		// other clients have their own window
		assert.True(t, rl.AllowRequest("b"))

		clock.advance(61 * time.Second)
		assert.True(t, rl.AllowRequest("a"))
	})

	t.Run("hour window", func(t *testing.T) {
		rl, clock := newTestLimiter(10, 3)

		for i := 0; i < 3; i++ {
			assert.True(t, rl.AllowRequest("a"))
			clock.advance(2 * time.Minute)
		}
		assert.False(t, rl.AllowRequest("a"))

		clock.advance(time.Hour)
		assert.True(t, rl.AllowRequest("a"))
	})

	t.Run("disabled", func(t *testing.T) {
		rl := NewRateLimiter(config.RateLimitConfig{Enabled: false, RequestsPerMinute: 1})
		for i := 0; i < 5; i++ {
			assert.True(t, rl.AllowRequest("a"))
		}
		assert.False(t, rl.GetStats("a").Enabled)
	})
}

func TestGetStatsAndReset(t *testing.T) {
	rl, _ := newTestLimiter(5, 50)
	rl.AllowRequest("a")
	rl.AllowRequest("a")

	stats := rl.GetStats("a")
	assert.True(t, stats.Enabled)
	assert.Equal(t, 2, stats.RequestsLastMinute)
	assert.Equal(t, 3, stats.RemainingThisMinute)
	assert.Equal(t, 48, stats.RemainingThisHour)

	assert.Equal(t, 0, rl.GetStats("unknown").RequestsLastMinute)

	rl.Reset()
	assert.Equal(t, 0, rl.GetStats("a").RequestsLastMinute)
}

func TestIdleClientsAreEvicted(t *testing.T) {
	rl, clock := newTestLimiter(10, 100)

	assert.True(t, rl.AllowRequest("a"))
	assert.True(t, rl.AllowRequest("b"))
	assert.Len(t, rl.clients, 2)

	clock.advance(30 * time.Minute)
	assert.True(t, rl.AllowRequest("b"))

	// a's hour window has expired; b's has not
	clock.advance(31 * time.Minute)
	assert.True(t, rl.AllowRequest("c"))
	assert.NotContains(t, rl.clients, "a")
	assert.Contains(t, rl.clients, "b")
	assert.Contains(t, rl.clients, "c")

	t.Run("stats for an idle client", func(t *testing.T) {
		clock.advance(2 * time.Hour)
		stats := rl.GetStats("b")
		assert.Zero(t, stats.RequestsLastHour)
		assert.NotContains(t, rl.clients, "b")

		stats = rl.GetStats("never-seen")
		assert.Equal(t, 10, stats.RemainingThisMinute)
		assert.NotContains(t, rl.clients, "never-seen")
	})
}
