package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowBurstThenDeny(t *testing.T) {
	l := NewLimiter(Config{Enabled: true, Capacity: 3, RefillRate: 0.0})
	defer l.Stop()

	for i := range 3 {
		assert.True(t, l.Allow("client-a"), "request %d within burst", i+1)
	}
	assert.False(t, l.Allow("client-a"), "burst exhausted")
}

func TestAllowTracksClientsIndependently(t *testing.T) {
	l := NewLimiter(Config{Enabled: true, Capacity: 1, RefillRate: 0.0})
	defer l.Stop()

	assert.True(t, l.Allow("client-a"))
	assert.False(t, l.Allow("client-a"))
	assert.True(t, l.Allow("client-b"), "a drained bucket must not affect other clients")
}

func TestAllowRefillsOverTime(t *testing.T) {
	// 100 tokens/s so a few milliseconds of wall time restores the bucket.
	l := NewLimiter(Config{Enabled: true, Capacity: 1, RefillRate: 100.0})
	defer l.Stop()

	assert.True(t, l.Allow("client-a"))
	assert.False(t, l.Allow("client-a"))

	time.Sleep(50 * time.Millisecond)
	assert.True(t, l.Allow("client-a"), "tokens should have refilled")
}

func TestDisabledLimiterAllowsEverything(t *testing.T) {
	l := NewLimiter(Config{Enabled: false, Capacity: 1, RefillRate: 0.0})
	defer l.Stop()

	for range 10 {
		assert.True(t, l.Allow("client-a"))
	}
}

func TestStopIsIdempotent(t *testing.T) {
	l := NewLimiter(DefaultConfig())
	l.Stop()
	l.Stop()
}
