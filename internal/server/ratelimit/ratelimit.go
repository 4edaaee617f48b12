// Package ratelimit bounds how often a client may start pipeline jobs,
// using a token bucket per client.
package ratelimit

import (
	"sync"
	"time"
)

// Config controls the limiter. Each job ties up a download, an inference
// pass, and an encode, so the defaults are deliberately low.
type Config struct {
	Enabled    bool
	Capacity   int     // burst capacity (tokens)
	RefillRate float64 // tokens per second
}

// DefaultConfig allows short bursts while keeping sustained throughput to a
// few jobs per minute per client.
func DefaultConfig() Config {
	return Config{Enabled: true, Capacity: 3, RefillRate: 0.05}
}

type bucket struct {
	tokens     float64
	lastRefill time.Time
	lastSeen   time.Time
}

// Limiter manages one token bucket per client identifier.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	cfg     Config
	stop    chan struct{}
	once    sync.Once
}

// NewLimiter creates a Limiter and starts its idle-bucket janitor.
func NewLimiter(cfg Config) *Limiter {
	l := &Limiter{
		buckets: make(map[string]*bucket),
		cfg:     cfg,
		stop:    make(chan struct{}),
	}
	go l.janitor()
	return l
}

// Allow reports whether the client may start another job, consuming a token
// if so.
func (l *Limiter) Allow(clientID string) bool {
	if !l.cfg.Enabled {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.buckets[clientID]
	if !ok {
		b = &bucket{tokens: float64(l.cfg.Capacity), lastRefill: now}
		l.buckets[clientID] = b
	}

	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens = min(float64(l.cfg.Capacity), b.tokens+elapsed*l.cfg.RefillRate)
	b.lastRefill = now
	b.lastSeen = now

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		return true
	}
	return false
}

// Stop terminates the janitor goroutine.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

// janitor drops buckets that have been idle long enough to be full again.
func (l *Limiter) janitor() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-30 * time.Minute)
			l.mu.Lock()
			for id, b := range l.buckets {
				if b.lastSeen.Before(cutoff) {
					delete(l.buckets, id)
				}
			}
			l.mu.Unlock()
		}
	}
}
