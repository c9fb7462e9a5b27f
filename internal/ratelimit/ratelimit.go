package ratelimit

import (
	"sync"
	"time"

	"property-catalog/internal/config"
)

// RateLimiter enforces per-client sliding-window limits on write requests
type RateLimiter struct {
	requestsPerMinute int
	requestsPerHour   int
	enabled           bool

	clients   map[string]*window
	lastSweep time.Time
	now       func() time.Time
	mu        sync.Mutex
}

// window holds the request times of one client
type window struct {
	minute []time.Time
	hour   []time.Time
}

// NewRateLimiter creates a new rate limiter from configuration
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: cfg.RequestsPerMinute,
		requestsPerHour:   cfg.RequestsPerHour,
		enabled:           cfg.Enabled,
		clients:           make(map[string]*window),
		now:               time.Now,
	}
}

// AllowRequest records a request for key and reports whether it is within limits
func (rl *RateLimiter) AllowRequest(key string) bool {
	if !rl.enabled {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= time.Minute {
		rl.evictIdle(now)
	}
	w := rl.window(key)
	w.cleanup(now)

	if rl.requestsPerMinute > 0 && len(w.minute) >= rl.requestsPerMinute {
		return false
	}
	if rl.requestsPerHour > 0 && len(w.hour) >= rl.requestsPerHour {
		return false
	}

	w.minute = append(w.minute, now)
	w.hour = append(w.hour, now)
	return true
}

func (rl *RateLimiter) window(key string) *window {
	w, ok := rl.clients[key]
	if !ok {
		w = &window{}
		rl.clients[key] = w
	}
	return w
}

// evictIdle drops clients with no request inside the hour window
func (rl *RateLimiter) evictIdle(now time.Time) {
	for key, w := range rl.clients {
		w.cleanup(now)
		if w.empty() {
			delete(rl.clients, key)
		}
	}
	rl.lastSweep = now
}

func (w *window) empty() bool {
	return len(w.minute) == 0 && len(w.hour) == 0
}

// cleanup removes expired entries from the time windows
func (w *window) cleanup(now time.Time) {
	w.minute = filterTimes(w.minute, now.Add(-time.Minute))
	w.hour = filterTimes(w.hour, now.Add(-time.Hour))
}

// filterTimes keeps only times after the cutoff
func filterTimes(times []time.Time, cutoff time.Time) []time.Time {
	result := make([]time.Time, 0, len(times))
	for _, t := range times {
		if t.After(cutoff) {
			result = append(result, t)
		}
	}
	return result
}

// GetStats returns the current statistics for key
func (rl *RateLimiter) GetStats(key string) Stats {
	if !rl.enabled {
		return Stats{Enabled: false}
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.clients[key]
	if !ok {
		w = &window{}
	}
	w.cleanup(rl.now())
	if ok && w.empty() {
		delete(rl.clients, key)
	}

	return Stats{
		Enabled:             true,
		RequestsLastMinute:  len(w.minute),
		RequestsLastHour:    len(w.hour),
		LimitPerMinute:      rl.requestsPerMinute,
		LimitPerHour:        rl.requestsPerHour,
		RemainingThisMinute: max(0, rl.requestsPerMinute-len(w.minute)),
		RemainingThisHour:   max(0, rl.requestsPerHour-len(w.hour)),
	}
}

// Stats contains rate limiter statistics
type Stats struct {
	Enabled             bool `json:"enabled"`
	RequestsLastMinute  int  `json:"requests_last_minute"`
	RequestsLastHour    int  `json:"requests_last_hour"`
	LimitPerMinute      int  `json:"limit_per_minute"`
	LimitPerHour        int  `json:"limit_per_hour"`
	RemainingThisMinute int  `json:"remaining_this_minute"`
	RemainingThisHour   int  `json:"remaining_this_hour"`
}

// Reset clears all tracked requests (useful for testing)
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.clients = make(map[string]*window)
}
