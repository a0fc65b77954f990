package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// pruneThreshold is the number of tracked clients above which idle entries
// are dropped on the next check.
const pruneThreshold = 1024

// Config interface for rate limiting configuration
type Config interface {
	GetDisableRateLimit() bool
	GetRateLimitInterval() time.Duration
}

// RateLimitResult contains the result of a rate limit check
type RateLimitResult struct {
	ShouldBlock   bool
	RemainingTime time.Duration
	Reason        string
}

// Limiter allows one parse request per client per interval. Each client gets
// a token bucket holding a single token that refills once per interval.
type Limiter struct {
	cfg     Config
	now     func() time.Time
	mu      sync.Mutex
	clients map[string]*rate.Limiter
}

// New creates a limiter
func New(cfg Config) *Limiter {
	return &Limiter{
		cfg:     cfg,
		now:     time.Now,
		clients: make(map[string]*rate.Limiter),
	}
}

// Check records a request from client unless it has to wait. Blocked
// requests do not extend the wait.
func (l *Limiter) Check(client string) RateLimitResult {
	// Never rate limit if rate limiting is disabled
	if l.cfg.GetDisableRateLimit() {
		return RateLimitResult{
			ShouldBlock: false,
			Reason:      "rate_limiting_disabled",
		}
	}

	every := rate.Every(l.cfg.GetRateLimitInterval())
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.clients) > pruneThreshold {
		l.prune(now)
	}

	bucket, ok := l.clients[client]
	if !ok {
		bucket = rate.NewLimiter(every, 1)
		bucket.AllowN(now, 1)
		l.clients[client] = bucket
		return RateLimitResult{
			ShouldBlock: false,
			Reason:      "no_previous_request",
		}
	}
	if bucket.Limit() != every {
		bucket.SetLimitAt(now, every)
	}

	r := bucket.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return RateLimitResult{
			ShouldBlock:   true,
			RemainingTime: delay,
			Reason:        "rate_limit_active",
		}
	}

	return RateLimitResult{
		ShouldBlock: false,
		Reason:      "rate_limit_passed",
	}
}

// Len returns the number of clients currently tracked
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// prune drops clients whose bucket has refilled; a fresh entry behaves the
// same.
func (l *Limiter) prune(now time.Time) {
	for client, bucket := range l.clients {
		if bucket.TokensAt(now) >= 1 {
			delete(l.clients, client)
		}
	}
}
