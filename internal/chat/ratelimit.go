package chat

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter implements per-user message rate limiting
type RateLimiter struct {
	mu       sync.Mutex
	users    map[string]*userLimit
	config   RateLimitConfig
	stopChan chan struct{}
	stopOnce sync.Once
}

type userLimit struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitConfig configures rate limiting behavior
type RateLimitConfig struct {
	MessagesPerSecond float64
	Burst             int
	// IdleTimeout drops a user's limiter after this long without messages
	IdleTimeout time.Duration
}

// DefaultRateLimitConfig for chat messages
var DefaultRateLimitConfig = RateLimitConfig{
	MessagesPerSecond: 2,
	Burst:             5,
	IdleTimeout:       5 * time.Minute,
}

// NewRateLimiter creates a new rate limiter and starts its cleanup goroutine
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultRateLimitConfig.IdleTimeout
	}
	rl := &RateLimiter{
		users:    make(map[string]*userLimit),
		config:   cfg,
		stopChan: make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Allow checks if a user can send another message
func (rl *RateLimiter) Allow(username string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	u, ok := rl.users[username]
	if !ok {
		u = &userLimit{
			limiter: rate.NewLimiter(rate.Limit(rl.config.MessagesPerSecond), rl.config.Burst),
		}
		rl.users[username] = u
	}
	u.lastSeen = now
	return u.limiter.AllowN(now, 1)
}

// Stop ends the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopChan)
	})
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopChan:
			return
		case <-ticker.C:
			rl.cleanup(time.Now())
		}
	}
}

func (rl *RateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-rl.config.IdleTimeout)
	for name, u := range rl.users {
		if u.lastSeen.Before(cutoff) {
			delete(rl.users, name)
		}
	}
}
