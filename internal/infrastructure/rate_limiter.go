package infrastructure

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// UserRateLimiter throttles chat commands per user id.
type UserRateLimiter struct {
	mu       sync.Mutex
	limiters map[int64]*userLimiter
	rate     rate.Limit
	burst    int
}

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewUserRateLimiter creates a limiter allowing r events per second with the
// given burst per user, and starts a background sweep of stale entries.
func NewUserRateLimiter(r rate.Limit, burst int) *UserRateLimiter {
	rl := &UserRateLimiter{
		limiters: make(map[int64]*userLimiter),
		rate:     r,
		burst:    burst,
	}

	go rl.cleanup()

	return rl
}

// Allow reports whether the user may issue another command now.
func (rl *UserRateLimiter) Allow(userID int64) bool {
	rl.mu.Lock()
	entry, exists := rl.limiters[userID]
	if !exists {
		entry = &userLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[userID] = entry
	}
	entry.lastSeen = time.Now()
	rl.mu.Unlock()

	return entry.limiter.Allow()
}

// cleanup removes limiters not used in the last 10 minutes.
func (rl *UserRateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for userID, entry := range rl.limiters {
			if now.Sub(entry.lastSeen) > 10*time.Minute {
				delete(rl.limiters, userID)
			}
		}
		rl.mu.Unlock()
	}
}
