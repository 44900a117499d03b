package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	Allow(chatID int64) bool
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// InMemoryLimiter keeps one token bucket per chat in memory. Buckets idle for
// longer than the configured TTL are dropped on the next Allow call.
type InMemoryLimiter struct {
	chats map[int64]*entry
	mu    sync.Mutex
	r     rate.Limit
	b     int
	ttl   time.Duration
	now   func() time.Time
}

// NewInMemoryLimiter creates a new rate limiter
// Example: NewInMemoryLimiter(1, 5*time.Second, 3) -> allows 1 action every 5 seconds, burst of 3 actions
func NewInMemoryLimiter(requests int, per time.Duration, burst int) *InMemoryLimiter {
	return &InMemoryLimiter{
		chats: make(map[int64]*entry),
		r:     rate.Every(per / time.Duration(requests)),
		b:     burst,
		ttl:   30 * time.Minute,
		now:   time.Now,
	}
}

// Allow checks if a chat is allowed to perform an action
func (l *InMemoryLimiter) Allow(chatID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evictLocked(now)

	e, exists := l.chats[chatID]
	if !exists {
		e = &entry{limiter: rate.NewLimiter(l.r, l.b)}
		l.chats[chatID] = e
	}
	e.lastSeen = now

	return e.limiter.AllowN(now, 1)
}

// Len reports how many chats currently hold a bucket.
func (l *InMemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.chats)
}

func (l *InMemoryLimiter) evictLocked(now time.Time) {
	for id, e := range l.chats {
		if now.Sub(e.lastSeen) > l.ttl {
			delete(l.chats, id)
		}
	}
}

var _ Limiter = (*InMemoryLimiter)(nil)
