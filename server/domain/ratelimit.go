package domain

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// GuestLoginThrottle limits guest logins to one per source address per
// window. Entries older than the window are pruned as the map is touched, so
// the table stays bounded by recent activity.
type GuestLoginThrottle struct {
	mu     sync.Mutex
	clk    clock.Clock
	window time.Duration
	last   map[string]time.Time
}

func NewGuestLoginThrottle(clk clock.Clock, window time.Duration) *GuestLoginThrottle {
	return &GuestLoginThrottle{
		clk:    clk,
		window: window,
		last:   make(map[string]time.Time),
	}
}

// Allow reports whether ip may attempt a guest login now.
func (t *GuestLoginThrottle) Allow(ip string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prune()
	stamp, ok := t.last[ip]
	if !ok {
		return true
	}
	return t.clk.Now().Sub(stamp) >= t.window
}

// Record stamps a successful guest login for ip.
func (t *GuestLoginThrottle) Record(ip string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prune()
	t.last[ip] = t.clk.Now()
}

// Window returns the configured cooldown, for error messages.
func (t *GuestLoginThrottle) Window() time.Duration {
	return t.window
}

func (t *GuestLoginThrottle) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.last)
}

func (t *GuestLoginThrottle) prune() {
	now := t.clk.Now()
	for ip, stamp := range t.last {
		if now.Sub(stamp) >= t.window {
			delete(t.last, ip)
		}
	}
}

// ActionLimiter throttles one session's repeated actions (chat, queue). A
// burst of actions is allowed; once the burst is spent, further actions are
// throttled until the session has been quiet for the cooldown.
type ActionLimiter struct {
	mu       sync.Mutex
	clk      clock.Clock
	burst    int
	cooldown time.Duration
	count    int
	lastSeen time.Time
}

func NewActionLimiter(clk clock.Clock, burst int, cooldown time.Duration) *ActionLimiter {
	return &ActionLimiter{clk: clk, burst: burst, cooldown: cooldown}
}

// Throttle records one action and reports whether it should be dropped.
func (l *ActionLimiter) Throttle() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clk.Now()
	if now.Sub(l.lastSeen) >= l.cooldown {
		l.count = 0
	}
	l.count++
	l.lastSeen = now
	return l.count > l.burst
}
