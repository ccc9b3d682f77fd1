package mockapi

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ipLimiter throttles per client IP, like DRF's AnonRateThrottle.
type ipLimiter struct {
	mu      sync.Mutex
	perMin  int
	clients map[string]*rate.Limiter
}

func newIPLimiter(perMinute int) *ipLimiter {
	return &ipLimiter{perMin: perMinute, clients: map[string]*rate.Limiter{}}
}

// allow reports whether ip may proceed. A non-positive limit disables throttling.
func (l *ipLimiter) allow(ip string) bool {
	if l.perMin <= 0 {
		return true
	}
	l.mu.Lock()
	lim, ok := l.clients[ip]
	if !ok {
		lim = rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMin)), l.perMin)
		l.clients[ip] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}
