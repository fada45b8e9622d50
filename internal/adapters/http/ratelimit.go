package httpadapter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ipLimiter stores per-IP rate limiters with stale-entry cleanup.
type ipLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPLimiter(r rate.Limit, burst int) *ipLimiter {
	ipl := &ipLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     r,
		burst:    burst,
	}
	go ipl.cleanup()
	return ipl
}

func (ipl *ipLimiter) limiterFor(ip string) *rate.Limiter {
	ipl.mu.Lock()
	defer ipl.mu.Unlock()

	entry, ok := ipl.limiters[ip]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(ipl.rate, ipl.burst)}
		ipl.limiters[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

func (ipl *ipLimiter) cleanup() {
	for {
		time.Sleep(5 * time.Minute)
		ipl.mu.Lock()
		for ip, entry := range ipl.limiters {
			if time.Since(entry.lastSeen) > 10*time.Minute {
				delete(ipl.limiters, ip)
			}
		}
		ipl.mu.Unlock()
	}
}
