package http

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// clientLimiter rate-limits per client IP. Credential endpoints use it to
// slow down password guessing.
type clientLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientEntry
	limit        rate.Limit
	burst        int
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(perMinute int, burst int) *clientLimiter {
	cl := &clientLimiter{
		clients:     make(map[string]*clientEntry),
		limit:       rate.Every(time.Minute / time.Duration(perMinute)),
		burst:       burst,
		stopCleanup: make(chan struct{}),
	}
	go cl.startCleanup()
	return cl
}

// Allow reports whether a request from clientIP may proceed.
func (cl *clientLimiter) Allow(clientIP string) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	entry, ok := cl.clients[clientIP]
	if !ok {
		entry = &clientEntry{limiter: rate.NewLimiter(cl.limit, cl.burst)}
		cl.clients[clientIP] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

// ActiveClients returns how many client entries are currently tracked.
func (cl *clientLimiter) ActiveClients() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.clients)
}

// startCleanup periodically drops entries not seen for a while.
func (cl *clientLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cl.cleanupStaleEntries()
		case <-cl.stopCleanup:
			return
		}
	}
}

func (cl *clientLimiter) cleanupStaleEntries() {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, entry := range cl.clients {
		if entry.lastSeen.Before(cutoff) {
			delete(cl.clients, ip)
		}
	}
}

func (cl *clientLimiter) stop() {
	cl.shutdownOnce.Do(func() {
		close(cl.stopCleanup)
	})
}
