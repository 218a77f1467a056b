// Package ratelimit keeps one token bucket per client key.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

type entry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// KeyLimiter rate-limits per key (client address).
type KeyLimiter struct {
	mu    sync.Mutex
	m     map[string]*entry
	r     rate.Limit
	b     int
	clock clockwork.Clock

	trustForwarded bool
}

type Option func(*KeyLimiter)

// TrustForwarded keys requests on the first X-Forwarded-For hop. Only enable
// it behind a proxy that overwrites the header; otherwise clients pick their
// own bucket.
func TrustForwarded() Option {
	return func(kl *KeyLimiter) { kl.trustForwarded = true }
}

func New(reqPerSec float64, burst int, clock clockwork.Clock, opts ...Option) *KeyLimiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	kl := &KeyLimiter{
		m:     make(map[string]*entry),
		r:     rate.Limit(reqPerSec),
		b:     burst,
		clock: clock,
	}
	for _, o := range opts {
		o(kl)
	}
	return kl
}

// Key returns the bucket key for r.
func (kl *KeyLimiter) Key(r *http.Request) string {
	return ClientKey(r, kl.trustForwarded)
}

func (kl *KeyLimiter) limiterFor(key string, now time.Time) *rate.Limiter {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	if e, ok := kl.m[key]; ok {
		e.lastSeen = now
		return e.lim
	}
	e := &entry{lim: rate.NewLimiter(kl.r, kl.b), lastSeen: now}
	kl.m[key] = e
	return e.lim
}

// Allow reports whether one more request from key fits in its bucket.
func (kl *KeyLimiter) Allow(key string) bool {
	now := kl.clock.Now()
	return kl.limiterFor(key, now).AllowN(now, 1)
}

// Prune drops buckets not used for idle and returns how many were dropped.
func (kl *KeyLimiter) Prune(idle time.Duration) int {
	cutoff := kl.clock.Now().Add(-idle)

	kl.mu.Lock()
	defer kl.mu.Unlock()
	n := 0
	for k, e := range kl.m {
		if e.lastSeen.Before(cutoff) {
			delete(kl.m, k)
			n++
		}
	}
	return n
}

func (kl *KeyLimiter) Len() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.m)
}

// ClientKey returns the remote host. With trustForwarded it prefers the first
// X-Forwarded-For hop.
func ClientKey(r *http.Request, trustForwarded bool) string {
	if fwd := r.Header.Get("X-Forwarded-For"); trustForwarded && fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
