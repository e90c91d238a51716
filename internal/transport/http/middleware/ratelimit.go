package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"appraisal/internal/transport/http/api"
)

// window is one caller's fixed counting window.
type window struct {
	count int
	reset time.Time
}

type limiter struct {
	limit   int
	period  time.Duration
	now     func() time.Time
	trusted []netip.Prefix

	mu        sync.Mutex
	windows   map[string]*window
	nextSweep time.Time
}

type verdict struct {
	allowed   bool
	remaining int
	resetIn   time.Duration
}

func newLimiter(limit int, period time.Duration, trusted []netip.Prefix) *limiter {
	return &limiter{limit: limit, period: period, now: time.Now, trusted: trusted, windows: map[string]*window{}}
}

// take counts one request against key. Expired windows are dropped at most
// once per period so idle callers do not accumulate.
func (l *limiter) take(key string) verdict {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.nextSweep) {
		for k, win := range l.windows {
			if now.After(win.reset) {
				delete(l.windows, k)
			}
		}
		l.nextSweep = now.Add(l.period)
	}

	win, ok := l.windows[key]
	if !ok || now.After(win.reset) {
		win = &window{reset: now.Add(l.period)}
		l.windows[key] = win
	}
	win.count++
	return verdict{
		allowed:   win.count <= l.limit,
		remaining: max(l.limit-win.count, 0),
		resetIn:   win.reset.Sub(now),
	}
}

func (l *limiter) enforce(w http.ResponseWriter, r *http.Request) bool {
	if l.limit <= 0 {
		return true
	}
	key := callerKey(r, l.trusted)
	v := l.take(key)

	resetSec := ceilSeconds(v.resetIn)
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(v.remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(resetSec))
	if v.allowed {
		return true
	}

	w.Header().Set("Retry-After", strconv.Itoa(max(resetSec, 1)))
	slog.Warn("rate limit exceeded",
		"key", key,
		"method", r.Method,
		"path", r.URL.Path,
		"limit", l.limit,
		"windowSec", int(l.period.Seconds()),
	)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

// RateLimit allows limit requests per period for each caller, keyed by the
// authenticated user and falling back to the client IP. X-Forwarded-For is
// only read when the direct peer falls in trusted. A limit of zero disables it.
func RateLimit(limit int, period time.Duration, trusted []netip.Prefix) func(http.Handler) http.Handler {
	l := newLimiter(limit, period, trusted)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.enforce(w, r) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// MutationRateLimit is RateLimit for writes only; reads always pass.
func MutationRateLimit(limit int, period time.Duration, trusted []netip.Prefix) func(http.Handler) http.Handler {
	l := newLimiter(limit, period, trusted)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isMutation(r.Method) && !l.enforce(w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isMutation(method string) bool {
	return hasBody(method) || method == http.MethodDelete
}

func callerKey(r *http.Request, trusted []netip.Prefix) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.UserID
	}
	return "ip:" + ClientIP(r, trusted)
}

// ClientIP returns the address of the caller. When the direct peer is a
// trusted proxy the X-Forwarded-For chain is walked from the right and the
// first hop outside trusted wins; entries left of it are caller supplied.
func ClientIP(r *http.Request, trusted []netip.Prefix) string {
	peer := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(peer); err == nil && host != "" {
		peer = host
	}
	if !isTrusted(peer, trusted) {
		return peer
	}
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		addr, err := netip.ParseAddr(hop)
		if err != nil {
			// A garbled hop cannot be attributed; stop at the last known proxy.
			return peer
		}
		if !prefixesContain(trusted, addr) {
			return addr.String()
		}
		peer = addr.String()
	}
	return peer
}

func isTrusted(host string, trusted []netip.Prefix) bool {
	if len(trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	return prefixesContain(trusted, addr)
}

func prefixesContain(prefixes []netip.Prefix, addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
