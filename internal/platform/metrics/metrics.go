package metrics

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector holds process-wide request and evaluation counters. The zero
// value is not usable; call New.
type Collector struct {
	requests     atomic.Uint64
	clientErrors atomic.Uint64
	serverErrors atomic.Uint64
	rateLimited  atomic.Uint64
	durationMs   atomic.Uint64

	eligibilityFallbacks atomic.Uint64
	submissionsAccepted  atomic.Uint64

	mu       sync.Mutex
	rejected map[string]uint64
}

// Snapshot is the /metrics payload.
type Snapshot struct {
	RequestsTotal               uint64            `json:"requestsTotal"`
	ClientErrorsTotal           uint64            `json:"clientErrorsTotal"`
	ErrorsTotal                 uint64            `json:"errorsTotal"`
	RateLimitedTotal            uint64            `json:"rateLimitedTotal"`
	AvgDurationMs               float64           `json:"avgDurationMs"`
	TotalDurationMs             uint64            `json:"totalDurationMs"`
	EligibilityFallbacksTotal   uint64            `json:"eligibilityFallbacksTotal"`
	SubmissionsAcceptedTotal    uint64            `json:"submissionsAcceptedTotal"`
	SubmissionsRejectedByReason map[string]uint64 `json:"submissionsRejectedByReason"`
}

func New() *Collector {
	return &Collector{rejected: map[string]uint64{}}
}

func (c *Collector) Record(status int, duration time.Duration) {
	c.requests.Add(1)
	switch {
	case status == http.StatusTooManyRequests:
		c.rateLimited.Add(1)
		c.clientErrors.Add(1)
	case status >= 500:
		c.serverErrors.Add(1)
	case status >= 400:
		c.clientErrors.Add(1)
	}
	c.durationMs.Add(uint64(duration.Milliseconds()))
}

func (c *Collector) EligibilityFallback() { c.eligibilityFallbacks.Add(1) }

func (c *Collector) SubmissionAccepted() { c.submissionsAccepted.Add(1) }

// SubmissionRejected counts a refused submission under its reason code.
func (c *Collector) SubmissionRejected(reason string) {
	c.mu.Lock()
	c.rejected[reason]++
	c.mu.Unlock()
}

func (c *Collector) Snapshot() Snapshot {
	snap := Snapshot{
		RequestsTotal:             c.requests.Load(),
		ClientErrorsTotal:         c.clientErrors.Load(),
		ErrorsTotal:               c.serverErrors.Load(),
		RateLimitedTotal:          c.rateLimited.Load(),
		TotalDurationMs:           c.durationMs.Load(),
		EligibilityFallbacksTotal: c.eligibilityFallbacks.Load(),
		SubmissionsAcceptedTotal:  c.submissionsAccepted.Load(),
	}
	if snap.RequestsTotal > 0 {
		snap.AvgDurationMs = float64(snap.TotalDurationMs) / float64(snap.RequestsTotal)
	}

	c.mu.Lock()
	snap.SubmissionsRejectedByReason = make(map[string]uint64, len(c.rejected))
	for reason, n := range c.rejected {
		snap.SubmissionsRejectedByReason[reason] = n
	}
	c.mu.Unlock()
	return snap
}
