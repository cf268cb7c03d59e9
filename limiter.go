package labelpress

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter *rate.Limiter
	seen    time.Time
}

// WriteLimiter caps mutating API calls per client IP with a token bucket per
// IP: max writes in a burst, refilled evenly over window.
type WriteLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time

	stop chan struct{}
	once sync.Once
}

// NewWriteLimiter allows max writes per window for each IP. Call Stop to end
// the background sweep of idle IPs.
func NewWriteLimiter(max int, window time.Duration) *WriteLimiter {
	l := newWriteLimiter(max, window, time.Now)
	go l.sweepLoop()
	return l
}

func newWriteLimiter(max int, window time.Duration, now func() time.Time) *WriteLimiter {
	return &WriteLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(max) / window.Seconds()),
		burst:    max,
		idle:     window,
		now:      now,
		stop:     make(chan struct{}),
	}
}

func (l *WriteLimiter) sweepLoop() {
	ticker := time.NewTicker(l.idle)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

// sweep drops IPs not seen for a full window. Their buckets have refilled, so
// forgetting them changes nothing.
func (l *WriteLimiter) sweep() {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, v := range l.visitors {
		if now.Sub(v.seen) > l.idle {
			delete(l.visitors, ip)
		}
	}
}

// Allow takes a token for ip if one is available. When none is, Allow
// reports how long until the next one is.
func (l *WriteLimiter) Allow(ip string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.seen = now
	l.mu.Unlock()

	r := v.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, l.idle
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Stop ends the sweep goroutine. It is safe to call more than once.
func (l *WriteLimiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

func (l *WriteLimiter) tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}
