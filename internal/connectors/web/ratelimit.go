package web

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HeaderRetryAfter is the retry-after header (seconds or HTTP date).
const HeaderRetryAfter = "Retry-After"

// MaxPause caps how long a Retry-After header can pause requests.
const MaxPause = 5 * time.Minute

// RateLimiter combines proactive throttling with reactive pauses.
type RateLimiter struct {
	mu         sync.Mutex
	pauseUntil time.Time     // From Retry-After
	bucket     *rate.Limiter // Proactive throttling
	now        func() time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second.
// A non-positive rps disables proactive throttling.
func NewRateLimiter(rps float64) *RateLimiter {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &RateLimiter{
		bucket: rate.NewLimiter(limit, 1),
		now:    time.Now,
	}
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	pauseUntil := r.pauseUntil
	r.mu.Unlock()

	if wait := pauseUntil.Sub(r.now()); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.bucket.Wait(ctx)
}

// Observe updates the pause window from a response.
// Only 429 and 503 responses carrying Retry-After are considered.
func (r *RateLimiter) Observe(status int, header http.Header) {
	if status != http.StatusTooManyRequests && status != http.StatusServiceUnavailable {
		return
	}
	value := header.Get(HeaderRetryAfter)
	if value == "" {
		return
	}

	now := r.now()
	var until time.Time
	if seconds, err := strconv.Atoi(value); err == nil {
		until = now.Add(time.Duration(seconds) * time.Second)
	} else if at, err := http.ParseTime(value); err == nil {
		until = at
	} else {
		return
	}
	if until.Sub(now) > MaxPause {
		until = now.Add(MaxPause)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if until.After(r.pauseUntil) {
		r.pauseUntil = until
	}
}

// PausedUntil returns the end of the current pause window.
func (r *RateLimiter) PausedUntil() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pauseUntil
}
