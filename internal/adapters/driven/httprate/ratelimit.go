// Package httprate provides client-side rate limiting shared by the
// flight and traffic API clients. Both downstream services are used on
// free tiers, so the clients throttle proactively and back off when a
// response says the quota is gone.
package httprate

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/trblackw/teton-tracker-sub001/internal/core/domain"
)

const (
	// HeaderRateRemaining is the remaining requests header.
	HeaderRateRemaining = "X-RateLimit-Remaining"

	// HeaderRateReset is the reset timestamp header (Unix seconds).
	HeaderRateReset = "X-RateLimit-Reset"

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"
)

// Limiter implements dual-strategy rate limiting: a proactive token
// bucket plus reactive tracking of the server's quota headers.
type Limiter struct {
	mu        sync.Mutex
	remaining int
	resetTime time.Time
	bucket    *rate.Limiter
	minBuffer int
}

// NewLimiter creates a limiter throttled to reqPerSec proactively.
// minBuffer is how many remaining requests to hold in reserve before
// waiting for the server's quota reset.
func NewLimiter(reqPerSec float64, minBuffer int) *Limiter {
	return &Limiter{
		remaining: minBuffer + 1, // Assume quota is available initially
		bucket:    rate.NewLimiter(rate.Limit(reqPerSec), 1),
		minBuffer: minBuffer,
	}
}

// Wait blocks until it's safe to make a request.
func (l *Limiter) Wait(ctx context.Context) error {
	// 1. Proactive throttle
	if err := l.bucket.Wait(ctx); err != nil {
		return err
	}

	// 2. Reactive quota check
	l.mu.Lock()
	remaining := l.remaining
	resetTime := l.resetTime
	l.mu.Unlock()

	if remaining < l.minBuffer && time.Now().Before(resetTime) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(resetTime)):
		}
	}

	return nil
}

// UpdateFromResponse updates quota state from response headers.
func (l *Limiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if remaining := resp.Header.Get(HeaderRateRemaining); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			l.remaining = val
		}
	}

	if reset := resp.Header.Get(HeaderRateReset); reset != "" {
		if val, err := strconv.ParseInt(reset, 10, 64); err == nil {
			l.resetTime = time.Unix(val, 0)
		}
	}
}

// CheckResponse updates state from a response and returns
// domain.ErrRateLimited if the server says the quota is exhausted.
func (l *Limiter) CheckResponse(resp *http.Response) error {
	if resp == nil {
		return nil
	}

	l.UpdateFromResponse(resp)

	if resp.StatusCode == http.StatusTooManyRequests {
		resetTime := l.ResetTime()
		if retryAfter := resp.Header.Get(HeaderRetryAfter); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil {
				resetTime = time.Now().Add(time.Duration(seconds) * time.Second)
			}
		}

		l.mu.Lock()
		l.resetTime = resetTime
		l.mu.Unlock()

		return fmt.Errorf("quota exhausted until %s: %w",
			resetTime.Format(time.RFC3339), domain.ErrRateLimited)
	}

	return nil
}

// Remaining returns the last reported remaining requests.
func (l *Limiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remaining
}

// ResetTime returns the last reported quota reset time.
func (l *Limiter) ResetTime() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.resetTime
}
