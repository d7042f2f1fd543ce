// Package retrylimit provides adaptive rate limiting and retry for outbound calls.
// Only failures a classifier marks as transient (rate limits, server errors by
// default) are retried; everything else is returned on the first attempt.
//
// Example usage:
//
//	lim := retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5)
//	err := retrylimit.Do(ctx, lim, retrylimit.DefaultRetryConfig(), func() error {
//	    return send()
//	})
package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// =============================================================================
// Limiter
// =============================================================================

// AdaptiveLimiter is a rate limit that rises on success and drops when the remote
// side pushes back. Safe for concurrent use.
type AdaptiveLimiter struct {
	mu        sync.Mutex
	limiter   *rate.Limiter
	minLimit  rate.Limit
	maxLimit  rate.Limit
	stepUp    rate.Limit
	stepDown  float64
	lastError time.Time
	now       func() time.Time
}

// NewAdaptiveLimiter creates a limiter starting at initial requests per second,
// clamped to [min, max]. stepUp is added on success, stepDown multiplies the rate
// on failure (0.5 halves it).
func NewAdaptiveLimiter(initial, min, max, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}
	initial = clamp(initial, min, max)
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, burstFor(initial)),
		minLimit: min,
		maxLimit: max,
		stepUp:   stepUp,
		stepDown: stepDown,
		now:      time.Now,
	}
}

// Wait blocks until a token is available or ctx is done.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success raises the rate, unless the last failure was less than 10 seconds ago.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.now().Sub(a.lastError) > 10*time.Second {
		a.setLimit(a.limiter.Limit() + a.stepUp)
	}
}

// RateLimited lowers the rate after the remote side pushed back.
func (a *AdaptiveLimiter) RateLimited() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastError = a.now()
	a.setLimit(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

// CurrentLimit returns the current requests per second.
func (a *AdaptiveLimiter) CurrentLimit() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return float64(a.limiter.Limit())
}

func (a *AdaptiveLimiter) setLimit(l rate.Limit) {
	l = clamp(l, a.minLimit, a.maxLimit)
	if l != a.limiter.Limit() {
		a.limiter.SetLimit(l)
		a.limiter.SetBurst(burstFor(l))
	}
}

func clamp(l, min, max rate.Limit) rate.Limit {
	if l > max {
		return max
	}
	if l < min {
		return min
	}
	return l
}

func burstFor(l rate.Limit) int {
	return max(1, int(l))
}

// =============================================================================
// Errors
// =============================================================================

// HTTPError is implemented by errors that carry an HTTP status code.
type HTTPError interface {
	error
	StatusCode() int
}

// FatalError stops retries immediately.
type FatalError struct {
	Err error
}

func (f *FatalError) Error() string { return f.Err.Error() }
func (f *FatalError) Unwrap() error { return f.Err }

// StatusFunc extracts an HTTP status code from an error.
type StatusFunc func(error) (int, bool)

// HTTPStatus reads the status of an error chain containing an HTTPError.
func HTTPStatus(err error) (int, bool) {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode(), true
	}
	return 0, false
}

// =============================================================================
// Retry
// =============================================================================

// RetryConfig configures Do.
type RetryConfig struct {
	MaxAttempts    int           // attempts including the first; 0 means 5
	InitialDelay   time.Duration // backoff after the first server error
	MaxDelay       time.Duration
	RateLimitDelay time.Duration // fixed pause after a 429
	Multiplier     float64
	Jitter         bool

	// Status extracts status codes; nil uses HTTPStatus.
	Status StatusFunc
	// OnRetry is called before every retry.
	OnRetry func(attempt int, err error)

	Log zerolog.Logger
}

// DefaultRetryConfig suits interactive chat replies: a few quick attempts.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    5,
		InitialDelay:   250 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		RateLimitDelay: 500 * time.Millisecond,
		Multiplier:     2.0,
		Jitter:         true,
		Log:            zerolog.Nop(),
	}
}

// ErrMaxAttempts is wrapped around the last failure when attempts run out.
var ErrMaxAttempts = errors.New("max attempts exceeded")

// Do runs fn until it succeeds, fails permanently, ctx ends or attempts run out.
// Only 429 and 5xx failures are retried. lim may be nil.
func Do(ctx context.Context, lim *AdaptiveLimiter, cfg RetryConfig, fn func() error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.Status == nil {
		cfg.Status = HTTPStatus
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 1
	}

	delay := cfg.InitialDelay
	var err error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if lim != nil {
			if werr := lim.Wait(ctx); werr != nil {
				return werr
			}
		} else if cerr := ctx.Err(); cerr != nil {
			return cerr
		}

		err = fn()
		if err == nil {
			if lim != nil {
				lim.Success()
			}
			if attempt > 1 {
				cfg.Log.Debug().Int("attempt", attempt).Msg("succeeded after retry")
			}
			return nil
		}

		var fatal *FatalError
		if errors.As(err, &fatal) {
			return err
		}

		code, ok := cfg.Status(err)
		if !ok || !(code == http.StatusTooManyRequests || (code >= 500 && code < 600)) {
			return err
		}
		if attempt == cfg.MaxAttempts {
			break
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}

		wait := cfg.RateLimitDelay
		if code == http.StatusTooManyRequests {
			if lim != nil {
				lim.RateLimited()
			}
			cfg.Log.Warn().Int("attempt", attempt).Float64("limit", currentLimit(lim)).Msg("rate limited")
		} else {
			if lim != nil {
				lim.RateLimited()
			}
			wait = delay
			if cfg.Jitter {
				wait = addJitter(wait)
			}
			cfg.Log.Warn().Err(err).Int("attempt", attempt).Dur("sleep", wait).Msg("server error")

			delay = time.Duration(float64(delay) * cfg.Multiplier)
			if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("%w (%d): %w", ErrMaxAttempts, cfg.MaxAttempts, err)
}

func currentLimit(lim *AdaptiveLimiter) float64 {
	if lim == nil {
		return 0
	}
	return lim.CurrentLimit()
}

// addJitter adds up to 25% random delay.
func addJitter(delay time.Duration) time.Duration {
	if delay < 4 {
		return delay
	}
	return delay + rand.N(delay/4)
}
