package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider re-issues failed calls with exponential backoff and
// jitter, according to retryPolicyFor.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry returns p unchanged unless cfg allows at least two attempts.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	if cfg.MaxAttempts < 2 {
		return p
	}
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) ModelID() string { return r.inner.ModelID() }

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	retriedInvalid := false
	for attempt := 0; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		policy := retryPolicyFor(err)
		last := attempt+1 >= r.config.MaxAttempts
		if last || policy == retryNever || (policy == retryOnce && retriedInvalid) {
			return nil, err
		}
		retriedInvalid = retriedInvalid || policy == retryOnce

		timer := time.NewTimer(r.config.wait(attempt, err))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

type retryPolicy int

const (
	retryAlways retryPolicy = iota
	retryOnce
	retryNever
)

// retryPolicyFor classifies err. Cancellation, truncation, configuration
// and rejected requests are permanent. A malformed reply gets one more
// try. Rate limits, outages and unclassified network errors are transient.
func retryPolicyFor(err error) retryPolicy {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return retryNever
	}
	var (
		maxTok   *ErrMaxTokensExceeded
		cfgErr   *ErrConfiguration
		rejected *ErrRequestRejected
		invalid  *ErrInvalidResponse
	)
	switch {
	case errors.As(err, &maxTok), errors.As(err, &cfgErr), errors.As(err, &rejected):
		return retryNever
	case errors.As(err, &invalid):
		return retryOnce
	}
	return retryAlways
}

// wait is the pause before the attempt after attempt. A rate limit's
// RetryAfter wins; otherwise exponential growth capped at MaxWait, ±20%.
func (c RetryConfig) wait(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	base := math.Min(
		float64(c.InitialWait)*math.Pow(c.Multiplier, float64(attempt)),
		float64(c.MaxWait),
	)
	jittered := base * (0.8 + 0.4*rand.Float64())
	return time.Duration(max(jittered, 0))
}
