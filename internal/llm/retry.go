package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// policy is how hard to try for one purpose.
type policy struct {
	// invalidRetries is how many malformed replies are re-asked.
	invalidRetries int
	// growOnTruncation retries a truncated reply with MaxTokens doubled,
	// up to RetryConfig.MaxTokensCeiling.
	growOnTruncation bool
}

// policyFor picks the retry policy for a request purpose. Exams are short
// and cheap to re-ask; a curriculum is long, so a malformed one is re-asked
// once but a truncated one is worth a bigger budget.
func policyFor(purpose string) policy {
	switch purpose {
	case PurposeExam:
		return policy{invalidRetries: 2, growOnTruncation: true}
	case PurposeCurriculum:
		return policy{invalidRetries: 1, growOnTruncation: true}
	default:
		return policy{invalidRetries: 1}
	}
}

// RetryProvider retries transient failures with jittered exponential
// backoff and applies the purpose policy to malformed or truncated replies.
type RetryProvider struct {
	inner Provider
	cfg   RetryConfig
	log   *zap.Logger
	sleep func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps p. A MaxAttempts below 1 means a single attempt.
func WithRetry(p Provider, cfg RetryConfig, log *zap.Logger) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RetryProvider{inner: p, cfg: cfg, log: log, sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	purpose := PurposeFrom(ctx)
	pol := policyFor(purpose)
	invalidLeft := pol.invalidRetries

	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if attempt >= r.cfg.MaxAttempts {
			return nil, err
		}

		wait := time.Duration(0)
		switch classify(err) {
		case failFatal:
			return nil, err
		case failTruncated:
			limit := r.grow(req.MaxTokens)
			if !pol.growOnTruncation || limit <= req.MaxTokens {
				return nil, err
			}
			r.log.Info("llm reply truncated, asking for more tokens",
				zap.String("purpose", purpose),
				zap.Int("max_tokens", req.MaxTokens),
				zap.Int("next_max_tokens", limit))
			req.MaxTokens = limit
			continue
		case failInvalid:
			if invalidLeft == 0 {
				return nil, err
			}
			invalidLeft--
		case failTransient:
			wait = r.backoff(attempt, err)
		}

		r.log.Info("retrying llm request",
			zap.String("purpose", purpose),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
		if wait > 0 {
			if err := r.sleep(ctx, wait); err != nil {
				return nil, err
			}
		}
	}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// grow doubles a token budget, capped at the configured ceiling. A zero
// ceiling disables growth.
func (r *RetryProvider) grow(limit int) int {
	if r.cfg.MaxTokensCeiling <= 0 || limit <= 0 {
		return limit
	}
	return min(limit*2, r.cfg.MaxTokensCeiling)
}

// backoff is the wait before the retry that follows attempt (1-based).
// A rate limit's RetryAfter wins over the computed delay.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.cfg.InitialWait)
	for range attempt - 1 {
		wait *= r.cfg.Multiplier
	}
	wait = min(wait, float64(r.cfg.MaxWait))
	wait *= 0.8 + 0.4*rand.Float64()
	return time.Duration(wait)
}
