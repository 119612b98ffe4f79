package worker

import (
	"errors"
	"time"

	"fitserver/internal/domain"
)

// RetryPolicy expresses the bounded retry behavior as data rather than
// control flow: how many attempts a job gets and how long each requeue
// waits before becoming runnable again.
type RetryPolicy struct {
	// MaxAttempts bounds total attempts, the first included.
	MaxAttempts int
	// Backoff holds per-retry delays; retries beyond its length reuse the
	// last entry.
	Backoff []time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     []time.Duration{5 * time.Second, 15 * time.Second, 30 * time.Second},
	}
}

// BackoffSchedule derives per-retry delays from a base delay, matching the
// default 1x/3x/6x progression.
func BackoffSchedule(base time.Duration, maxAttempts int) []time.Duration {
	if base <= 0 {
		base = 5 * time.Second
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	multipliers := []time.Duration{1, 3, 6}
	out := make([]time.Duration, 0, maxAttempts)
	for i := 0; i < maxAttempts; i++ {
		m := multipliers[len(multipliers)-1]
		if i < len(multipliers) {
			m = multipliers[i]
		}
		out = append(out, base*m)
	}
	return out
}

// Delay returns the backoff before retry number attempt (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if len(p.Backoff) == 0 {
		return 0
	}
	if attempt < 1 {
		attempt = 1
	}
	if attempt > len(p.Backoff) {
		attempt = len(p.Backoff)
	}
	return p.Backoff[attempt-1]
}

// disposition says what to do with a job after a failed dispatch step.
type disposition int

const (
	// dispFail marks the job failed immediately: hard errors where a retry
	// would reproduce the same outcome.
	dispFail disposition = iota
	// dispRetry requeues up to MaxAttempts: transient provider failures and
	// malformed-but-plausibly-retryable output.
	dispRetry
	// dispRetryOnce grants a single ask-again retry: content-policy
	// rejections.
	dispRetryOnce
)

// classify maps an error from the dispatch pipeline to its retry
// disposition per the error taxonomy.
func classify(err error) disposition {
	var provErr *domain.ProviderError
	if errors.As(err, &provErr) {
		return dispRetry
	}
	var renderErr *domain.RenderError
	if errors.As(err, &renderErr) {
		return dispFail
	}
	var valErr *domain.ValidationError
	if errors.As(err, &valErr) {
		switch valErr.Reason {
		case domain.ReasonMalformed:
			return dispRetry
		case domain.ReasonContentPolicy:
			return dispRetryOnce
		default:
			return dispFail
		}
	}
	if errors.Is(err, domain.ErrNotFound) {
		// Missing prompt: fatal for the job.
		return dispFail
	}
	return dispFail
}
