package worker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fitserver/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want disposition
	}{
		{
			"provider error retries",
			&domain.ProviderError{Op: "chat_completion", Err: errors.New("502")},
			dispRetry,
		},
		{
			"wrapped provider error retries",
			errorsJoin(&domain.ProviderError{Op: "chat_completion", Err: errors.New("timeout")}),
			dispRetry,
		},
		{
			"render error fails hard",
			&domain.RenderError{Prompt: "macro_generation", Err: errors.New("missing key")},
			dispFail,
		},
		{
			"malformed output retries",
			&domain.ValidationError{Reason: domain.ReasonMalformed, Detail: "no JSON"},
			dispRetry,
		},
		{
			"schema violation fails hard",
			&domain.ValidationError{Reason: domain.ReasonSchema, Detail: "sets must be positive"},
			dispFail,
		},
		{
			"content policy retries once",
			&domain.ValidationError{Reason: domain.ReasonContentPolicy, Detail: "placeholder name"},
			dispRetryOnce,
		},
		{
			"missing prompt fails hard",
			domain.ErrNotFound,
			dispFail,
		},
		{
			"unknown error fails hard",
			errors.New("boom"),
			dispFail,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classify(tc.err))
		})
	}
}

// errorsJoin wraps err one level deep so errors.As has to unwrap.
func errorsJoin(err error) error {
	return &wrapped{err: err}
}

type wrapped struct{ err error }

func (w *wrapped) Error() string { return "dispatch: " + w.err.Error() }
func (w *wrapped) Unwrap() error { return w.err }

func TestRetryPolicyDelay(t *testing.T) {
	p := RetryPolicy{
		MaxAttempts: 3,
		Backoff:     []time.Duration{5 * time.Second, 15 * time.Second, 30 * time.Second},
	}
	assert.Equal(t, 5*time.Second, p.Delay(1))
	assert.Equal(t, 15*time.Second, p.Delay(2))
	assert.Equal(t, 30*time.Second, p.Delay(3))
	assert.Equal(t, 30*time.Second, p.Delay(7))
	assert.Equal(t, 5*time.Second, p.Delay(0))

	empty := RetryPolicy{MaxAttempts: 2}
	assert.Equal(t, time.Duration(0), empty.Delay(1))
}

func TestBackoffSchedule(t *testing.T) {
	sched := BackoffSchedule(5*time.Second, 4)
	assert.Equal(t, []time.Duration{
		5 * time.Second,
		15 * time.Second,
		30 * time.Second,
		30 * time.Second,
	}, sched)

	assert.Len(t, BackoffSchedule(0, 0), 1)
}
