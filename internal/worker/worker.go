// Package worker implements the generation dispatch loop: claim a job,
// resolve and render its prompt, call the model provider, validate the
// response, and commit the result exactly once.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitserver/internal/domain"
	"fitserver/internal/infra"
	"fitserver/internal/validate"
)

// Provider is the model boundary: one bounded call that turns a rendered
// prompt plus the job's input payload into raw response text.
type Provider interface {
	Generate(ctx context.Context, systemPrompt, userContent string) (string, error)
}

// Config carries the dispatch-loop tunables.
type Config struct {
	PollInterval    time.Duration
	Lease           time.Duration
	ProviderTimeout time.Duration
	Retry           RetryPolicy
}

// Worker pulls pending jobs from the shared store. Several workers may run
// concurrently; the store's claim semantics are the only coordination.
type Worker struct {
	cfg       Config
	jobs      domain.JobStore
	prompts   domain.PromptRegistry
	provider  Provider
	validator *validate.Validator
	committer domain.ResultCommitter
	logger    infra.Logger
}

func New(cfg Config, jobs domain.JobStore, prompts domain.PromptRegistry, provider Provider, validator *validate.Validator, committer domain.ResultCommitter, logger infra.Logger) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.Lease <= 0 {
		cfg.Lease = 2 * time.Minute
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = 45 * time.Second
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryPolicy()
	}
	return &Worker{
		cfg:       cfg,
		jobs:      jobs,
		prompts:   prompts,
		provider:  provider,
		validator: validator,
		committer: committer,
		logger:    logger,
	}
}

// Run polls the job store until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Msg("worker: started")
	for {
		job, err := w.jobs.Claim(ctx, w.cfg.Lease)
		if err != nil {
			if !errors.Is(err, domain.ErrNoJobAvailable) {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				w.logger.Error().Err(err).Msg("worker: claim failed")
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.cfg.PollInterval):
			}
			continue
		}
		w.Dispatch(ctx, job)
	}
}

// Dispatch runs one claimed job to a terminal outcome or a requeue. All
// errors are recorded on the job row; none propagate to the caller.
func (w *Worker) Dispatch(ctx context.Context, job *domain.Job) {
	logger := w.logger.With().Str("job_id", job.ID).Str("kind", string(job.Kind)).Logger()
	logger.Info().Int("attempts", job.Attempts).Msg("worker: picked job")

	out, err := w.produce(ctx, job)
	if err != nil {
		w.finalizeFailure(ctx, job, err, logger)
		return
	}

	ref, err := w.committer.Commit(ctx, job, out)
	if err != nil {
		// The job stays in processing; lease reclaim hands it to another
		// worker, and the committer's idempotency makes the replay safe.
		logger.Error().Err(err).Msg("worker: commit failed, leaving job for reclaim")
		return
	}
	logger.Info().Str("result_ref", ref).Msg("worker: job completed")
}

func (w *Worker) produce(ctx context.Context, job *domain.Job) (*domain.ValidatedOutput, error) {
	promptName, ok := domain.PromptNameForKind(job.Kind)
	if !ok {
		return nil, fmt.Errorf("kind %q has no registered prompt: %w", job.Kind, domain.ErrNotFound)
	}

	tpl, err := w.prompts.Resolve(ctx, promptName)
	if err != nil {
		return nil, fmt.Errorf("resolve prompt %q: %w", promptName, err)
	}
	if err := w.jobs.SetPrompt(ctx, job.ID, tpl.ID); err != nil {
		w.logger.Warn().Err(err).Str("job_id", job.ID).Msg("worker: record prompt id failed")
	}

	rendered, err := RenderPrompt(tpl, job.InputPayload)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, w.cfg.ProviderTimeout)
	defer cancel()
	raw, err := w.provider.Generate(callCtx, rendered, string(job.InputPayload))
	if err != nil {
		return nil, err
	}

	out, err := w.validator.Validate(job.Kind, raw)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (w *Worker) finalizeFailure(ctx context.Context, job *domain.Job, cause error, logger infra.Logger) {
	attempts := job.Attempts + 1
	retry := false
	switch classify(cause) {
	case dispRetry:
		retry = attempts < w.cfg.Retry.MaxAttempts
	case dispRetryOnce:
		retry = job.Attempts == 0
	}

	if retry {
		backoff := w.cfg.Retry.Delay(attempts)
		if err := w.jobs.Requeue(ctx, job.ID, attempts, cause.Error(), backoff); err != nil {
			logger.Error().Err(err).Msg("worker: requeue failed")
			return
		}
		logger.Warn().Err(cause).Int("attempts", attempts).Dur("backoff", backoff).Msg("worker: job requeued")
		return
	}

	if err := w.jobs.MarkFailed(ctx, job.ID, failMessage(job.Kind)); err != nil {
		logger.Error().Err(err).Msg("worker: mark failed errored")
		return
	}
	logger.Error().Err(cause).Int("attempts", attempts).Msg("worker: job failed")
}

// failMessage is the stable, kind-appropriate message a failed job exposes
// to callers. Internals stay in the logs.
func failMessage(kind domain.JobKind) string {
	switch kind {
	case domain.JobKindWorkout:
		return "We couldn't build that workout. Please try again."
	case domain.JobKindMealPlan:
		return "We couldn't put your meal plan together. Please try again."
	case domain.JobKindMacro:
		return "We couldn't calculate your macro targets. Please try again."
	case domain.JobKindChat:
		return "Your coach couldn't reply this time. Please try again."
	default:
		return "Generation failed. Please try again."
	}
}
