package domain

import (
	"context"
	"time"
)

// PromptRegistry stores immutable versioned prompt templates.
type PromptRegistry interface {
	// Resolve returns the latest-created template for name.
	Resolve(ctx context.Context, name string) (*PromptTemplate, error)
	// Get returns the exact (name, version) template.
	Get(ctx context.Context, name, version string) (*PromptTemplate, error)
	// Save persists a template according to its versioning policy.
	Save(ctx context.Context, tpl *PromptTemplate) error
}

// JobStore defines persistence for generation jobs.
type JobStore interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, jobID string) (*Job, error)
	// Claim atomically takes exclusive ownership of the oldest runnable job:
	// a queued job whose backoff has elapsed, or a processing job whose
	// lease expired (worker crash recovery). Returns ErrNoJobAvailable when
	// nothing is runnable.
	Claim(ctx context.Context, lease time.Duration) (*Job, error)
	// SetPrompt records the prompt resolved for the job at dispatch time.
	SetPrompt(ctx context.Context, jobID, promptID string) error
	// Requeue returns a processing job to the queue for a retry, recording
	// the attempt count and last error, runnable after the backoff delay.
	Requeue(ctx context.Context, jobID string, attempts int, errMsg string, backoff time.Duration) error
	// MarkFailed moves a processing job to its terminal failed state.
	MarkFailed(ctx context.Context, jobID, errMsg string) error
	// Withdraw cancels a job that is still queued. Returns ErrAlreadyClaimed
	// once a worker owns it.
	Withdraw(ctx context.Context, jobID string) error
}

// ResultCommitter maps a validated output onto the owning domain tables and
// advances the job to completed in the same transaction. Idempotent with
// respect to the job id.
type ResultCommitter interface {
	Commit(ctx context.Context, job *Job, out *ValidatedOutput) (string, error)
}
