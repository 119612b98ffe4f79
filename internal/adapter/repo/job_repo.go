package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fitserver/internal/domain"
	"fitserver/internal/infra"
	"fitserver/internal/sqlinline"
)

// JobStorePG implements domain.JobStore on Postgres.
type JobStorePG struct {
	sql infra.SQLExecutor
}

func NewJobStore(sql infra.SQLExecutor) *JobStorePG {
	return &JobStorePG{sql: sql}
}

// Create inserts a new queued job record.
func (r *JobStorePG) Create(ctx context.Context, job *domain.Job) error {
	_, err := r.sql.Exec(ctx, sqlinline.QCreateJob,
		job.ID, job.UserID, job.Kind, job.InputPayload)
	return err
}

// GetByID fetches a job by its identifier.
func (r *JobStorePG) GetByID(ctx context.Context, jobID string) (*domain.Job, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QGetJob, jobID)
	var job domain.Job
	var warnings []byte
	if err := row.Scan(
		&job.ID,
		&job.UserID,
		&job.Kind,
		&job.PromptID,
		&job.InputPayload,
		&job.Status,
		&job.Attempts,
		&job.ResultRef,
		&job.ErrorMessage,
		&warnings,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if len(warnings) > 0 {
		_ = json.Unmarshal(warnings, &job.Warnings)
	}
	return &job, nil
}

// Claim atomically moves the oldest runnable job to processing and stamps
// its lease. The statement uses FOR UPDATE SKIP LOCKED, so of N racing
// workers exactly one scans a row; the rest get ErrNoJobAvailable.
func (r *JobStorePG) Claim(ctx context.Context, lease time.Duration) (*domain.Job, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QClaimJob, lease.Seconds())
	var job domain.Job
	if err := row.Scan(
		&job.ID,
		&job.UserID,
		&job.Kind,
		&job.PromptID,
		&job.InputPayload,
		&job.Status,
		&job.Attempts,
		&job.ResultRef,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNoJobAvailable
		}
		return nil, err
	}
	// Payload bytes must not alias the scan buffer.
	job.InputPayload = append(json.RawMessage(nil), job.InputPayload...)
	return &job, nil
}

// SetPrompt records the prompt resolved for the job at dispatch time.
func (r *JobStorePG) SetPrompt(ctx context.Context, jobID, promptID string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QSetJobPrompt, jobID, promptID)
	return err
}

// Requeue returns a processing job to the queue for a retry.
func (r *JobStorePG) Requeue(ctx context.Context, jobID string, attempts int, errMsg string, backoff time.Duration) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QRequeueJob, jobID, attempts, errMsg, backoff.Seconds())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("requeue job %s: not in processing", jobID)
	}
	return nil
}

// MarkFailed moves a processing job to its terminal failed state.
func (r *JobStorePG) MarkFailed(ctx context.Context, jobID, errMsg string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QFailJob, jobID, errMsg)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("fail job %s: not in processing", jobID)
	}
	return nil
}

// Withdraw cancels a queued job. Once claimed the job runs to completion or
// timeout, so the caller gets ErrAlreadyClaimed instead.
func (r *JobStorePG) Withdraw(ctx context.Context, jobID string) error {
	row := r.sql.QueryRow(ctx, sqlinline.QWithdrawJob, jobID)
	var id string
	if err := row.Scan(&id); err != nil {
		if !infra.IsNoRows(err) {
			return err
		}
		job, getErr := r.GetByID(ctx, jobID)
		if getErr != nil {
			return getErr
		}
		if job.Status == domain.JobStatusQueued {
			return fmt.Errorf("withdraw job %s: race lost", jobID)
		}
		return domain.ErrAlreadyClaimed
	}
	return nil
}

var _ domain.JobStore = (*JobStorePG)(nil)
