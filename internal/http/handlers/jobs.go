package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"fitserver/internal/domain"
)

type submitJobRequest struct {
	Kind  domain.JobKind  `json:"kind"`
	Input json.RawMessage `json:"input"`
}

type jobResponse struct {
	JobID     string    `json:"job_id"`
	Kind      string    `json:"kind"`
	Status    string    `json:"status"`
	Attempts  int       `json:"attempts"`
	ResultRef string    `json:"result_ref,omitempty"`
	Error     string    `json:"error,omitempty"`
	Warnings  []string  `json:"warnings,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toJobResponse(job *domain.Job) jobResponse {
	return jobResponse{
		JobID:     job.ID,
		Kind:      string(job.Kind),
		Status:    string(job.Status),
		Attempts:  job.Attempts,
		ResultRef: job.ResultRef,
		Error:     job.ErrorMessage,
		Warnings:  job.Warnings,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
}

func (a *App) SubmitJob(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req submitJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if !req.Kind.Valid() {
		a.error(w, http.StatusBadRequest, "bad_request", "unknown job kind")
		return
	}
	if err := checkJobInput(req.Kind, req.Input); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	job := &domain.Job{
		ID:           uuid.NewString(),
		UserID:       userID,
		Kind:         req.Kind,
		InputPayload: req.Input,
		Status:       domain.JobStatusQueued,
	}
	if err := a.Jobs.Create(r.Context(), job); err != nil {
		a.Logger.Error().Err(err).Msg("jobs: create failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to enqueue job")
		return
	}
	a.json(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID,
		"status": string(job.Status),
	})
}

func (a *App) GetJob(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	jobID := chi.URLParam(r, "id")
	job, err := a.Jobs.GetByID(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("jobs: get failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return
	}
	if job.UserID != userID {
		a.error(w, http.StatusNotFound, "not_found", "job not found")
		return
	}
	a.json(w, http.StatusOK, toJobResponse(job))
}

func (a *App) WithdrawJob(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	jobID := chi.URLParam(r, "id")
	job, err := a.Jobs.GetByID(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("jobs: get failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return
	}
	if job.UserID != userID {
		a.error(w, http.StatusNotFound, "not_found", "job not found")
		return
	}
	if err := a.Jobs.Withdraw(r.Context(), jobID); err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyClaimed):
			a.error(w, http.StatusConflict, "conflict", "job is already being processed")
		case errors.Is(err, domain.ErrNotFound):
			a.error(w, http.StatusNotFound, "not_found", "job not found")
		default:
			a.Logger.Error().Err(err).Str("job_id", jobID).Msg("jobs: withdraw failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to withdraw job")
		}
		return
	}
	a.json(w, http.StatusOK, map[string]string{"job_id": jobID, "status": string(domain.JobStatusFailed)})
}

// checkJobInput enforces the per-kind input contract before the job is
// accepted. Failures wrap domain.ErrInvalidInput.
func checkJobInput(kind domain.JobKind, input json.RawMessage) error {
	if len(input) == 0 {
		return fmt.Errorf("%w: input is required", domain.ErrInvalidInput)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(input, &fields); err != nil {
		return fmt.Errorf("%w: input must be a JSON object", domain.ErrInvalidInput)
	}

	switch kind {
	case domain.JobKindMacro:
		return requireFields(fields, "age", "gender", "height_cm", "weight_kg", "goal", "training_days")
	case domain.JobKindWorkout:
		if err := requireFields(fields, "muscle_groups"); err != nil {
			return err
		}
		var groups []string
		if err := json.Unmarshal(fields["muscle_groups"], &groups); err != nil || len(groups) == 0 {
			return fmt.Errorf("%w: muscle_groups must be a non-empty array of strings", domain.ErrInvalidInput)
		}
	case domain.JobKindMealPlan:
		return requireFields(fields, "calories", "protein", "carbs", "fats", "meals_per_day")
	case domain.JobKindChat:
		if err := requireFields(fields, "thread_id", "message"); err != nil {
			return err
		}
		var message string
		if err := json.Unmarshal(fields["message"], &message); err != nil || strings.TrimSpace(message) == "" {
			return fmt.Errorf("%w: message must be a non-empty string", domain.ErrInvalidInput)
		}
	}
	return nil
}

func requireFields(fields map[string]json.RawMessage, names ...string) error {
	missing := make([]string, 0, len(names))
	for _, name := range names {
		if raw, ok := fields[name]; !ok || string(raw) == "null" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}
