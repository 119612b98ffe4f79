package domain

import (
	"encoding/json"
	"time"
)

// JobKind enumerates supported generation job categories.
type JobKind string

const (
	JobKindWorkout  JobKind = "workout"
	JobKindMealPlan JobKind = "meal_plan"
	JobKindMacro    JobKind = "macro"
	JobKindChat     JobKind = "chat"
)

// Valid reports whether the kind is one of the four supported categories.
func (k JobKind) Valid() bool {
	switch k {
	case JobKindWorkout, JobKindMealPlan, JobKindMacro, JobKindChat:
		return true
	}
	return false
}

// promptNames maps each job kind to its registered prompt name.
var promptNames = map[JobKind]string{
	JobKindWorkout:  "workout_generation",
	JobKindMealPlan: "meal_plan_generation",
	JobKindMacro:    "macro_generation",
	JobKindChat:     "coach_chat",
}

// PromptNameForKind returns the prompt name registered for the kind.
func PromptNameForKind(kind JobKind) (string, bool) {
	name, ok := promptNames[kind]
	return name, ok
}

// JobStatus enumerates job lifecycle states. Transitions are monotonic:
// queued -> processing -> completed | failed, with a bounded requeue of
// processing back to queued on transient errors.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further transitions are permitted.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job is one request to produce an AI-generated artifact for a user.
// ResultRef points at the committed domain row and is set if and only if
// the job completed.
type Job struct {
	ID           string
	UserID       string
	Kind         JobKind
	PromptID     string
	InputPayload json.RawMessage
	Status       JobStatus
	Attempts     int
	ResultRef    string
	ErrorMessage string
	Warnings     []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
