// Package validate checks raw model responses against the per-kind output
// contracts. Validators are pure: they never touch external state.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"fitserver/internal/domain"
)

const (
	DefaultMealTolerancePct = 5
	DefaultCoachMaxWords    = 18
)

// Validator holds the tunable thresholds shared by the per-kind checks.
type Validator struct {
	// MealTolerancePct is the allowed divergence between summed per-meal
	// macros and the stated daily totals before a soft warning is recorded.
	MealTolerancePct float64
	// CoachMaxWords is the word budget for coach chat replies.
	CoachMaxWords int
}

func New() *Validator {
	return &Validator{
		MealTolerancePct: DefaultMealTolerancePct,
		CoachMaxWords:    DefaultCoachMaxWords,
	}
}

// Validate parses and checks raw against the contract for kind. On success
// the returned output carries exactly one artifact plus any soft warnings;
// on failure the error is a *domain.ValidationError.
func (v *Validator) Validate(kind domain.JobKind, raw string) (*domain.ValidatedOutput, error) {
	switch kind {
	case domain.JobKindWorkout:
		return v.validateWorkout(raw)
	case domain.JobKindMealPlan:
		return v.validateMealPlan(raw)
	case domain.JobKindMacro:
		return v.validateMacros(raw)
	case domain.JobKindChat:
		return v.validateChat(raw)
	default:
		return nil, &domain.ValidationError{
			Reason: domain.ReasonSchema,
			Detail: fmt.Sprintf("unsupported kind %q", kind),
		}
	}
}

// decodeJSON extracts and decodes the JSON object embedded in a model
// response. The model is instructed to return JSON only, but the response is
// untrusted free text: code fences and surrounding prose are stripped before
// decoding.
func decodeJSON(raw string, dest any) error {
	body := extractJSON(raw)
	if body == "" {
		return &domain.ValidationError{Reason: domain.ReasonMalformed, Detail: "no JSON object in response"}
	}
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(dest); err != nil {
		return &domain.ValidationError{Reason: domain.ReasonMalformed, Detail: err.Error()}
	}
	return nil
}

// extractJSON returns the outermost {...} of the response, tolerating
// ```json fences and chatter around the object.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func schemaErr(format string, args ...any) *domain.ValidationError {
	return &domain.ValidationError{Reason: domain.ReasonSchema, Detail: fmt.Sprintf(format, args...)}
}

func policyErr(format string, args ...any) *domain.ValidationError {
	return &domain.ValidationError{Reason: domain.ReasonContentPolicy, Detail: fmt.Sprintf(format, args...)}
}
