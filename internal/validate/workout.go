package validate

import (
	"strings"

	"fitserver/internal/domain"
)

// bannedExerciseNames are placeholder tokens the model sometimes echoes back
// instead of a real exercise. Treated as a content violation, not a schema
// one, so the job gets a single ask-again retry.
var bannedExerciseNames = map[string]struct{}{
	"exercise_name":    {},
	"exercise name":    {},
	"name":             {},
	"tbd":              {},
	"unknown":          {},
	"unknown exercise": {},
	"placeholder":      {},
}

func (v *Validator) validateWorkout(raw string) (*domain.ValidatedOutput, error) {
	var plan domain.WorkoutPlan
	if err := decodeJSON(raw, &plan); err != nil {
		return nil, err
	}
	if strings.TrimSpace(plan.Title) == "" {
		return nil, schemaErr("workout title is required")
	}
	if len(plan.Exercises) == 0 {
		return nil, schemaErr("workout requires at least one exercise")
	}
	for i, ex := range plan.Exercises {
		name := strings.TrimSpace(ex.Name)
		if name == "" {
			return nil, schemaErr("exercise %d: name is required", i)
		}
		if _, banned := bannedExerciseNames[strings.ToLower(name)]; banned {
			return nil, policyErr("exercise %d: placeholder name %q", i, name)
		}
		if ex.Sets <= 0 {
			return nil, schemaErr("exercise %q: sets must be positive", name)
		}
		if _, ok := ex.Reps.Int(); !ok {
			return nil, schemaErr("exercise %q: reps %q is not a count or range", name, ex.Reps)
		}
		if ex.RestSeconds < 0 {
			return nil, schemaErr("exercise %q: rest_seconds must be non-negative", name)
		}
	}
	return &domain.ValidatedOutput{Kind: domain.JobKindWorkout, Workout: &plan}, nil
}
