package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexString decodes from either a JSON string or a JSON number. Models
// return reps as 10 or "8-10" and item quantities as 2 or "2"; both forms
// normalize to the string representation.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	if trimmed == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", trimmed)
	}
	*f = FlexString(n.String())
	return nil
}

// Int parses the value as an integer, taking the lower bound of a range
// such as "8-10".
func (f FlexString) Int() (int, bool) {
	s := string(f)
	if i := strings.IndexAny(s, "-–"); i > 0 {
		s = s[:i]
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}

// Macros is the four-field macro quantity shared by macro targets, meal
// entries, and daily totals.
type Macros struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fats     int `json:"fats"`
}

// Exercise is one ordered entry of a generated workout.
type Exercise struct {
	Name        string     `json:"name"`
	Sets        int        `json:"sets"`
	Reps        FlexString `json:"reps"`
	RestSeconds int        `json:"rest_seconds"`
	Notes       string     `json:"notes,omitempty"`
}

// WorkoutPlan is the validated output of a workout_generation job.
type WorkoutPlan struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Exercises   []Exercise `json:"exercises"`
}

// MealItem is a single food entry inside a meal.
type MealItem struct {
	Name string     `json:"name"`
	Qty  FlexString `json:"qty"`
	Unit string     `json:"unit"`
}

// Meal is one macro-annotated meal of a plan.
type Meal struct {
	Name   string     `json:"name"`
	Macros Macros     `json:"macros"`
	Items  []MealItem `json:"items"`
}

// MealPlan is the validated output of a meal_plan_generation job.
type MealPlan struct {
	Meals  []Meal `json:"meals"`
	Totals Macros `json:"totals"`
}

// ChatReply is the validated output of a coach_chat job.
type ChatReply struct {
	Text string `json:"text"`
}

// ValidatedOutput is the parsed, schema-checked result of a model response.
// Exactly one artifact field is set, matching Kind. It is transient: the
// committer maps it onto domain tables and only a reference survives.
type ValidatedOutput struct {
	Kind     JobKind
	Workout  *WorkoutPlan
	MealPlan *MealPlan
	Macros   *Macros
	Chat     *ChatReply
	Warnings []string
}

// Canonical returns the canonical serialized form of the artifact, suitable
// for feeding back through the validator: JSON for structured kinds, the
// bare reply text for chat. Re-validating this form yields an equivalent
// output.
func (o *ValidatedOutput) Canonical() (string, error) {
	var v any
	switch o.Kind {
	case JobKindWorkout:
		v = o.Workout
	case JobKindMealPlan:
		v = o.MealPlan
	case JobKindMacro:
		v = o.Macros
	case JobKindChat:
		return o.Chat.Text, nil
	default:
		return "", fmt.Errorf("unknown kind %q", o.Kind)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
