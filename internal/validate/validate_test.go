package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitserver/internal/domain"
)

func requireValidationErr(t *testing.T, err error, reason domain.ValidationReason) {
	t.Helper()
	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, reason, valErr.Reason)
}

func TestValidateWorkout(t *testing.T) {
	v := New()

	t.Run("accepts plain json", func(t *testing.T) {
		out, err := v.Validate(domain.JobKindWorkout, `{
			"title": "Push Day",
			"description": "Chest and triceps",
			"exercises": [
				{"name": "Bench Press", "sets": 4, "reps": "8-10", "rest_seconds": 120},
				{"name": "Overhead Press", "sets": 3, "reps": 10, "rest_seconds": 90}
			]
		}`)
		require.NoError(t, err)
		require.NotNil(t, out.Workout)
		assert.Equal(t, domain.JobKindWorkout, out.Kind)
		assert.Equal(t, "Push Day", out.Workout.Title)
		require.Len(t, out.Workout.Exercises, 2)
		assert.Equal(t, domain.FlexString("8-10"), out.Workout.Exercises[0].Reps)
		assert.Equal(t, domain.FlexString("10"), out.Workout.Exercises[1].Reps)
	})

	t.Run("accepts fenced json with prose", func(t *testing.T) {
		raw := "Here is your workout!\n```json\n" +
			`{"title":"Legs","exercises":[{"name":"Squat","sets":5,"reps":5,"rest_seconds":180}]}` +
			"\n```\nEnjoy!"
		out, err := v.Validate(domain.JobKindWorkout, raw)
		require.NoError(t, err)
		assert.Equal(t, "Legs", out.Workout.Title)
	})

	t.Run("placeholder exercise name is a content violation", func(t *testing.T) {
		_, err := v.Validate(domain.JobKindWorkout, `{
			"title": "Push Day",
			"exercises": [{"name": "exercise_name", "sets": 3, "reps": 10, "rest_seconds": 60}]
		}`)
		requireValidationErr(t, err, domain.ReasonContentPolicy)
	})

	t.Run("schema failures", func(t *testing.T) {
		tests := []struct {
			name string
			raw  string
		}{
			{"missing title", `{"exercises":[{"name":"Squat","sets":3,"reps":10,"rest_seconds":60}]}`},
			{"no exercises", `{"title":"Legs","exercises":[]}`},
			{"zero sets", `{"title":"Legs","exercises":[{"name":"Squat","sets":0,"reps":10,"rest_seconds":60}]}`},
			{"unparseable reps", `{"title":"Legs","exercises":[{"name":"Squat","sets":3,"reps":"to failure","rest_seconds":60}]}`},
			{"negative rest", `{"title":"Legs","exercises":[{"name":"Squat","sets":3,"reps":10,"rest_seconds":-5}]}`},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				_, err := v.Validate(domain.JobKindWorkout, tc.raw)
				requireValidationErr(t, err, domain.ReasonSchema)
			})
		}
	})

	t.Run("non-json response is malformed", func(t *testing.T) {
		_, err := v.Validate(domain.JobKindWorkout, "Sorry, I can't help with that.")
		requireValidationErr(t, err, domain.ReasonMalformed)
	})

	t.Run("round trip is stable", func(t *testing.T) {
		out, err := v.Validate(domain.JobKindWorkout, `{"title":"Legs","exercises":[{"name":"Squat","sets":5,"reps":"5","rest_seconds":180}]}`)
		require.NoError(t, err)
		canonical, err := out.Canonical()
		require.NoError(t, err)
		again, err := v.Validate(domain.JobKindWorkout, canonical)
		require.NoError(t, err)
		assert.Equal(t, out.Workout, again.Workout)
	})
}

func TestValidateMealPlan(t *testing.T) {
	v := New()

	const balanced = `{
		"meals": [
			{"name": "Breakfast", "macros": {"calories": 500, "protein": 40, "carbs": 50, "fats": 15}, "items": [{"name": "Oats", "qty": 80, "unit": "g"}]},
			{"name": "Lunch", "macros": {"calories": 700, "protein": 50, "carbs": 70, "fats": 20}, "items": [{"name": "Chicken breast", "qty": "200", "unit": "g"}]},
			{"name": "Dinner", "macros": {"calories": 800, "protein": 60, "carbs": 80, "fats": 25}, "items": [{"name": "Salmon", "qty": 180, "unit": "g"}]}
		],
		"totals": {"calories": 2000, "protein": 150, "carbs": 200, "fats": 60}
	}`

	t.Run("accepts balanced plan without warnings", func(t *testing.T) {
		out, err := v.Validate(domain.JobKindMealPlan, balanced)
		require.NoError(t, err)
		require.NotNil(t, out.MealPlan)
		assert.Empty(t, out.Warnings)
		assert.Len(t, out.MealPlan.Meals, 3)
	})

	t.Run("macro divergence is a soft warning not a rejection", func(t *testing.T) {
		// Meals sum to 1790 kcal against stated totals of 2000: 10.5% off.
		raw := `{
			"meals": [
				{"name": "Breakfast", "macros": {"calories": 500, "protein": 40, "carbs": 50, "fats": 15}, "items": [{"name": "Oats", "qty": 80, "unit": "g"}]},
				{"name": "Lunch", "macros": {"calories": 590, "protein": 50, "carbs": 70, "fats": 20}, "items": [{"name": "Rice bowl", "qty": 1, "unit": "bowl"}]},
				{"name": "Dinner", "macros": {"calories": 700, "protein": 60, "carbs": 80, "fats": 25}, "items": [{"name": "Salmon", "qty": 180, "unit": "g"}]}
			],
			"totals": {"calories": 2000, "protein": 150, "carbs": 200, "fats": 60}
		}`
		out, err := v.Validate(domain.JobKindMealPlan, raw)
		require.NoError(t, err)
		require.NotEmpty(t, out.Warnings)
		assert.True(t, strings.HasPrefix(out.Warnings[0], "calories:"), "warning %q should name the field", out.Warnings[0])
	})

	t.Run("meal count bounds", func(t *testing.T) {
		_, err := v.Validate(domain.JobKindMealPlan, `{"meals": [], "totals": {"calories": 2000, "protein": 150, "carbs": 200, "fats": 60}}`)
		requireValidationErr(t, err, domain.ReasonSchema)
	})

	t.Run("meal missing items", func(t *testing.T) {
		raw := `{
			"meals": [{"name": "Breakfast", "macros": {"calories": 500, "protein": 40, "carbs": 50, "fats": 15}, "items": []}],
			"totals": {"calories": 500, "protein": 40, "carbs": 50, "fats": 15}
		}`
		_, err := v.Validate(domain.JobKindMealPlan, raw)
		requireValidationErr(t, err, domain.ReasonSchema)
	})

	t.Run("round trip is stable", func(t *testing.T) {
		out, err := v.Validate(domain.JobKindMealPlan, balanced)
		require.NoError(t, err)
		canonical, err := out.Canonical()
		require.NoError(t, err)
		again, err := v.Validate(domain.JobKindMealPlan, canonical)
		require.NoError(t, err)
		assert.Equal(t, out.MealPlan, again.MealPlan)
		assert.Equal(t, out.Warnings, again.Warnings)
	})
}

func TestValidateMacros(t *testing.T) {
	v := New()

	t.Run("happy path", func(t *testing.T) {
		out, err := v.Validate(domain.JobKindMacro, `{"calories": 2200, "protein": 160, "carbs": 220, "fats": 70}`)
		require.NoError(t, err)
		require.NotNil(t, out.Macros)
		assert.Equal(t, 2200, out.Macros.Calories)
	})

	t.Run("extraneous keys are ignored", func(t *testing.T) {
		out, err := v.Validate(domain.JobKindMacro, `{"calories": 2200, "protein": 160, "carbs": 220, "fats": 70, "explanation": "based on TDEE"}`)
		require.NoError(t, err)
		assert.Equal(t, 70, out.Macros.Fats)
	})

	t.Run("non-positive field fails", func(t *testing.T) {
		_, err := v.Validate(domain.JobKindMacro, `{"calories": 2200, "protein": 0, "carbs": 220, "fats": 70}`)
		requireValidationErr(t, err, domain.ReasonSchema)
	})

	t.Run("round trip is stable", func(t *testing.T) {
		out, err := v.Validate(domain.JobKindMacro, `{"calories": 2600, "protein": 160, "carbs": 280, "fats": 80}`)
		require.NoError(t, err)
		canonical, err := out.Canonical()
		require.NoError(t, err)
		again, err := v.Validate(domain.JobKindMacro, canonical)
		require.NoError(t, err)
		assert.Equal(t, out.Macros, again.Macros)
	})
}

func TestValidateChat(t *testing.T) {
	v := New()

	t.Run("plain reply passes through", func(t *testing.T) {
		out, err := v.Validate(domain.JobKindChat, "Nice work today. Add one more set next session!")
		require.NoError(t, err)
		require.NotNil(t, out.Chat)
		assert.Equal(t, "Nice work today. Add one more set next session!", out.Chat.Text)
	})

	t.Run("markdown is a content violation", func(t *testing.T) {
		tests := []string{
			"# Your Plan\nDo squats.",
			"- squats\n- lunges",
			"1. Warm up\n2. Lift",
			"Try **heavy** squats.",
			"```\nsquats\n```",
		}
		for _, raw := range tests {
			_, err := v.Validate(domain.JobKindChat, raw)
			requireValidationErr(t, err, domain.ReasonContentPolicy)
		}
	})

	t.Run("long replies are trimmed to the word budget", func(t *testing.T) {
		raw := strings.Repeat("word ", 40)
		out, err := v.Validate(domain.JobKindChat, raw)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(strings.Fields(out.Chat.Text)), DefaultCoachMaxWords)
	})

	t.Run("at most two sentences survive", func(t *testing.T) {
		out, err := v.Validate(domain.JobKindChat, "Great set. Keep going. You got this. One more.")
		require.NoError(t, err)
		assert.Equal(t, "Great set. Keep going.", out.Chat.Text)
	})

	t.Run("empty reply fails", func(t *testing.T) {
		_, err := v.Validate(domain.JobKindChat, "   \n  ")
		requireValidationErr(t, err, domain.ReasonSchema)
	})
}

func TestValidateUnknownKind(t *testing.T) {
	v := New()
	_, err := v.Validate(domain.JobKind("pilates"), "{}")
	var valErr *domain.ValidationError
	require.True(t, errors.As(err, &valErr))
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around object", `Sure! {"a":1} Hope that helps.`, `{"a":1}`},
		{"no object", "no json here", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, extractJSON(tc.raw))
		})
	}
}
