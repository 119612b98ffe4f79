package validate

import (
	"fmt"
	"math"
	"strings"

	"fitserver/internal/domain"
)

const (
	minMealsPerPlan = 1
	maxMealsPerPlan = 6
)

func (v *Validator) validateMealPlan(raw string) (*domain.ValidatedOutput, error) {
	var plan domain.MealPlan
	if err := decodeJSON(raw, &plan); err != nil {
		return nil, err
	}
	if len(plan.Meals) < minMealsPerPlan || len(plan.Meals) > maxMealsPerPlan {
		return nil, schemaErr("meal plan requires %d-%d meals, got %d", minMealsPerPlan, maxMealsPerPlan, len(plan.Meals))
	}
	for i, meal := range plan.Meals {
		if strings.TrimSpace(meal.Name) == "" {
			return nil, schemaErr("meal %d: name is required", i)
		}
		if err := checkMacros(meal.Macros, fmt.Sprintf("meal %q", meal.Name), false); err != nil {
			return nil, err
		}
		if len(meal.Items) == 0 {
			return nil, schemaErr("meal %q: items are required", meal.Name)
		}
		for j, item := range meal.Items {
			if strings.TrimSpace(item.Name) == "" {
				return nil, schemaErr("meal %q item %d: name is required", meal.Name, j)
			}
			if strings.TrimSpace(string(item.Qty)) == "" {
				return nil, schemaErr("meal %q item %q: qty is required", meal.Name, item.Name)
			}
			if strings.TrimSpace(item.Unit) == "" {
				return nil, schemaErr("meal %q item %q: unit is required", meal.Name, item.Name)
			}
		}
	}
	if err := checkMacros(plan.Totals, "totals", false); err != nil {
		return nil, err
	}

	out := &domain.ValidatedOutput{Kind: domain.JobKindMealPlan, MealPlan: &plan}
	out.Warnings = v.toleranceWarnings(&plan)
	return out, nil
}

// toleranceWarnings compares summed per-meal macros against the stated daily
// totals. Divergence beyond the tolerance band is a soft warning recorded
// with the result, never a rejection.
func (v *Validator) toleranceWarnings(plan *domain.MealPlan) []string {
	var sum domain.Macros
	for _, meal := range plan.Meals {
		sum.Calories += meal.Macros.Calories
		sum.Protein += meal.Macros.Protein
		sum.Carbs += meal.Macros.Carbs
		sum.Fats += meal.Macros.Fats
	}
	fields := []struct {
		name   string
		sum    int
		stated int
	}{
		{"calories", sum.Calories, plan.Totals.Calories},
		{"protein", sum.Protein, plan.Totals.Protein},
		{"carbs", sum.Carbs, plan.Totals.Carbs},
		{"fats", sum.Fats, plan.Totals.Fats},
	}
	var warnings []string
	for _, f := range fields {
		if f.stated == 0 {
			if f.sum != 0 {
				warnings = append(warnings, fmt.Sprintf("%s: meals sum to %d but totals state 0", f.name, f.sum))
			}
			continue
		}
		drift := math.Abs(float64(f.sum-f.stated)) / float64(f.stated) * 100
		if drift > v.MealTolerancePct {
			warnings = append(warnings, fmt.Sprintf("%s: meals sum to %d, totals state %d (%.1f%% off)", f.name, f.sum, f.stated, drift))
		}
	}
	return warnings
}

// checkMacros verifies the four macro fields. When positive is set the
// fields must be strictly greater than zero, otherwise non-negative.
func checkMacros(m domain.Macros, scope string, positive bool) error {
	fields := []struct {
		name  string
		value int
	}{
		{"calories", m.Calories},
		{"protein", m.Protein},
		{"carbs", m.Carbs},
		{"fats", m.Fats},
	}
	for _, f := range fields {
		if positive && f.value <= 0 {
			return schemaErr("%s: %s must be positive, got %d", scope, f.name, f.value)
		}
		if !positive && f.value < 0 {
			return schemaErr("%s: %s must be non-negative, got %d", scope, f.name, f.value)
		}
	}
	return nil
}
