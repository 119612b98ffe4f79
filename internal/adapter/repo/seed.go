package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"fitserver/internal/domain"
)

// seedCatalogue holds the v1 template for each generation kind. A deployment
// normally manages prompts through the admin endpoints; the seed only fills
// gaps so a fresh database can serve jobs immediately.
var seedCatalogue = []domain.PromptTemplate{
	{
		Name:        "workout_generation",
		Version:     "v1",
		Description: "Builds a structured workout from target muscle groups.",
		Policy:      domain.PolicyAppend,
		Template: `You are a strength coach. Build one workout targeting: {{.muscle_groups}}.
Respond with JSON only, no prose, shaped as:
{"title": string, "description": string, "exercises": [{"name": string, "sets": int, "reps": string, "rest_seconds": int, "notes": string}]}
Use real exercise names. 4 to 8 exercises, ordered compound first.`,
	},
	{
		Name:        "meal_plan_generation",
		Version:     "v1",
		Description: "Builds a daily meal plan hitting the user's macro targets.",
		Policy:      domain.PolicyAppend,
		Template: `You are a nutrition coach. Build a one-day meal plan for {{.meals_per_day}} meals
hitting roughly {{.calories}} kcal, {{.protein}}g protein, {{.carbs}}g carbs, {{.fats}}g fat.
Respond with JSON only, shaped as:
{"meals": [{"name": string, "macros": {"calories": int, "protein": int, "carbs": int, "fats": int}, "items": [{"name": string, "qty": number, "unit": string}]}], "totals": {"calories": int, "protein": int, "carbs": int, "fats": int}}
Per-meal macros must sum close to the totals.`,
	},
	{
		Name:        "macro_generation",
		Version:     "v1",
		Description: "Computes daily macro targets from the user's profile.",
		Policy:      domain.PolicyAppend,
		Template: `You are a nutrition coach. Compute daily macro targets for:
age {{.age}}, gender {{.gender}}, height {{.height_cm}} cm, weight {{.weight_kg}} kg,
goal {{.goal}}, training {{.training_days}} days per week.
Respond with JSON only: {"calories": int, "protein": int, "carbs": int, "fats": int}.
All four values must be positive integers.`,
	},
	{
		Name:        "coach_chat",
		Version:     "v1",
		Description: "Short conversational coaching replies.",
		Policy:      domain.PolicyAppend,
		Template: `You are a gym buddy who texts quick, punchy advice.
MAX 18 words. Prefer 1 sentence; 2 sentences allowed only if under 18 words.
No bullet points, lists, headers or markdown. Plain text only.
Only fitness and nutrition topics; politely redirect others.
For injuries: one brief tip, then suggest seeing a professional.
The user says: {{.message}}`,
	},
}

// SeedPrompts inserts the default template for every kind that has no
// registered prompt yet. Existing prompts are never touched. The api and
// worker processes both seed at startup; the check-then-insert race between
// them resolves at the unique index, so the loser treats a duplicate-key
// error as another process having seeded first.
func SeedPrompts(ctx context.Context, prompts domain.PromptRegistry) error {
	for i := range seedCatalogue {
		tpl := seedCatalogue[i]
		_, err := prompts.Resolve(ctx, tpl.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("check prompt %q: %w", tpl.Name, err)
		}
		if err := prompts.Save(ctx, &tpl); err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return fmt.Errorf("seed prompt %q: %w", tpl.Name, err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
