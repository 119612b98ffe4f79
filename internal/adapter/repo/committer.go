package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"fitserver/internal/domain"
	"fitserver/internal/infra"
	"fitserver/internal/sqlinline"
)

// TxBeginner is the one capability the committer needs from pgxpool.Pool:
// a fresh transaction per commit.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CommitterPG maps a validated output onto the owning domain tables and
// advances the job to completed, all in one transaction. Invoking it twice
// for the same job id is safe: the job row is locked and short-circuited
// once result_ref is set, so a crash-and-replay never duplicates rows.
type CommitterPG struct {
	db    TxBeginner
	model string
}

func NewCommitter(db TxBeginner, model string) *CommitterPG {
	return &CommitterPG{db: db, model: model}
}

func (c *CommitterPG) Commit(ctx context.Context, job *domain.Job, out *domain.ValidatedOutput) (string, error) {
	tx, err := c.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin commit tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var status, existingRef string
	if err := tx.QueryRow(ctx, infra.SQLText(sqlinline.QLockJobForCommit), job.ID).Scan(&status, &existingRef); err != nil {
		if infra.IsNoRows(err) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("lock job %s: %w", job.ID, err)
	}
	if existingRef != "" {
		// Replay of an already committed job.
		return existingRef, nil
	}
	if domain.JobStatus(status) != domain.JobStatusProcessing {
		return "", fmt.Errorf("commit job %s: unexpected status %q", job.ID, status)
	}

	ref, err := c.insertArtifact(ctx, tx, job, out)
	if err != nil {
		return "", err
	}

	warnings, err := json.Marshal(emptyIfNil(out.Warnings))
	if err != nil {
		return "", fmt.Errorf("marshal warnings: %w", err)
	}
	if _, err := tx.Exec(ctx, infra.SQLText(sqlinline.QCompleteJob), job.ID, ref, warnings); err != nil {
		return "", fmt.Errorf("complete job %s: %w", job.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit tx: %w", err)
	}
	return ref, nil
}

func (c *CommitterPG) insertArtifact(ctx context.Context, tx pgx.Tx, job *domain.Job, out *domain.ValidatedOutput) (string, error) {
	switch out.Kind {
	case domain.JobKindWorkout:
		return c.insertWorkout(ctx, tx, job, out.Workout)
	case domain.JobKindMealPlan:
		return c.insertMealPlan(ctx, tx, job, out)
	case domain.JobKindMacro:
		return c.insertMacroTargets(ctx, tx, job, out.Macros)
	case domain.JobKindChat:
		return c.insertChatMessage(ctx, tx, job, out.Chat)
	default:
		return "", fmt.Errorf("unsupported kind %q", out.Kind)
	}
}

func (c *CommitterPG) insertWorkout(ctx context.Context, tx pgx.Tx, job *domain.Job, plan *domain.WorkoutPlan) (string, error) {
	templateID := uuid.NewString()
	metadata, err := json.Marshal(map[string]any{"generated_by": "workout_generation", "job_id": job.ID})
	if err != nil {
		return "", err
	}
	if _, err := tx.Exec(ctx, infra.SQLText(sqlinline.QInsertWorkoutTemplate),
		templateID, job.UserID, plan.Title, plan.Description, metadata); err != nil {
		return "", fmt.Errorf("insert workout template: %w", err)
	}
	for idx, ex := range plan.Exercises {
		exerciseID, err := c.getOrCreateExercise(ctx, tx, ex.Name)
		if err != nil {
			return "", err
		}
		reps, ok := ex.Reps.Int()
		if !ok {
			reps = 10
		}
		if _, err := tx.Exec(ctx, infra.SQLText(sqlinline.QInsertTemplateExercise),
			templateID, exerciseID, idx, ex.Sets, reps, ex.RestSeconds, ex.Notes); err != nil {
			return "", fmt.Errorf("insert template exercise %q: %w", ex.Name, err)
		}
	}
	return "workout_templates/" + templateID, nil
}

func (c *CommitterPG) getOrCreateExercise(ctx context.Context, tx pgx.Tx, name string) (string, error) {
	var id string
	err := tx.QueryRow(ctx, infra.SQLText(sqlinline.QGetExerciseByName), name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !infra.IsNoRows(err) {
		return "", fmt.Errorf("lookup exercise %q: %w", name, err)
	}
	id = uuid.NewString()
	if _, err := tx.Exec(ctx, infra.SQLText(sqlinline.QInsertExercise), id, name); err != nil {
		return "", fmt.Errorf("create exercise %q: %w", name, err)
	}
	return id, nil
}

func (c *CommitterPG) insertMealPlan(ctx context.Context, tx pgx.Tx, job *domain.Job, out *domain.ValidatedOutput) (string, error) {
	plan := out.MealPlan
	planID := uuid.NewString()
	meals, err := json.Marshal(plan.Meals)
	if err != nil {
		return "", err
	}
	totals, err := json.Marshal(plan.Totals)
	if err != nil {
		return "", err
	}
	warnings, err := json.Marshal(emptyIfNil(out.Warnings))
	if err != nil {
		return "", err
	}
	if _, err := tx.Exec(ctx, infra.SQLText(sqlinline.QInsertMealPlan),
		planID, job.UserID, meals, totals, warnings); err != nil {
		return "", fmt.Errorf("insert meal plan: %w", err)
	}
	return "meal_plans/" + planID, nil
}

func (c *CommitterPG) insertMacroTargets(ctx context.Context, tx pgx.Tx, job *domain.Job, m *domain.Macros) (string, error) {
	targetID := uuid.NewString()
	if _, err := tx.Exec(ctx, infra.SQLText(sqlinline.QInsertMacroTargets),
		targetID, job.UserID, m.Calories, m.Protein, m.Carbs, m.Fats); err != nil {
		return "", fmt.Errorf("insert macro targets: %w", err)
	}
	return "macro_targets/" + targetID, nil
}

func (c *CommitterPG) insertChatMessage(ctx context.Context, tx pgx.Tx, job *domain.Job, reply *domain.ChatReply) (string, error) {
	var payload struct {
		ThreadID string `json:"thread_id"`
	}
	if err := json.Unmarshal(job.InputPayload, &payload); err != nil || payload.ThreadID == "" {
		return "", fmt.Errorf("chat job %s: missing thread_id", job.ID)
	}
	messageID := uuid.NewString()
	if _, err := tx.Exec(ctx, infra.SQLText(sqlinline.QInsertChatMessage),
		messageID, payload.ThreadID, job.UserID, reply.Text, c.model); err != nil {
		return "", fmt.Errorf("insert chat message: %w", err)
	}
	if _, err := tx.Exec(ctx, infra.SQLText(sqlinline.QTouchChatThread), payload.ThreadID); err != nil {
		return "", fmt.Errorf("touch chat thread: %w", err)
	}
	return "chat_messages/" + messageID, nil
}

func emptyIfNil(warnings []string) []string {
	if warnings == nil {
		return []string{}
	}
	return warnings
}

var _ domain.ResultCommitter = (*CommitterPG)(nil)
