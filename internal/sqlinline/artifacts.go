package sqlinline

// Statements below run inside the committer's transaction via infra.SQLText.

const QLockJobForCommit = `--sql 60dab7b0-2b4b-473c-a7f1-975159d99b46
select status, coalesce(result_ref, '')
from ai_jobs
where id = $1
for update;
`

const QCompleteJob = `--sql e723b0a3-5d4d-4970-8f8e-0dc99785c46f
update ai_jobs
set status = 'completed',
    result_ref = $2,
    warnings = $3,
    error = null,
    lease_expires_at = null,
    updated_at = now()
where id = $1;
`

const QInsertWorkoutTemplate = `--sql 73603abb-9951-4e52-b398-bd50e5602f92
insert into workout_templates(id, user_id, title, description, mode, metadata)
values ($1, $2, $3, $4, 'ai', $5);
`

const QGetExerciseByName = `--sql 08fffadc-194a-4d4a-a179-47936879da77
select id from exercises where name = $1 limit 1;
`

const QInsertExercise = `--sql 79b921ad-eb57-4ff0-9a2a-b3fedebe1b10
insert into exercises(id, name) values ($1, $2);
`

const QInsertTemplateExercise = `--sql 58dfb9df-d616-42da-8e53-42ad92f56846
insert into workout_template_exercises(template_id, exercise_id, position, sets, reps, rest_seconds, notes)
values ($1, $2, $3, $4, $5, $6, $7);
`

const QInsertMealPlan = `--sql 4003e9da-d008-40ad-9552-00dfe402c0b3
insert into meal_plans(id, user_id, meals, totals, warnings)
values ($1, $2, $3, $4, $5);
`

const QInsertMacroTargets = `--sql 38afe049-a377-499a-9fb7-2792fe31105c
insert into macro_targets(id, user_id, calories, protein, carbs, fats)
values ($1, $2, $3, $4, $5, $6);
`

const QInsertChatMessage = `--sql 0c04e7c6-1ace-4adb-9325-b7deb7c2d17e
insert into chat_messages(id, thread_id, user_id, role, content, model)
values ($1, $2, $3, 'assistant', $4, $5);
`

const QTouchChatThread = `--sql 2d8b95f1-6f3a-4e5c-9d07-8b44c1a9e6f2
update chat_threads
set last_message_at = now(), updated_at = now()
where id = $1;
`
