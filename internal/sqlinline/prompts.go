package sqlinline

const QResolveLatestPrompt = `--sql d59ab2e8-76b0-4c66-a276-434b7de708c5
select id, name, version, description, template, versioning_policy, created_at
from ai_prompts
where name = $1
order by created_at desc
limit 1;
`

const QGetPrompt = `--sql 33ecb784-2b68-4e14-9fb5-e6f27f67b9d4
select id, name, version, description, template, versioning_policy, created_at
from ai_prompts
where name = $1 and version = $2
limit 1;
`

const QInsertPrompt = `--sql 6e8acef0-bd8a-4420-99d6-f6d82ca56811
insert into ai_prompts(id, name, version, description, template, versioning_policy)
values ($1, $2, $3, $4, $5, $6);
`

// Overwrite path for prompts whose versioning policy keys uniqueness on name
// alone. Bounded to the latest row for the name in case stray append-policy
// rows share it, and touches created_at so the overwritten row stays latest.
const QOverwritePromptByName = `--sql 93ecd0c8-fd4b-4374-bccd-3f37b0801a05
update ai_prompts
set version = $2,
    description = $3,
    template = $4,
    versioning_policy = $5,
    created_at = now()
where id = (
    select id from ai_prompts
    where name = $1
    order by created_at desc
    limit 1
);
`
