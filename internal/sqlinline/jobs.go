package sqlinline

const QCreateJob = `--sql fc8102fb-75bd-4634-8cf9-2a9fb57b5784
insert into ai_jobs(id, user_id, kind, input_payload, status, run_after)
values ($1, $2, $3, $4, 'queued', now());
`

const QGetJob = `--sql b316da48-84d5-46ec-a36b-c2d39d3a0081
select id, user_id, kind, coalesce(prompt_id, ''), input_payload, status,
       attempts, coalesce(result_ref, ''), coalesce(error, ''),
       coalesce(warnings, '[]'::jsonb), created_at, updated_at
from ai_jobs
where id = $1;
`

// Claim takes the oldest runnable job with FOR UPDATE SKIP LOCKED so racing
// workers never both win: queued jobs whose retry backoff elapsed, or
// processing jobs whose lease expired (abandoned by a crashed worker).
const QClaimJob = `--sql d1298aab-4c3e-4b2b-b4bb-e70d4a8d8b59
with next_job as (
    select id
    from ai_jobs
    where (status = 'queued' and coalesce(run_after, now()) <= now())
       or (status = 'processing' and lease_expires_at < now())
    order by created_at asc
    for update skip locked
    limit 1
),
claimed as (
    update ai_jobs
    set status = 'processing',
        lease_expires_at = now() + make_interval(secs => $1),
        updated_at = now()
    where id in (select id from next_job)
    returning id, user_id, kind, coalesce(prompt_id, ''), input_payload,
              status, attempts, coalesce(result_ref, ''), coalesce(error, ''),
              created_at, updated_at
)
select * from claimed;
`

const QSetJobPrompt = `--sql 3ef56796-12d2-4ca3-b740-fd588faedda1
update ai_jobs
set prompt_id = $2, updated_at = now()
where id = $1;
`

const QRequeueJob = `--sql d78a5b99-059d-4a8e-a801-1a00a6d2dfa7
update ai_jobs
set status = 'queued',
    attempts = $2,
    error = $3,
    run_after = now() + make_interval(secs => $4),
    lease_expires_at = null,
    updated_at = now()
where id = $1 and status = 'processing';
`

const QFailJob = `--sql 9f2d4be3-5576-4a37-9718-2da3c6b2db1b
update ai_jobs
set status = 'failed',
    error = $2,
    lease_expires_at = null,
    updated_at = now()
where id = $1 and status = 'processing';
`

// Withdraw is honored only while the job is still queued; a claimed job runs
// to completion or timeout.
const QWithdrawJob = `--sql ffd85077-c2be-44b3-aaa9-afbd03a55486
update ai_jobs
set status = 'failed',
    error = 'withdrawn by caller',
    updated_at = now()
where id = $1 and status = 'queued'
returning id;
`
