package sqlinline

const QSelectIntegrationToken = `--sql 27f33cd4-a906-4ac9-9ec2-e15553c3e2d2
select token
from integration_tokens
where provider = $1::text
order by updated_at desc
limit 1;
`

const QUpsertIntegrationToken = `--sql 4f653ae4-4eb5-4b86-9991-079ceaae9be7
insert into integration_tokens(provider, token, properties, created_at, updated_at)
values ($1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb), now(), now())
on conflict (provider)
do update set token = excluded.token, properties = excluded.properties, updated_at = now();
`
