// Package sqlinline holds the service's inline SQL. Every statement opens
// with a `--sql <uuid>` marker line consumed by infra.SQLRunner for audit
// logging.
package sqlinline

const QSelectCredential = `--sql 3f2d8c1a-94b7-4e0d-a6c2-51e9f0b73d44
select secret
from credentials
where provider = $1::text
limit 1;
`

const QUpsertCredential = `--sql b7e41f09-2c66-4a8f-9d13-07a5c8e2fb61
insert into credentials (id, provider, secret, created_at, updated_at)
values (gen_random_uuid(), $1::text, $2::text, now(), now())
on conflict (provider) do update set
    secret = excluded.secret,
    updated_at = now();
`

const QDeleteCredential = `--sql 5a90dd37-61b2-4c5e-8f04-c3b1a7e6d208
delete from credentials
where provider = $1::text;
`
