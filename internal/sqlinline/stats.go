package sqlinline

const QStatsSummary = `--sql f7afce13-4fd3-49c1-8053-8adad3cdc7e4
select
  (select count(*) from campaigns),
  (select count(*) from campaigns where status = 'active'),
  (select count(*) from campaigns where status = 'funded'),
  (select count(*) from investments where status in ('committed', 'paid', 'completed')),
  (select coalesce(sum(amount), 0)::text from investments where status in ('committed', 'paid', 'completed')),
  (select count(*) from investments where created_at > now() - interval '24 hours');
`
