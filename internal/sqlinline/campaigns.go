package sqlinline

const QWorkerClaimExpiredCampaign = `--sql 06724cff-6417-4bc7-a3b3-4fcff07ee0d7
select id, company_name, funding_goal::text
from campaigns
where status = 'active' and deadline < now()
order by deadline
limit 1
for update skip locked;
`

const QWorkerSettleCampaign = `--sql 35574ee8-e537-4aea-a8aa-40ed349e6fa0
update campaigns
set status = $2::text, updated_at = now()
where id = $1::uuid and status = 'active';
`

const QWorkerCampaignRaised = `--sql 28aa4660-ff47-4be3-bc91-2ee26cf4b970
select coalesce(sum(amount), 0)::text
from investments
where campaign_id = $1::uuid and status in ('committed', 'paid', 'completed');
`
