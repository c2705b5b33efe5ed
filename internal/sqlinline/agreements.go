package sqlinline

const QWorkerSignedAgreements = `--sql 2daf8286-5d35-473e-99d8-fa3f89e2c06f
select a.agreement_id, a.investment_amount::text, a.document_text
from safe_agreements a
join investments i on i.id = a.investment_id
where i.campaign_id = $1::uuid
  and i.status in ('committed', 'paid', 'completed')
  and a.status in ('signed', 'completed');
`
