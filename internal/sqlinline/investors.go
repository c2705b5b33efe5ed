package sqlinline

const QSelectInvestorKYCByID = `--sql 803de2d6-d06d-4a12-8214-2496ac67ced5
select id, email, kyc_status, kyc_tier
from investors
where id = $1::uuid;
`

const QSelectInvestorKYCByEmail = `--sql 69b31deb-a114-45dc-ab03-d9294033e6bf
select id, email, kyc_status, kyc_tier
from investors
where lower(email) = lower($1::text);
`

const QUpdateInvestorKYC = `--sql 3f31d05d-847a-4b82-b407-1ef4377ad591
update investors
set kyc_status = $2::text, kyc_tier = $3::text, updated_at = now()
where id = $1::uuid
returning id, email, kyc_status, kyc_tier;
`
