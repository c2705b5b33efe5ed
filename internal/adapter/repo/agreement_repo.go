package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"equityfund/internal/domain"
)

// AgreementRepositoryPG implements AgreementRepository using PostgreSQL.
type AgreementRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewAgreementRepository creates a new agreement repo.
func NewAgreementRepository(pool *pgxpool.Pool) *AgreementRepositoryPG {
	return &AgreementRepositoryPG{pool: pool}
}

const agreementColumns = `id, investment_id, agreement_id, investment_amount::text,
discount_rate::text, valuation_cap::text, issue_date, document_text,
investor_signature, founder_signature, status, created_at`

// GetByInvestmentID loads the agreement backing an investment.
func (r *AgreementRepositoryPG) GetByInvestmentID(ctx context.Context, investmentID string) (*domain.SafeAgreement, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+agreementColumns+`
FROM safe_agreements
WHERE investment_id = $1;
`, investmentID)
	return scanAgreement(row)
}

// ListSignedByCampaign returns signed agreements for counted investments in a
// campaign, in issue order.
func (r *AgreementRepositoryPG) ListSignedByCampaign(ctx context.Context, campaignID string) ([]domain.SafeAgreement, error) {
	rows, err := r.pool.Query(ctx, `
SELECT a.id, a.investment_id, a.agreement_id, a.investment_amount::text,
       a.discount_rate::text, a.valuation_cap::text, a.issue_date,
       a.document_text, a.investor_signature, a.founder_signature, a.status,
       a.created_at
FROM safe_agreements a
JOIN investments i ON i.id = a.investment_id
WHERE i.campaign_id = $1
  AND i.status IN ('committed', 'paid', 'completed')
  AND a.status IN ('signed', 'completed')
ORDER BY a.issue_date ASC;
`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.SafeAgreement
	for rows.Next() {
		a, err := scanAgreement(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkSigned stores the investor signature and moves the agreement to signed.
func (r *AgreementRepositoryPG) MarkSigned(ctx context.Context, investmentID, signature string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE safe_agreements
SET investor_signature = $2, status = 'signed'
WHERE investment_id = $1;
`, investmentID, signature)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanAgreement(row pgx.Row) (*domain.SafeAgreement, error) {
	var a domain.SafeAgreement
	var amount, discount, cap string
	var status string
	err := row.Scan(&a.ID, &a.InvestmentID, &a.AgreementID, &amount, &discount,
		&cap, &a.IssueDate, &a.DocumentText, &a.InvestorSignature,
		&a.FounderSignature, &status, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	a.Status = domain.AgreementStatus(status)
	if a.InvestmentAmount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("agreement %s: investment amount: %w", a.AgreementID, err)
	}
	if a.DiscountRate, err = decimal.NewFromString(discount); err != nil {
		return nil, fmt.Errorf("agreement %s: discount rate: %w", a.AgreementID, err)
	}
	if a.ValuationCap, err = decimal.NewFromString(cap); err != nil {
		return nil, fmt.Errorf("agreement %s: valuation cap: %w", a.AgreementID, err)
	}
	return &a, nil
}
