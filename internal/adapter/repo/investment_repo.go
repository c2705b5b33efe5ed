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

// InvestmentRepositoryPG implements InvestmentRepository using PostgreSQL.
type InvestmentRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewInvestmentRepository creates a new investment repo.
func NewInvestmentRepository(pool *pgxpool.Pool) *InvestmentRepositoryPG {
	return &InvestmentRepositoryPG{pool: pool}
}

// CreateWithAgreement inserts the investment and its draft agreement in one
// transaction. The unique index on idempotency_key makes duplicate submissions
// fail at the insert rather than producing a second investment.
func (r *InvestmentRepositoryPG) CreateWithAgreement(ctx context.Context, inv *domain.Investment, agreement *domain.SafeAgreement) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
INSERT INTO investments (id, campaign_id, investor_id, amount, platform_fee,
                         total_amount, status, payment_status, payment_method,
                         agreement_signed, signed_at, idempotency_key,
                         residency_country, created_at)
VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7, $8, $9,
        $10, $11, $12, $13, $14);
`, inv.ID, inv.CampaignID, inv.InvestorID, inv.Amount.String(),
		inv.PlatformFee.String(), inv.TotalAmount.String(), string(inv.Status),
		string(inv.PaymentStatus), string(inv.PaymentMethod), inv.AgreementSigned,
		inv.SignedAt, inv.IdempotencyKey, inv.ResidencyCountry, inv.CreatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
INSERT INTO safe_agreements (id, investment_id, agreement_id, investment_amount,
                             discount_rate, valuation_cap, issue_date,
                             document_text, investor_signature,
                             founder_signature, status, created_at)
VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7, $8, $9, $10, $11, $12);
`, agreement.ID, agreement.InvestmentID, agreement.AgreementID,
		agreement.InvestmentAmount.String(), agreement.DiscountRate.String(),
		agreement.ValuationCap.String(), agreement.IssueDate,
		agreement.DocumentText, agreement.InvestorSignature,
		agreement.FounderSignature, string(agreement.Status), agreement.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

const investmentColumns = `id, campaign_id, investor_id, amount::text,
platform_fee::text, total_amount::text, status, payment_status, payment_method,
agreement_signed, signed_at, idempotency_key, residency_country, created_at`

// GetByID loads one investment.
func (r *InvestmentRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Investment, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+investmentColumns+`
FROM investments
WHERE id = $1;
`, id)
	return scanInvestment(row)
}

// GetByIdempotencyKey finds a prior investment created under the same key.
func (r *InvestmentRepositoryPG) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Investment, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+investmentColumns+`
FROM investments
WHERE idempotency_key = $1;
`, key)
	return scanInvestment(row)
}

// ListByCampaign returns every investment in a campaign, oldest first.
func (r *InvestmentRepositoryPG) ListByCampaign(ctx context.Context, campaignID string) ([]domain.Investment, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+investmentColumns+`
FROM investments
WHERE campaign_id = $1
ORDER BY created_at ASC;
`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateStatus moves an investment through its lifecycle.
func (r *InvestmentRepositoryPG) UpdateStatus(ctx context.Context, id string, status domain.InvestmentStatus, payment domain.PaymentStatus) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE investments
SET status = $2, payment_status = $3
WHERE id = $1;
`, id, string(status), string(payment))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkSigned records the investor signature timestamp on the investment.
func (r *InvestmentRepositoryPG) MarkSigned(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE investments
SET agreement_signed = TRUE, signed_at = now()
WHERE id = $1;
`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanInvestment(row pgx.Row) (*domain.Investment, error) {
	var inv domain.Investment
	var amount, fee, total string
	var status, payment, method string
	err := row.Scan(&inv.ID, &inv.CampaignID, &inv.InvestorID, &amount, &fee,
		&total, &status, &payment, &method, &inv.AgreementSigned, &inv.SignedAt,
		&inv.IdempotencyKey, &inv.ResidencyCountry, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	inv.Status = domain.InvestmentStatus(status)
	inv.PaymentStatus = domain.PaymentStatus(payment)
	inv.PaymentMethod = domain.PaymentMethod(method)
	if inv.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("investment %s: amount: %w", inv.ID, err)
	}
	if inv.PlatformFee, err = decimal.NewFromString(fee); err != nil {
		return nil, fmt.Errorf("investment %s: platform fee: %w", inv.ID, err)
	}
	if inv.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("investment %s: total amount: %w", inv.ID, err)
	}
	return &inv, nil
}
