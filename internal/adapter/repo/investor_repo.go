package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"equityfund/internal/domain"
)

// InvestorRepositoryPG implements InvestorRepository using PostgreSQL.
type InvestorRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewInvestorRepository creates a new investor repo.
func NewInvestorRepository(pool *pgxpool.Pool) *InvestorRepositoryPG {
	return &InvestorRepositoryPG{pool: pool}
}

// GetByID loads one investor profile.
func (r *InvestorRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Investor, error) {
	var inv domain.Investor
	var kycStatus, kycTier string
	err := r.pool.QueryRow(ctx, `
SELECT id, full_name, email, phone, address, city, state, zip,
       kyc_status, kyc_tier, created_at, updated_at
FROM investors
WHERE id = $1;
`, id).Scan(&inv.ID, &inv.FullName, &inv.Email, &inv.Phone, &inv.Address,
		&inv.City, &inv.State, &inv.Zip, &kycStatus, &kycTier,
		&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	inv.KYCStatus = domain.KYCStatus(kycStatus)
	inv.KYCTier = domain.KYCTier(kycTier)
	return &inv, nil
}

// Upsert writes the investor profile, preserving KYC fields on conflict. KYC
// status and tier are owned by the review workflow, not the details step.
func (r *InvestorRepositoryPG) Upsert(ctx context.Context, inv *domain.Investor) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO investors (id, full_name, email, phone, address, city, state, zip,
                       kyc_status, kyc_tier, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO UPDATE
SET full_name = excluded.full_name, email = excluded.email,
    phone = excluded.phone, address = excluded.address, city = excluded.city,
    state = excluded.state, zip = excluded.zip, updated_at = excluded.updated_at;
`, inv.ID, inv.FullName, inv.Email, inv.Phone, inv.Address, inv.City,
		inv.State, inv.Zip, string(inv.KYCStatus), string(inv.KYCTier),
		inv.CreatedAt, inv.UpdatedAt)
	return err
}
