package domain

import "context"

// CampaignRepository defines access methods for campaigns.
type CampaignRepository interface {
	Create(ctx context.Context, campaign *Campaign) error
	Update(ctx context.Context, campaign *Campaign) error
	GetByID(ctx context.Context, id string) (*Campaign, error)
	ListActive(ctx context.Context, limit int) ([]Campaign, error)
}

// InvestorRepository defines access methods for investor profiles.
type InvestorRepository interface {
	GetByID(ctx context.Context, id string) (*Investor, error)
	Upsert(ctx context.Context, investor *Investor) error
}

// InvestmentRepository handles investment persistence. CreateWithAgreement
// persists the investment and its draft agreement as a single atomic unit so
// an investment never exists without a corresponding agreement.
type InvestmentRepository interface {
	CreateWithAgreement(ctx context.Context, inv *Investment, agreement *SafeAgreement) error
	GetByID(ctx context.Context, id string) (*Investment, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*Investment, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]Investment, error)
	UpdateStatus(ctx context.Context, id string, status InvestmentStatus, payment PaymentStatus) error
	MarkSigned(ctx context.Context, id string) error
}

// AgreementRepository handles SAFE agreement persistence.
type AgreementRepository interface {
	GetByInvestmentID(ctx context.Context, investmentID string) (*SafeAgreement, error)
	ListSignedByCampaign(ctx context.Context, campaignID string) ([]SafeAgreement, error)
	MarkSigned(ctx context.Context, investmentID, signature string) error
}
