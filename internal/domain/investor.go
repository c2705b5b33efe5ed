package domain

import "time"

// KYCStatus reflects the outcome of the external identity review workflow.
// This service only reads it; approval and rejection are recorded out of band.
type KYCStatus string

const (
	KYCStatusNone     KYCStatus = "none"
	KYCStatusPending  KYCStatus = "pending"
	KYCStatusApproved KYCStatus = "approved"
	KYCStatusRejected KYCStatus = "rejected"
)

// KYCTier is the identity-verification strength an investor has on file.
type KYCTier string

const (
	KYCTierNone KYCTier = ""
	KYCTier1    KYCTier = "tier1"
	KYCTier2    KYCTier = "tier2"
	KYCTier3    KYCTier = "tier3"
)

// Rank orders tiers so gate checks can compare verification strength.
func (t KYCTier) Rank() int {
	switch t {
	case KYCTier1:
		return 1
	case KYCTier2:
		return 2
	case KYCTier3:
		return 3
	default:
		return 0
	}
}

// Investor holds the investor profile captured during the details step plus
// the current identity-verification state.
type Investor struct {
	ID        string
	FullName  string
	Email     string
	Phone     string
	Address   string
	City      string
	State     string
	Zip       string
	KYCStatus KYCStatus
	KYCTier   KYCTier
	CreatedAt time.Time
	UpdatedAt time.Time
}
