package funding

import (
	"fmt"

	"github.com/shopspring/decimal"

	"equityfund/internal/domain"
)

// Tier thresholds on the campaign funding goal, in currency units.
var (
	tier2Floor = decimal.NewFromInt(1_000)
	tier3Floor = decimal.NewFromInt(50_000)
)

// TierFor maps a campaign's funding goal to the identity-verification tier an
// investor must have on file before the payment step: tier1 below $1,000,
// tier2 from $1,000 to $50,000, tier3 above $50,000.
func TierFor(fundingGoal decimal.Decimal) domain.KYCTier {
	switch {
	case fundingGoal.GreaterThan(tier3Floor):
		return domain.KYCTier3
	case fundingGoal.GreaterThanOrEqual(tier2Floor):
		return domain.KYCTier2
	default:
		return domain.KYCTier1
	}
}

// RecommendedDocuments lists the identity documents a reviewer expects for
// the given tier, surfaced to the investor when the gate blocks progression.
func RecommendedDocuments(tier domain.KYCTier) []string {
	switch tier {
	case domain.KYCTier3:
		return []string{"government photo ID", "proof of address", "proof of funds"}
	case domain.KYCTier2:
		return []string{"government photo ID", "proof of address"}
	default:
		return []string{"government photo ID"}
	}
}

// CheckKYC blocks an investment from reaching the payment step unless the
// investor's reviewed verification satisfies the campaign's required tier.
// Approval itself is owned by the external review workflow; this gate only
// reads the result.
func CheckKYC(investor *domain.Investor, campaign *domain.Campaign) error {
	required := TierFor(campaign.FundingGoal)
	if investor.KYCStatus != domain.KYCStatusApproved {
		return &domain.AuthorizationError{
			Reason: fmt.Sprintf("identity verification %s is required before investing; recommended documents: %v",
				required, RecommendedDocuments(required)),
			RequiredTier: required,
		}
	}
	if investor.KYCTier.Rank() < required.Rank() {
		return &domain.AuthorizationError{
			Reason: fmt.Sprintf("verification tier %s on file, but this campaign requires %s; recommended documents: %v",
				investor.KYCTier, required, RecommendedDocuments(required)),
			RequiredTier: required,
		}
	}
	return nil
}
