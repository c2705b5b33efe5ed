package funding

import (
	"github.com/shopspring/decimal"

	"equityfund/internal/domain"
)

// ComputeStats derives a campaign's funding aggregate from its investment
// records: total raised over the counted status set, distinct investor count,
// and progress toward the funding goal. The aggregate is recomputed on every
// read and never stored, so concurrent writers do not contend on a counter.
func ComputeStats(fundingGoal decimal.Decimal, investments []domain.Investment) domain.FundingStats {
	total := decimal.Zero
	investors := map[string]struct{}{}
	for _, inv := range investments {
		if !inv.Status.Counted() {
			continue
		}
		total = total.Add(inv.Amount)
		investors[inv.InvestorID] = struct{}{}
	}

	progress := 0
	if fundingGoal.IsPositive() {
		progress = int(total.Div(fundingGoal).Mul(hundred).Round(0).IntPart())
	}

	return domain.FundingStats{
		TotalRaised:     total,
		InvestorCount:   len(investors),
		ProgressPercent: progress,
	}
}

// RemainingCapacity returns how much more can be committed before the
// campaign's aggregate reaches its funding goal. Zero or negative means the
// goal is already met.
func RemainingCapacity(fundingGoal decimal.Decimal, investments []domain.Investment) decimal.Decimal {
	stats := ComputeStats(fundingGoal, investments)
	return fundingGoal.Sub(stats.TotalRaised)
}
