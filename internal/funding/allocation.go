package funding

import (
	"strings"

	"github.com/shopspring/decimal"

	"equityfund/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// ValidateAllocations checks a campaign's use-of-funds breakdown. Every named
// category must carry a percentage in [1,100] and the percentages must sum to
// exactly 100. The whole list is validated on every call; there is no
// partial-validity state. Errors name the delta so the founder knows how much
// remains or how far over the breakdown is.
func ValidateAllocations(allocations []domain.Allocation) error {
	if len(allocations) == 0 {
		return domain.NewValidationError("allocations", "at least one use-of-funds category is required")
	}
	sum := decimal.Zero
	for _, a := range allocations {
		if strings.TrimSpace(a.Category) == "" {
			return domain.NewValidationError("allocations", "category name is required")
		}
		if a.Percentage.LessThan(decimal.NewFromInt(1)) || a.Percentage.GreaterThan(hundred) {
			return domain.NewValidationError("allocations",
				"percentage for %q must be between 1 and 100", a.Category)
		}
		sum = sum.Add(a.Percentage)
	}
	switch {
	case sum.LessThan(hundred):
		return domain.NewValidationError("allocations",
			"total percentage must equal 100%%: %s%% remaining", hundred.Sub(sum))
	case sum.GreaterThan(hundred):
		return domain.NewValidationError("allocations",
			"total percentage must equal 100%%: %s%% over", sum.Sub(hundred))
	}
	return nil
}

// ValidateTeam checks the team-structure data supplied when a campaign is
// created or edited. Name and role are required for every member.
func ValidateTeam(team []domain.TeamMember) error {
	for i, m := range team {
		if strings.TrimSpace(m.Name) == "" {
			return domain.NewValidationError("team", "member %d: name is required", i+1)
		}
		if strings.TrimSpace(m.Role) == "" {
			return domain.NewValidationError("team", "member %d: role is required", i+1)
		}
	}
	return nil
}
