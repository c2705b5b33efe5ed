package funding

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"equityfund/internal/domain"
)

func allocs(percentages ...int64) []domain.Allocation {
	out := make([]domain.Allocation, 0, len(percentages))
	for i, p := range percentages {
		out = append(out, domain.Allocation{
			Category:   []string{"Product", "Marketing", "Hiring", "Operations", "Legal"}[i%5],
			Percentage: decimal.NewFromInt(p),
		})
	}
	return out
}

func TestValidateAllocationsAcceptsExactHundred(t *testing.T) {
	cases := [][]int64{
		{100},
		{40, 30, 20, 10},
		{50, 50},
		{20, 20, 20, 20, 20},
		{1, 99},
	}
	for _, percentages := range cases {
		if err := ValidateAllocations(allocs(percentages...)); err != nil {
			t.Fatalf("ValidateAllocations(%v) = %v, want nil", percentages, err)
		}
	}
}

func TestValidateAllocationsReportsRemaining(t *testing.T) {
	err := ValidateAllocations(allocs(40, 30, 20, 5))
	if err == nil {
		t.Fatal("expected error for sum below 100")
	}
	if !strings.Contains(err.Error(), "5% remaining") {
		t.Fatalf("error %q should name the 5%% remaining", err)
	}
}

func TestValidateAllocationsReportsOver(t *testing.T) {
	err := ValidateAllocations(allocs(60, 50))
	if err == nil {
		t.Fatal("expected error for sum above 100")
	}
	if !strings.Contains(err.Error(), "10% over") {
		t.Fatalf("error %q should name the 10%% overage", err)
	}
}

func TestValidateAllocationsRejectsBadEntries(t *testing.T) {
	cases := []struct {
		name string
		list []domain.Allocation
	}{
		{"empty list", nil},
		{"missing category", []domain.Allocation{{Category: " ", Percentage: decimal.NewFromInt(100)}}},
		{"zero percentage", []domain.Allocation{
			{Category: "Product", Percentage: decimal.Zero},
			{Category: "Marketing", Percentage: decimal.NewFromInt(100)},
		}},
		{"above hundred entry", []domain.Allocation{{Category: "Product", Percentage: decimal.NewFromInt(120)}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateAllocations(tc.list)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if _, ok := domain.AsValidation(err); !ok {
				t.Fatalf("expected ValidationError, got %T", err)
			}
		})
	}
}

func TestValidateTeam(t *testing.T) {
	ok := []domain.TeamMember{{Name: "Dana Reyes", Role: "CEO"}, {Name: "Sam Ortiz", Role: "CTO", Bio: "ex-infra"}}
	if err := ValidateTeam(ok); err != nil {
		t.Fatalf("ValidateTeam(valid) = %v", err)
	}
	if err := ValidateTeam([]domain.TeamMember{{Name: "", Role: "CEO"}}); err == nil {
		t.Fatal("expected error for missing name")
	}
	if err := ValidateTeam([]domain.TeamMember{{Name: "Dana Reyes"}}); err == nil {
		t.Fatal("expected error for missing role")
	}
}
