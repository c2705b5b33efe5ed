package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CampaignStatus enumerates campaign lifecycle states.
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusClosed    CampaignStatus = "closed"
	CampaignStatusFunded    CampaignStatus = "funded"
	CampaignStatusCancelled CampaignStatus = "cancelled"
)

// Allocation is one line of a campaign's use-of-funds breakdown. Percentages
// across a campaign's allocations must sum to exactly 100.
type Allocation struct {
	Category    string
	Percentage  decimal.Decimal
	Description string
}

// TeamMember describes one member of the founding team.
type TeamMember struct {
	Name string
	Role string
	Bio  string
}

// Campaign represents a founder's fundraising campaign. FundingGoal and
// MinimumInvestment are positive currency amounts; DiscountRate is a
// percentage in [0,50]. ValuationCap is nil when the founder did not set one.
type Campaign struct {
	ID                string
	FounderID         string
	CompanyName       string
	Title             string
	Pitch             string
	FundingGoal       decimal.Decimal
	MinimumInvestment decimal.Decimal
	DiscountRate      decimal.Decimal
	ValuationCap      *decimal.Decimal
	Deadline          time.Time
	Status            CampaignStatus
	Allocations       []Allocation
	Team              []TeamMember
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// FundingStats is the derived read model for a campaign's aggregate funding
// state. It is computed from investment records, never stored.
type FundingStats struct {
	TotalRaised     decimal.Decimal `json:"total_raised"`
	InvestorCount   int             `json:"investor_count"`
	ProgressPercent int             `json:"progress_percent"`
}
