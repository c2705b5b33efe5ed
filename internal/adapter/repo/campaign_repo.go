package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"equityfund/internal/domain"
)

// CampaignRepositoryPG implements CampaignRepository using PostgreSQL.
// Allocations and team members are stored as JSONB documents on the campaign
// row; numeric columns travel as text so decimal values never pass through
// floats.
type CampaignRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewCampaignRepository creates a new campaign repo.
func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepositoryPG {
	return &CampaignRepositoryPG{pool: pool}
}

type allocationDoc struct {
	Category    string `json:"category"`
	Percentage  string `json:"percentage"`
	Description string `json:"description,omitempty"`
}

type teamMemberDoc struct {
	Name string `json:"name"`
	Role string `json:"role"`
	Bio  string `json:"bio,omitempty"`
}

// Create inserts a new campaign row.
func (r *CampaignRepositoryPG) Create(ctx context.Context, c *domain.Campaign) error {
	allocations, team, err := encodeCampaignDocs(c)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
INSERT INTO campaigns (id, founder_id, company_name, title, pitch, funding_goal,
                       minimum_investment, discount_rate, valuation_cap, deadline,
                       status, allocations, team, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric, $8::numeric, $9::numeric,
        $10, $11, $12, $13, $14, $15);
`, c.ID, c.FounderID, c.CompanyName, c.Title, c.Pitch, c.FundingGoal.String(),
		c.MinimumInvestment.String(), c.DiscountRate.String(), capString(c.ValuationCap),
		c.Deadline, string(c.Status), allocations, team, c.CreatedAt, c.UpdatedAt)
	return err
}

// Update saves founder edits to an existing campaign.
func (r *CampaignRepositoryPG) Update(ctx context.Context, c *domain.Campaign) error {
	allocations, team, err := encodeCampaignDocs(c)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `
UPDATE campaigns
SET company_name = $2, title = $3, pitch = $4, funding_goal = $5::numeric,
    minimum_investment = $6::numeric, discount_rate = $7::numeric,
    valuation_cap = $8::numeric, deadline = $9, status = $10,
    allocations = $11, team = $12, updated_at = $13
WHERE id = $1;
`, c.ID, c.CompanyName, c.Title, c.Pitch, c.FundingGoal.String(),
		c.MinimumInvestment.String(), c.DiscountRate.String(), capString(c.ValuationCap),
		c.Deadline, string(c.Status), allocations, team, c.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const campaignColumns = `id, founder_id, company_name, title, pitch,
funding_goal::text, minimum_investment::text, discount_rate::text,
valuation_cap::text, deadline, status, allocations, team, created_at, updated_at`

// GetByID loads one campaign.
func (r *CampaignRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Campaign, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+campaignColumns+`
FROM campaigns
WHERE id = $1;
`, id)
	return scanCampaign(row)
}

// ListActive returns currently active campaigns, newest first.
func (r *CampaignRepositoryPG) ListActive(ctx context.Context, limit int) ([]domain.Campaign, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+campaignColumns+`
FROM campaigns
WHERE status = 'active'
ORDER BY created_at DESC
LIMIT $1;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var c domain.Campaign
	var status string
	var goal, minimum, discount string
	var cap *string
	var allocations, team []byte
	err := row.Scan(&c.ID, &c.FounderID, &c.CompanyName, &c.Title, &c.Pitch,
		&goal, &minimum, &discount, &cap, &c.Deadline, &status,
		&allocations, &team, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	c.Status = domain.CampaignStatus(status)
	if c.FundingGoal, err = decimal.NewFromString(goal); err != nil {
		return nil, fmt.Errorf("campaign %s: funding goal: %w", c.ID, err)
	}
	if c.MinimumInvestment, err = decimal.NewFromString(minimum); err != nil {
		return nil, fmt.Errorf("campaign %s: minimum investment: %w", c.ID, err)
	}
	if c.DiscountRate, err = decimal.NewFromString(discount); err != nil {
		return nil, fmt.Errorf("campaign %s: discount rate: %w", c.ID, err)
	}
	if cap != nil {
		v, err := decimal.NewFromString(*cap)
		if err != nil {
			return nil, fmt.Errorf("campaign %s: valuation cap: %w", c.ID, err)
		}
		c.ValuationCap = &v
	}
	if err := decodeCampaignDocs(&c, allocations, team); err != nil {
		return nil, err
	}
	return &c, nil
}

func encodeCampaignDocs(c *domain.Campaign) ([]byte, []byte, error) {
	allocationDocs := make([]allocationDoc, 0, len(c.Allocations))
	for _, a := range c.Allocations {
		allocationDocs = append(allocationDocs, allocationDoc{
			Category:    a.Category,
			Percentage:  a.Percentage.String(),
			Description: a.Description,
		})
	}
	teamDocs := make([]teamMemberDoc, 0, len(c.Team))
	for _, m := range c.Team {
		teamDocs = append(teamDocs, teamMemberDoc{Name: m.Name, Role: m.Role, Bio: m.Bio})
	}
	allocations, err := json.Marshal(allocationDocs)
	if err != nil {
		return nil, nil, err
	}
	team, err := json.Marshal(teamDocs)
	if err != nil {
		return nil, nil, err
	}
	return allocations, team, nil
}

func decodeCampaignDocs(c *domain.Campaign, allocations, team []byte) error {
	var allocationDocs []allocationDoc
	if len(allocations) > 0 {
		if err := json.Unmarshal(allocations, &allocationDocs); err != nil {
			return fmt.Errorf("campaign %s: allocations: %w", c.ID, err)
		}
	}
	for _, d := range allocationDocs {
		percentage, err := decimal.NewFromString(d.Percentage)
		if err != nil {
			return fmt.Errorf("campaign %s: allocation %q: %w", c.ID, d.Category, err)
		}
		c.Allocations = append(c.Allocations, domain.Allocation{
			Category:    d.Category,
			Percentage:  percentage,
			Description: d.Description,
		})
	}
	var teamDocs []teamMemberDoc
	if len(team) > 0 {
		if err := json.Unmarshal(team, &teamDocs); err != nil {
			return fmt.Errorf("campaign %s: team: %w", c.ID, err)
		}
	}
	for _, d := range teamDocs {
		c.Team = append(c.Team, domain.TeamMember{Name: d.Name, Role: d.Role, Bio: d.Bio})
	}
	return nil
}

func capString(cap *decimal.Decimal) *string {
	if cap == nil {
		return nil
	}
	s := cap.String()
	return &s
}
