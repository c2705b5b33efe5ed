package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"equityfund/internal/domain"
	"equityfund/internal/funding"
)

type allocationRequest struct {
	Category    string          `json:"category"`
	Percentage  decimal.Decimal `json:"percentage"`
	Description string          `json:"description"`
}

type teamMemberRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
	Bio  string `json:"bio"`
}

type campaignRequest struct {
	CompanyName       string              `json:"company_name"`
	Title             string              `json:"title"`
	Pitch             string              `json:"pitch"`
	FundingGoal       decimal.Decimal     `json:"funding_goal"`
	MinimumInvestment decimal.Decimal     `json:"minimum_investment"`
	DiscountRate      decimal.Decimal     `json:"discount_rate"`
	ValuationCap      *decimal.Decimal    `json:"valuation_cap"`
	Deadline          time.Time           `json:"deadline"`
	Allocations       []allocationRequest `json:"allocations"`
	Team              []teamMemberRequest `json:"team"`
}

func (req campaignRequest) command(founderID string) funding.CreateCampaignCommand {
	cmd := funding.CreateCampaignCommand{
		FounderID:         founderID,
		CompanyName:       req.CompanyName,
		Title:             req.Title,
		Pitch:             req.Pitch,
		FundingGoal:       req.FundingGoal,
		MinimumInvestment: req.MinimumInvestment,
		DiscountRate:      req.DiscountRate,
		ValuationCap:      req.ValuationCap,
		Deadline:          req.Deadline,
	}
	for _, a := range req.Allocations {
		cmd.Allocations = append(cmd.Allocations, domain.Allocation{
			Category:    a.Category,
			Percentage:  a.Percentage,
			Description: a.Description,
		})
	}
	for _, m := range req.Team {
		cmd.Team = append(cmd.Team, domain.TeamMember{Name: m.Name, Role: m.Role, Bio: m.Bio})
	}
	return cmd
}

func (a *App) CampaignsCreate(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	campaign, err := a.Service.CreateCampaign(r.Context(), req.command(a.currentUserID(r)))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, campaignView(campaign))
}

func (a *App) CampaignsUpdate(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	campaignID := chi.URLParam(r, "id")
	campaign, err := a.Service.UpdateCampaign(r.Context(), a.currentUserID(r), campaignID, req.command(a.currentUserID(r)))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, campaignView(campaign))
}

func (a *App) CampaignsGet(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "id")
	campaign, stats, err := a.Service.CampaignWithStats(r.Context(), campaignID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	view := campaignView(campaign)
	view["stats"] = stats
	a.json(w, http.StatusOK, view)
}

func (a *App) CampaignsList(w http.ResponseWriter, r *http.Request) {
	campaigns, err := a.Service.ListActiveCampaigns(r.Context())
	if err != nil {
		a.domainError(w, err)
		return
	}
	items := make([]map[string]any, 0, len(campaigns))
	for i := range campaigns {
		items = append(items, campaignView(&campaigns[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func campaignView(c *domain.Campaign) map[string]any {
	allocations := make([]map[string]any, 0, len(c.Allocations))
	for _, alloc := range c.Allocations {
		allocations = append(allocations, map[string]any{
			"category":    alloc.Category,
			"percentage":  alloc.Percentage,
			"description": alloc.Description,
		})
	}
	team := make([]map[string]any, 0, len(c.Team))
	for _, m := range c.Team {
		team = append(team, map[string]any{"name": m.Name, "role": m.Role, "bio": m.Bio})
	}
	view := map[string]any{
		"id":                 c.ID,
		"founder_id":         c.FounderID,
		"company_name":       c.CompanyName,
		"title":              c.Title,
		"pitch":              c.Pitch,
		"funding_goal":       c.FundingGoal,
		"minimum_investment": c.MinimumInvestment,
		"discount_rate":      c.DiscountRate,
		"deadline":           c.Deadline,
		"status":             c.Status,
		"allocations":        allocations,
		"team":               team,
		"created_at":         c.CreatedAt,
	}
	if c.ValuationCap != nil {
		view["valuation_cap"] = *c.ValuationCap
	}
	return view
}
