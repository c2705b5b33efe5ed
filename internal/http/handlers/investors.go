package handlers

import (
	"encoding/json"
	"net/http"

	"equityfund/internal/domain"
)

type investorProfileRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
}

func (a *App) InvestorsMe(w http.ResponseWriter, r *http.Request) {
	investor, err := a.Service.InvestorProfile(r.Context(), a.currentUserID(r))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, investorView(investor))
}

// InvestorsUpsert captures the investor-details step of the flow. KYC fields
// are read-only here; they change through the review workflow.
func (a *App) InvestorsUpsert(w http.ResponseWriter, r *http.Request) {
	var req investorProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	investor := &domain.Investor{
		ID:       a.currentUserID(r),
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		City:     req.City,
		State:    req.State,
		Zip:      req.Zip,
	}
	saved, err := a.Service.SaveInvestorProfile(r.Context(), investor)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, investorView(saved))
}

func investorView(inv *domain.Investor) map[string]any {
	return map[string]any{
		"id":         inv.ID,
		"full_name":  inv.FullName,
		"email":      inv.Email,
		"phone":      inv.Phone,
		"address":    inv.Address,
		"city":       inv.City,
		"state":      inv.State,
		"zip":        inv.Zip,
		"kyc_status": inv.KYCStatus,
		"kyc_tier":   inv.KYCTier,
	}
}
