package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"equityfund/internal/domain"
	"equityfund/internal/funding"
	"equityfund/internal/middleware"
)

type investmentRequest struct {
	CampaignID             string               `json:"campaign_id"`
	Amount                 decimal.Decimal      `json:"amount"`
	PaymentMethod          domain.PaymentMethod `json:"payment_method"`
	DigitalSignature       string               `json:"digital_signature"`
	TermsAccepted          bool                 `json:"terms_accepted"`
	RiskDisclosureAccepted bool                 `json:"risk_disclosure_accepted"`
}

func (a *App) InvestmentsCreate(w http.ResponseWriter, r *http.Request) {
	var req investmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	method := req.PaymentMethod
	if method == "" {
		method = domain.PaymentMethodCard
	}
	result, err := a.Service.CreateInvestment(r.Context(), funding.CreateInvestmentCommand{
		InvestorID:             a.currentUserID(r),
		CampaignID:             req.CampaignID,
		Amount:                 req.Amount,
		PaymentMethod:          method,
		DigitalSignature:       req.DigitalSignature,
		TermsAccepted:          req.TermsAccepted,
		RiskDisclosureAccepted: req.RiskDisclosureAccepted,
		IdempotencyKey:         strings.TrimSpace(r.Header.Get("Idempotency-Key")),
		ResidencyCountry:       middleware.CountryFromContext(r.Context()),
	})
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, investmentResultView(result))
}

func (a *App) InvestmentsGet(w http.ResponseWriter, r *http.Request) {
	investment, err := a.Service.Investment(r.Context(), a.currentUserID(r), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, investmentView(investment))
}

type signRequest struct {
	DigitalSignature string `json:"digital_signature"`
}

func (a *App) InvestmentsSign(w http.ResponseWriter, r *http.Request) {
	var req signRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	result, err := a.Service.Sign(r.Context(), a.currentUserID(r), chi.URLParam(r, "id"), req.DigitalSignature)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, investmentResultView(result))
}

func (a *App) InvestmentsPay(w http.ResponseWriter, r *http.Request) {
	investment, err := a.Service.ConfirmPayment(r.Context(), a.currentUserID(r), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, investmentView(investment))
}

func (a *App) InvestmentsCancel(w http.ResponseWriter, r *http.Request) {
	investment, err := a.Service.Cancel(r.Context(), a.currentUserID(r), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, investmentView(investment))
}

func investmentView(inv *domain.Investment) map[string]any {
	view := map[string]any{
		"id":               inv.ID,
		"campaign_id":      inv.CampaignID,
		"investor_id":      inv.InvestorID,
		"amount":           inv.Amount,
		"platform_fee":     inv.PlatformFee,
		"total_amount":     inv.TotalAmount,
		"status":           inv.Status,
		"payment_status":   inv.PaymentStatus,
		"payment_method":   inv.PaymentMethod,
		"agreement_signed": inv.AgreementSigned,
		"created_at":       inv.CreatedAt,
	}
	if inv.SignedAt != nil {
		view["signed_at"] = *inv.SignedAt
	}
	if inv.ResidencyCountry != "" {
		view["residency_country"] = inv.ResidencyCountry
	}
	return view
}

func investmentResultView(result *funding.InvestmentResult) map[string]any {
	view := investmentView(result.Investment)
	view["agreement"] = agreementView(result.Agreement)
	view["cooling_off_hours"] = int(funding.CoolingOffPeriod.Hours())
	return view
}
