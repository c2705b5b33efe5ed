package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"equityfund/internal/sqlinline"
)

func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	row := a.SQL.QueryRow(r.Context(), sqlinline.QStatsSummary)
	var totalCampaigns, activeCampaigns, fundedCampaigns, countedInvestments, last24h int64
	var totalRaised string
	if err := row.Scan(&totalCampaigns, &activeCampaigns, &fundedCampaigns, &countedInvestments, &totalRaised, &last24h); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	raised, err := decimal.NewFromString(totalRaised)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"total_campaigns":      totalCampaigns,
		"active_campaigns":     activeCampaigns,
		"funded_campaigns":     fundedCampaigns,
		"counted_investments":  countedInvestments,
		"total_raised":         raised,
		"investments_last_24h": last24h,
	})
}
