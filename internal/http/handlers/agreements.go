package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"equityfund/internal/domain"
	"equityfund/pkg/zip"
)

func (a *App) AgreementsGet(w http.ResponseWriter, r *http.Request) {
	agreement, _, err := a.Service.Agreement(r.Context(), a.currentUserID(r), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, agreementView(agreement))
}

// AgreementsDownload serves the agreement document as a plain-text attachment
// under its canonical export filename.
func (a *App) AgreementsDownload(w http.ResponseWriter, r *http.Request) {
	agreement, investment, err := a.Service.Agreement(r.Context(), a.currentUserID(r), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	name, err := a.Service.AgreementFilename(r.Context(), investment.CampaignID, agreement.InvestmentAmount)
	if err != nil {
		a.domainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(agreement.DocumentText))
}

// AgreementsExport bundles a campaign's signed agreement documents into one
// zip archive for the founder.
func (a *App) AgreementsExport(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "id")
	files, err := a.Service.ExportAgreements(r.Context(), a.currentUserID(r), campaignID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	assets := make([]zip.Asset, 0, len(files))
	for _, f := range files {
		assets = append(assets, zip.Asset{
			Filename: f.Name,
			MIME:     "text/plain",
			Data:     []byte(f.Text),
		})
	}
	archive := zip.ArchiveAssets(assets)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="agreements_`+campaignID+`.zip"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func agreementView(agreement *domain.SafeAgreement) map[string]any {
	return map[string]any{
		"agreement_id":       agreement.AgreementID,
		"investment_id":      agreement.InvestmentID,
		"investment_amount":  agreement.InvestmentAmount,
		"discount_rate":      agreement.DiscountRate,
		"valuation_cap":      agreement.ValuationCap,
		"issue_date":         agreement.IssueDate,
		"status":             agreement.Status,
		"document_text":      agreement.DocumentText,
		"investor_signature": agreement.InvestorSignature,
	}
}
