package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AgreementStatus enumerates SAFE agreement lifecycle states. An agreement is
// created as draft alongside its investment and becomes signed when the
// investor signature is captured, independent of payment status.
type AgreementStatus string

const (
	AgreementStatusDraft     AgreementStatus = "draft"
	AgreementStatusSigned    AgreementStatus = "signed"
	AgreementStatusCompleted AgreementStatus = "completed"
)

// SafeAgreement is the legal artifact backing exactly one investment. The
// terms fields are a snapshot taken at creation time so later campaign edits
// never change an issued document.
type SafeAgreement struct {
	ID                string
	InvestmentID      string
	AgreementID       string // unique, "SAFE-" + 8 hex chars
	InvestmentAmount  decimal.Decimal
	DiscountRate      decimal.Decimal
	ValuationCap      decimal.Decimal
	IssueDate         time.Time
	DocumentText      string
	InvestorSignature string
	FounderSignature  string
	Status            AgreementStatus
	CreatedAt         time.Time
}
