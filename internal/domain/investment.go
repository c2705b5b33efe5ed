package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvestmentStatus enumerates investment lifecycle states.
type InvestmentStatus string

const (
	InvestmentStatusPending   InvestmentStatus = "pending"
	InvestmentStatusCommitted InvestmentStatus = "committed"
	InvestmentStatusPaid      InvestmentStatus = "paid"
	InvestmentStatusCompleted InvestmentStatus = "completed"
	InvestmentStatusCancelled InvestmentStatus = "cancelled"
)

// PaymentStatus tracks the external payment leg of an investment.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
)

// PaymentMethod enumerates supported funding instruments. The commitment
// method collects no money up front; capital is due on a future call.
type PaymentMethod string

const (
	PaymentMethodCard       PaymentMethod = "card"
	PaymentMethodACH        PaymentMethod = "ach"
	PaymentMethodWire       PaymentMethod = "wire"
	PaymentMethodCommitment PaymentMethod = "commitment"
)

// CountedStatuses is the set of investment statuses included in campaign
// funding aggregates.
var CountedStatuses = []InvestmentStatus{
	InvestmentStatusCommitted,
	InvestmentStatusPaid,
	InvestmentStatusCompleted,
}

// Counted reports whether the status contributes to a campaign's total raised.
func (s InvestmentStatus) Counted() bool {
	for _, c := range CountedStatuses {
		if s == c {
			return true
		}
	}
	return false
}

// Investment is the transactional record binding an investor's committed
// capital to a campaign. TotalAmount is always Amount plus PlatformFee.
// Once the status reaches completed, Amount and PlatformFee are immutable.
type Investment struct {
	ID               string
	CampaignID       string
	InvestorID       string
	Amount           decimal.Decimal
	PlatformFee      decimal.Decimal
	TotalAmount      decimal.Decimal
	Status           InvestmentStatus
	PaymentStatus    PaymentStatus
	PaymentMethod    PaymentMethod
	AgreementSigned  bool
	SignedAt         *time.Time
	IdempotencyKey   string
	ResidencyCountry string
	CreatedAt        time.Time
}
