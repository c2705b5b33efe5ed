package funding

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"equityfund/internal/domain"
)

// Step enumerates the ordered stages an investor walks through when
// committing capital to a campaign.
type Step string

const (
	StepAuth            Step = "auth"
	StepInvestorDetails Step = "investor-details"
	StepAmount          Step = "amount"
	StepSafeReview      Step = "safe-review"
	StepTerms           Step = "terms"
	StepSignature       Step = "signature"
	StepPayment         Step = "payment"
	StepConfirmation    Step = "confirmation"
)

// CoolingOffPeriod is disclosed at the terms step. It does not block the
// transition; cancellation inside the window is a separate out-of-band
// operation.
const CoolingOffPeriod = 48 * time.Hour

// nextStep is the linear transition table. The signature step branches when
// the payment method is commitment (no money collected now), which is handled
// in Advance. Any transition not in the table is rejected.
var nextStep = map[Step]Step{
	StepAuth:            StepInvestorDetails,
	StepInvestorDetails: StepAmount,
	StepAmount:          StepSafeReview,
	StepSafeReview:      StepTerms,
	StepTerms:           StepSignature,
	StepSignature:       StepPayment,
	StepPayment:         StepConfirmation,
}

// InvestorDetails are the required fields collected at the details step.
type InvestorDetails struct {
	FullName string
	Email    string
	Phone    string
	Address  string
	City     string
	State    string
	Zip      string
}

// StepInput carries the data the caller has gathered for the current step.
// Advance only inspects the fields its gate needs.
type StepInput struct {
	Authenticated          bool
	Details                InvestorDetails
	Amount                 decimal.Decimal
	TermsAccepted          bool
	RiskDisclosureAccepted bool
	Signature              string
	PaymentMethod          domain.PaymentMethod
	PaymentCompleted       bool
}

// Wizard is the investment flow state machine. Forward transitions are gated
// on validation of the current step's input; backward navigation is pure UI
// movement to any previously visited step and touches no persisted state.
type Wizard struct {
	minimumInvestment decimal.Decimal
	platformMaximum   decimal.Decimal
	current           Step
	visited           map[Step]bool
}

// NewWizard starts a flow for a campaign. Authenticated callers skip the auth
// step entirely.
func NewWizard(minimumInvestment, platformMaximum decimal.Decimal, authenticated bool) *Wizard {
	start := StepAuth
	if authenticated {
		start = StepInvestorDetails
	}
	return &Wizard{
		minimumInvestment: minimumInvestment,
		platformMaximum:   platformMaximum,
		current:           start,
		visited:           map[Step]bool{start: true},
	}
}

// Current returns the step the flow is on.
func (w *Wizard) Current() Step { return w.current }

// Advance validates the input for the current step and moves to the next one.
// A validation failure blocks the transition with a specific reason and the
// flow stays put; it never silently advances.
func (w *Wizard) Advance(input StepInput) (Step, error) {
	next, ok := nextStep[w.current]
	if !ok {
		return w.current, domain.NewValidationError("step", "%s is a terminal step", w.current)
	}

	switch w.current {
	case StepAuth:
		if !input.Authenticated {
			return w.current, domain.NewValidationError("auth", "sign in to continue")
		}
	case StepInvestorDetails:
		if err := validateDetails(input.Details); err != nil {
			return w.current, err
		}
	case StepAmount:
		if err := w.validateAmount(input.Amount); err != nil {
			return w.current, err
		}
	case StepSafeReview:
		// Reviewing the draft agreement carries no gate of its own.
	case StepTerms:
		if !input.TermsAccepted {
			return w.current, domain.NewValidationError("terms_accepted", "terms of service must be accepted")
		}
		if !input.RiskDisclosureAccepted {
			return w.current, domain.NewValidationError("risk_disclosure_accepted", "risk disclosure must be acknowledged")
		}
	case StepSignature:
		if strings.TrimSpace(input.Signature) == "" {
			return w.current, domain.NewValidationError("digital_signature", "signature required")
		}
		if input.PaymentMethod == domain.PaymentMethodCommitment {
			next = StepConfirmation
		}
	case StepPayment:
		if !input.PaymentCompleted {
			return w.current, domain.NewValidationError("payment", "payment has not completed")
		}
	}

	w.current = next
	w.visited[next] = true
	return next, nil
}

// Back navigates to a previously visited step. Confirmation is terminal:
// once reached, the flow cannot be re-entered.
func (w *Wizard) Back(to Step) error {
	if w.current == StepConfirmation {
		return domain.NewValidationError("step", "confirmation is terminal")
	}
	if to == w.current {
		return domain.NewValidationError("step", "already at step %s", to)
	}
	if !w.visited[to] {
		return domain.NewValidationError("step", "cannot navigate to unvisited step %s", to)
	}
	w.current = to
	return nil
}

func (w *Wizard) validateAmount(amount decimal.Decimal) error {
	if amount.LessThan(w.minimumInvestment) {
		return domain.NewValidationError("amount",
			"minimum investment is %s", FormatUSD(w.minimumInvestment))
	}
	if amount.GreaterThan(w.platformMaximum) {
		return domain.NewValidationError("amount",
			"amount exceeds the platform maximum of %s", FormatUSD(w.platformMaximum))
	}
	return nil
}

func validateDetails(d InvestorDetails) error {
	required := []struct {
		field string
		value string
	}{
		{"full_name", d.FullName},
		{"email", d.Email},
		{"phone", d.Phone},
		{"address", d.Address},
		{"city", d.City},
		{"state", d.State},
		{"zip", d.Zip},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return domain.NewValidationError(f.field, "%s is required", strings.ReplaceAll(f.field, "_", " "))
		}
	}
	return nil
}
