package funding

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"equityfund/internal/domain"
	"equityfund/internal/infra"
	"equityfund/internal/providers/payment"
)

// Service orchestrates the investment commitment pipeline over the repository
// interfaces and the payment processor. Identity is always passed in
// explicitly; the service never reads ambient session state.
type Service struct {
	campaigns   domain.CampaignRepository
	investors   domain.InvestorRepository
	investments domain.InvestmentRepository
	agreements  domain.AgreementRepository
	processor   payment.Processor
	platformMax decimal.Decimal
	logger      infra.Logger
	now         func() time.Time
}

// NewService wires the engine. platformMax is the platform-wide per-investor
// ceiling, distinct from any campaign's funding goal.
func NewService(
	campaigns domain.CampaignRepository,
	investors domain.InvestorRepository,
	investments domain.InvestmentRepository,
	agreements domain.AgreementRepository,
	processor payment.Processor,
	platformMax decimal.Decimal,
	logger infra.Logger,
) *Service {
	return &Service{
		campaigns:   campaigns,
		investors:   investors,
		investments: investments,
		agreements:  agreements,
		processor:   processor,
		platformMax: platformMax,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateCampaignCommand is the validated input for campaign creation.
type CreateCampaignCommand struct {
	FounderID         string
	CompanyName       string
	Title             string
	Pitch             string
	FundingGoal       decimal.Decimal
	MinimumInvestment decimal.Decimal
	DiscountRate      decimal.Decimal
	ValuationCap      *decimal.Decimal
	Deadline          time.Time
	Allocations       []domain.Allocation
	Team              []domain.TeamMember
}

// CreateCampaign validates and persists a new campaign. The whole allocation
// list and the team structure are validated on every create and edit.
func (s *Service) CreateCampaign(ctx context.Context, cmd CreateCampaignCommand) (*domain.Campaign, error) {
	if err := s.validateCampaign(cmd); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	campaign := &domain.Campaign{
		ID:                uuid.NewString(),
		FounderID:         cmd.FounderID,
		CompanyName:       strings.TrimSpace(cmd.CompanyName),
		Title:             strings.TrimSpace(cmd.Title),
		Pitch:             strings.TrimSpace(cmd.Pitch),
		FundingGoal:       cmd.FundingGoal,
		MinimumInvestment: cmd.MinimumInvestment,
		DiscountRate:      cmd.DiscountRate,
		ValuationCap:      cmd.ValuationCap,
		Deadline:          cmd.Deadline,
		Status:            domain.CampaignStatusActive,
		Allocations:       cmd.Allocations,
		Team:              cmd.Team,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.campaigns.Create(ctx, campaign); err != nil {
		return nil, &domain.ExternalError{Service: "persistence", Err: err}
	}
	s.logger.Info().Str("campaign_id", campaign.ID).Str("founder_id", campaign.FounderID).Msg("campaign created")
	return campaign, nil
}

// UpdateCampaign re-validates and saves founder edits. Only the owning
// founder may edit; the funding goal, deadline, and status are read-only for
// the investment engine but writable here on the founder's path.
func (s *Service) UpdateCampaign(ctx context.Context, founderID, campaignID string, cmd CreateCampaignCommand) (*domain.Campaign, error) {
	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.FounderID != founderID {
		return nil, domain.ErrUnauthorized
	}
	if err := s.validateCampaign(cmd); err != nil {
		return nil, err
	}
	campaign.CompanyName = strings.TrimSpace(cmd.CompanyName)
	campaign.Title = strings.TrimSpace(cmd.Title)
	campaign.Pitch = strings.TrimSpace(cmd.Pitch)
	campaign.FundingGoal = cmd.FundingGoal
	campaign.MinimumInvestment = cmd.MinimumInvestment
	campaign.DiscountRate = cmd.DiscountRate
	campaign.ValuationCap = cmd.ValuationCap
	campaign.Deadline = cmd.Deadline
	campaign.Allocations = cmd.Allocations
	campaign.Team = cmd.Team
	campaign.UpdatedAt = s.now().UTC()
	if err := s.campaigns.Update(ctx, campaign); err != nil {
		return nil, &domain.ExternalError{Service: "persistence", Err: err}
	}
	return campaign, nil
}

func (s *Service) validateCampaign(cmd CreateCampaignCommand) error {
	if strings.TrimSpace(cmd.CompanyName) == "" {
		return domain.NewValidationError("company_name", "company name is required")
	}
	if strings.TrimSpace(cmd.Title) == "" {
		return domain.NewValidationError("title", "title is required")
	}
	if !cmd.FundingGoal.IsPositive() {
		return domain.NewValidationError("funding_goal", "funding goal must be positive")
	}
	if !cmd.MinimumInvestment.IsPositive() {
		return domain.NewValidationError("minimum_investment", "minimum investment must be positive")
	}
	if cmd.MinimumInvestment.GreaterThan(cmd.FundingGoal) {
		return domain.NewValidationError("minimum_investment", "minimum investment cannot exceed the funding goal")
	}
	if cmd.DiscountRate.IsNegative() || cmd.DiscountRate.GreaterThan(decimal.NewFromInt(50)) {
		return domain.NewValidationError("discount_rate", "discount rate must be between 0 and 50")
	}
	if err := ValidateAllocations(cmd.Allocations); err != nil {
		return err
	}
	return ValidateTeam(cmd.Team)
}

// ListActiveCampaigns returns currently active campaigns for the public
// listing.
func (s *Service) ListActiveCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	campaigns, err := s.campaigns.ListActive(ctx, listCampaignLimit)
	if err != nil {
		return nil, &domain.ExternalError{Service: "persistence", Err: err}
	}
	return campaigns, nil
}

const listCampaignLimit = 50

// InvestorProfile returns the stored profile for an investor.
func (s *Service) InvestorProfile(ctx context.Context, investorID string) (*domain.Investor, error) {
	return s.investors.GetByID(ctx, investorID)
}

// SaveInvestorProfile captures the investor-details step. KYC status and tier
// are never writable here; they belong to the review workflow.
func (s *Service) SaveInvestorProfile(ctx context.Context, investor *domain.Investor) (*domain.Investor, error) {
	if err := validateDetails(detailsFor(investor)); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	existing, err := s.investors.GetByID(ctx, investor.ID)
	switch {
	case err == nil:
		investor.KYCStatus = existing.KYCStatus
		investor.KYCTier = existing.KYCTier
		investor.CreatedAt = existing.CreatedAt
	case errors.Is(err, domain.ErrNotFound):
		investor.KYCStatus = domain.KYCStatusNone
		investor.KYCTier = domain.KYCTierNone
		investor.CreatedAt = now
	default:
		return nil, err
	}
	investor.UpdatedAt = now
	if err := s.investors.Upsert(ctx, investor); err != nil {
		return nil, &domain.ExternalError{Service: "persistence", Err: err}
	}
	return investor, nil
}

// CreateInvestmentCommand is the validated command for POST /investments.
type CreateInvestmentCommand struct {
	InvestorID             string
	CampaignID             string
	Amount                 decimal.Decimal
	PaymentMethod          domain.PaymentMethod
	DigitalSignature       string
	TermsAccepted          bool
	RiskDisclosureAccepted bool
	IdempotencyKey         string
	ResidencyCountry       string
}

// InvestmentResult pairs a created investment with its agreement.
type InvestmentResult struct {
	Investment *domain.Investment
	Agreement  *domain.SafeAgreement
}

// CreateInvestment runs the forward path of the wizard for a fully-gathered
// submission and, when every gate passes, creates the investment and its
// draft SAFE agreement as one atomic unit, recording the submitted
// e-signature on both. A repeated submission carrying the same idempotency
// key returns the original records instead of creating duplicates, so
// payment retries can never double-commit; the key only replays for the
// investor and campaign it was first used with.
func (s *Service) CreateInvestment(ctx context.Context, cmd CreateInvestmentCommand) (*InvestmentResult, error) {
	if key := strings.TrimSpace(cmd.IdempotencyKey); key != "" {
		existing, err := s.investments.GetByIdempotencyKey(ctx, key)
		switch {
		case err == nil && existing != nil:
			// A key is only a replay of the submission it was minted for.
			// The same key arriving from another investor or for another
			// campaign must never hand out somebody else's records.
			if existing.InvestorID != cmd.InvestorID || existing.CampaignID != cmd.CampaignID {
				return nil, domain.NewValidationError("idempotency_key",
					"idempotency key was already used for a different submission")
			}
			agreement, aerr := s.agreements.GetByInvestmentID(ctx, existing.ID)
			if aerr != nil {
				return nil, aerr
			}
			return &InvestmentResult{Investment: existing, Agreement: agreement}, nil
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return nil, &domain.ExternalError{Service: "persistence", Err: err}
		}
	}

	campaign, err := s.campaigns.GetByID(ctx, cmd.CampaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status != domain.CampaignStatusActive {
		return nil, domain.ErrCampaignClosed
	}
	if !campaign.Deadline.IsZero() && s.now().After(campaign.Deadline) {
		return nil, domain.ErrCampaignClosed
	}

	investor, err := s.investors.GetByID(ctx, cmd.InvestorID)
	if err != nil {
		return nil, err
	}

	// The wizard is the single authority on step ordering: replay the
	// forward path so every gate fires in sequence and the first violation
	// surfaces with its specific reason.
	w := NewWizard(campaign.MinimumInvestment, s.platformMax, true)
	steps := []StepInput{
		{Details: detailsFor(investor)},
		{Amount: cmd.Amount},
		{}, // safe-review
		{TermsAccepted: cmd.TermsAccepted, RiskDisclosureAccepted: cmd.RiskDisclosureAccepted},
		{Signature: cmd.DigitalSignature, PaymentMethod: cmd.PaymentMethod},
	}
	for _, input := range steps {
		if _, err := w.Advance(input); err != nil {
			return nil, err
		}
	}

	if err := CheckKYC(investor, campaign); err != nil {
		return nil, err
	}

	existing, err := s.investments.ListByCampaign(ctx, cmd.CampaignID)
	if err != nil {
		return nil, &domain.ExternalError{Service: "persistence", Err: err}
	}
	remaining := RemainingCapacity(campaign.FundingGoal, existing)
	if cmd.Amount.GreaterThan(remaining) {
		return nil, domain.NewValidationError("amount",
			"investment would exceed the campaign funding goal; %s remaining", FormatUSD(remaining))
	}

	now := s.now().UTC()
	fee := Fee(cmd.Amount)
	status := domain.InvestmentStatusPending
	if cmd.PaymentMethod == domain.PaymentMethodCommitment {
		// No capital collected now; the commitment counts toward the
		// aggregate immediately and is due upon a future call.
		status = domain.InvestmentStatusCommitted
	}
	investment := &domain.Investment{
		ID:               uuid.NewString(),
		CampaignID:       campaign.ID,
		InvestorID:       investor.ID,
		Amount:           cmd.Amount,
		PlatformFee:      fee,
		TotalAmount:      cmd.Amount.Add(fee),
		Status:           status,
		PaymentStatus:    domain.PaymentStatusPending,
		PaymentMethod:    cmd.PaymentMethod,
		AgreementSigned:  true,
		SignedAt:         &now,
		IdempotencyKey:   strings.TrimSpace(cmd.IdempotencyKey),
		ResidencyCountry: cmd.ResidencyCountry,
		CreatedAt:        now,
	}
	terms := TermsFor(campaign, cmd.Amount, now)
	agreement := &domain.SafeAgreement{
		ID:                uuid.NewString(),
		InvestmentID:      investment.ID,
		AgreementID:       newAgreementID(),
		InvestmentAmount:  terms.PurchaseAmount,
		DiscountRate:      terms.DiscountRate,
		ValuationCap:      terms.ValuationCap,
		IssueDate:         now,
		DocumentText:      GenerateSAFE(campaign, cmd.Amount, now),
		InvestorSignature: strings.TrimSpace(cmd.DigitalSignature),
		Status:            domain.AgreementStatusDraft,
		CreatedAt:         now,
	}
	if err := s.investments.CreateWithAgreement(ctx, investment, agreement); err != nil {
		return nil, &domain.ExternalError{Service: "persistence", Err: err}
	}
	s.logger.Info().
		Str("investment_id", investment.ID).
		Str("campaign_id", campaign.ID).
		Str("agreement_id", agreement.AgreementID).
		Str("amount", investment.Amount.String()).
		Msg("investment created")
	return &InvestmentResult{Investment: investment, Agreement: agreement}, nil
}

// Sign records the investor's typed legal name as the binding e-signature and
// moves the agreement to signed, independent of payment status.
func (s *Service) Sign(ctx context.Context, investorID, investmentID, signature string) (*InvestmentResult, error) {
	if strings.TrimSpace(signature) == "" {
		return nil, domain.NewValidationError("signature", "signature required")
	}
	investment, err := s.ownedInvestment(ctx, investorID, investmentID)
	if err != nil {
		return nil, err
	}
	if investment.Status == domain.InvestmentStatusCancelled {
		return nil, domain.NewValidationError("status", "cancelled investment cannot be signed")
	}
	if err := s.investments.MarkSigned(ctx, investment.ID); err != nil {
		return nil, &domain.ExternalError{Service: "persistence", Err: err}
	}
	if err := s.agreements.MarkSigned(ctx, investment.ID, strings.TrimSpace(signature)); err != nil {
		return nil, &domain.ExternalError{Service: "persistence", Err: err}
	}
	signedAt := s.now().UTC()
	investment.AgreementSigned = true
	investment.SignedAt = &signedAt
	agreement, err := s.agreements.GetByInvestmentID(ctx, investment.ID)
	if err != nil {
		return nil, err
	}
	return &InvestmentResult{Investment: investment, Agreement: agreement}, nil
}

// ConfirmPayment runs the payment step. A gateway failure marks the payment
// failed and surfaces a retryable error; the investment and agreement are
// kept so the investor can retry without duplicating records. The commitment
// method confirms without charging.
func (s *Service) ConfirmPayment(ctx context.Context, investorID, investmentID string) (*domain.Investment, error) {
	investment, err := s.ownedInvestment(ctx, investorID, investmentID)
	if err != nil {
		return nil, err
	}
	switch investment.Status {
	case domain.InvestmentStatusCancelled:
		return nil, domain.NewValidationError("status", "cancelled investment cannot be paid")
	case domain.InvestmentStatusPaid, domain.InvestmentStatusCompleted:
		return investment, nil
	}
	if !investment.AgreementSigned {
		return nil, domain.NewValidationError("signature", "agreement must be signed before payment")
	}

	if investment.PaymentMethod == domain.PaymentMethodCommitment {
		if err := s.investments.UpdateStatus(ctx, investment.ID, domain.InvestmentStatusCommitted, domain.PaymentStatusPending); err != nil {
			return nil, &domain.ExternalError{Service: "persistence", Err: err}
		}
		investment.Status = domain.InvestmentStatusCommitted
		return investment, nil
	}

	if err := s.investments.UpdateStatus(ctx, investment.ID, investment.Status, domain.PaymentStatusProcessing); err != nil {
		return nil, &domain.ExternalError{Service: "persistence", Err: err}
	}
	result, err := s.processor.Charge(ctx, payment.ChargeRequest{
		Reference: investment.ID,
		Amount:    investment.TotalAmount,
		Currency:  "USD",
		Method:    string(investment.PaymentMethod),
	})
	if err != nil {
		if uerr := s.investments.UpdateStatus(ctx, investment.ID, investment.Status, domain.PaymentStatusFailed); uerr != nil {
			s.logger.Error().Err(uerr).Str("investment_id", investment.ID).Msg("mark payment failed")
		}
		return nil, &domain.ExternalError{Service: "payment gateway", Err: err}
	}
	if err := s.investments.UpdateStatus(ctx, investment.ID, domain.InvestmentStatusPaid, domain.PaymentStatusCompleted); err != nil {
		return nil, &domain.ExternalError{Service: "persistence", Err: err}
	}
	s.logger.Info().
		Str("investment_id", investment.ID).
		Str("transaction_id", result.TransactionID).
		Msg("payment completed")
	investment.Status = domain.InvestmentStatusPaid
	investment.PaymentStatus = domain.PaymentStatusCompleted
	return investment, nil
}

// Cancel is the explicit out-of-band cancellation; abandoning the wizard
// never cancels a created investment. Completed investments are immutable.
func (s *Service) Cancel(ctx context.Context, investorID, investmentID string) (*domain.Investment, error) {
	investment, err := s.ownedInvestment(ctx, investorID, investmentID)
	if err != nil {
		return nil, err
	}
	if investment.Status == domain.InvestmentStatusCompleted {
		return nil, domain.ErrImmutableRecord
	}
	if err := s.investments.UpdateStatus(ctx, investment.ID, domain.InvestmentStatusCancelled, investment.PaymentStatus); err != nil {
		return nil, &domain.ExternalError{Service: "persistence", Err: err}
	}
	investment.Status = domain.InvestmentStatusCancelled
	return investment, nil
}

// Investment returns an owner-checked investment.
func (s *Service) Investment(ctx context.Context, investorID, investmentID string) (*domain.Investment, error) {
	return s.ownedInvestment(ctx, investorID, investmentID)
}

// Agreement returns the agreement for an investment. The owning investor and
// the campaign founder may both read it.
func (s *Service) Agreement(ctx context.Context, callerID, investmentID string) (*domain.SafeAgreement, *domain.Investment, error) {
	investment, err := s.investments.GetByID(ctx, investmentID)
	if err != nil {
		return nil, nil, err
	}
	if investment.InvestorID != callerID {
		campaign, cerr := s.campaigns.GetByID(ctx, investment.CampaignID)
		if cerr != nil || campaign.FounderID != callerID {
			return nil, nil, domain.ErrUnauthorized
		}
	}
	agreement, err := s.agreements.GetByInvestmentID(ctx, investmentID)
	if err != nil {
		return nil, nil, err
	}
	return agreement, investment, nil
}

// CampaignWithStats loads a campaign merged with its derived funding
// aggregate. The stats are a point-in-time snapshot of the investment table.
func (s *Service) CampaignWithStats(ctx context.Context, campaignID string) (*domain.Campaign, domain.FundingStats, error) {
	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, domain.FundingStats{}, err
	}
	investments, err := s.investments.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, domain.FundingStats{}, &domain.ExternalError{Service: "persistence", Err: err}
	}
	return campaign, ComputeStats(campaign.FundingGoal, investments), nil
}

// AgreementFile is a named agreement document ready for export.
type AgreementFile struct {
	Name string
	Text string
}

// ExportAgreements collects the signed agreement documents of a campaign for
// its founder, named with the canonical export filename.
func (s *Service) ExportAgreements(ctx context.Context, founderID, campaignID string) ([]AgreementFile, error) {
	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.FounderID != founderID {
		return nil, domain.ErrUnauthorized
	}
	agreements, err := s.agreements.ListSignedByCampaign(ctx, campaignID)
	if err != nil {
		return nil, &domain.ExternalError{Service: "persistence", Err: err}
	}
	files := make([]AgreementFile, 0, len(agreements))
	for _, a := range agreements {
		files = append(files, AgreementFile{
			Name: ExportFilename(campaign.CompanyName, a.InvestmentAmount),
			Text: a.DocumentText,
		})
	}
	return files, nil
}

// AgreementFilename derives the canonical export filename for an agreement
// issued against a campaign.
func (s *Service) AgreementFilename(ctx context.Context, campaignID string, amount decimal.Decimal) (string, error) {
	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return "", err
	}
	return ExportFilename(campaign.CompanyName, amount), nil
}

func (s *Service) ownedInvestment(ctx context.Context, investorID, investmentID string) (*domain.Investment, error) {
	investment, err := s.investments.GetByID(ctx, investmentID)
	if err != nil {
		return nil, err
	}
	if investment.InvestorID != investorID {
		return nil, domain.ErrUnauthorized
	}
	return investment, nil
}

func detailsFor(investor *domain.Investor) InvestorDetails {
	return InvestorDetails{
		FullName: investor.FullName,
		Email:    investor.Email,
		Phone:    investor.Phone,
		Address:  investor.Address,
		City:     investor.City,
		State:    investor.State,
		Zip:      investor.Zip,
	}
}

// newAgreementID issues the unique document reference, "SAFE-" plus the first
// eight hex characters of a fresh UUID.
func newAgreementID() string {
	return "SAFE-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
}
