package funding

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"equityfund/internal/domain"
	"equityfund/internal/infra"
	"equityfund/internal/providers/payment"
)

type fakeCampaignRepo struct {
	items map[string]*domain.Campaign
}

func (f *fakeCampaignRepo) Create(_ context.Context, c *domain.Campaign) error {
	f.items[c.ID] = c
	return nil
}

func (f *fakeCampaignRepo) Update(_ context.Context, c *domain.Campaign) error {
	f.items[c.ID] = c
	return nil
}

func (f *fakeCampaignRepo) GetByID(_ context.Context, id string) (*domain.Campaign, error) {
	c, ok := f.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (f *fakeCampaignRepo) ListActive(_ context.Context, _ int) ([]domain.Campaign, error) {
	var out []domain.Campaign
	for _, c := range f.items {
		if c.Status == domain.CampaignStatusActive {
			out = append(out, *c)
		}
	}
	return out, nil
}

type fakeInvestorRepo struct {
	items map[string]*domain.Investor
}

func (f *fakeInvestorRepo) GetByID(_ context.Context, id string) (*domain.Investor, error) {
	i, ok := f.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *i
	return &clone, nil
}

func (f *fakeInvestorRepo) Upsert(_ context.Context, i *domain.Investor) error {
	f.items[i.ID] = i
	return nil
}

type fakeInvestmentRepo struct {
	investments map[string]*domain.Investment
	agreements  map[string]*domain.SafeAgreement // keyed by investment id
	creates     int
	lookupErr   error
}

func (f *fakeInvestmentRepo) CreateWithAgreement(_ context.Context, inv *domain.Investment, agreement *domain.SafeAgreement) error {
	f.creates++
	clone := *inv
	f.investments[inv.ID] = &clone
	aclone := *agreement
	f.agreements[inv.ID] = &aclone
	return nil
}

func (f *fakeInvestmentRepo) GetByID(_ context.Context, id string) (*domain.Investment, error) {
	inv, ok := f.investments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *inv
	return &clone, nil
}

func (f *fakeInvestmentRepo) GetByIdempotencyKey(_ context.Context, key string) (*domain.Investment, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for _, inv := range f.investments {
		if inv.IdempotencyKey == key {
			clone := *inv
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeInvestmentRepo) ListByCampaign(_ context.Context, campaignID string) ([]domain.Investment, error) {
	var out []domain.Investment
	for _, inv := range f.investments {
		if inv.CampaignID == campaignID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeInvestmentRepo) UpdateStatus(_ context.Context, id string, status domain.InvestmentStatus, pay domain.PaymentStatus) error {
	inv, ok := f.investments[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.Status = status
	inv.PaymentStatus = pay
	return nil
}

func (f *fakeInvestmentRepo) MarkSigned(_ context.Context, id string) error {
	inv, ok := f.investments[id]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now().UTC()
	inv.AgreementSigned = true
	inv.SignedAt = &now
	return nil
}

type fakeAgreementRepo struct {
	backing *fakeInvestmentRepo
}

func (f *fakeAgreementRepo) GetByInvestmentID(_ context.Context, investmentID string) (*domain.SafeAgreement, error) {
	a, ok := f.backing.agreements[investmentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (f *fakeAgreementRepo) ListSignedByCampaign(_ context.Context, campaignID string) ([]domain.SafeAgreement, error) {
	var out []domain.SafeAgreement
	for invID, a := range f.backing.agreements {
		inv := f.backing.investments[invID]
		if inv != nil && inv.CampaignID == campaignID && a.Status == domain.AgreementStatusSigned {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAgreementRepo) MarkSigned(_ context.Context, investmentID, signature string) error {
	a, ok := f.backing.agreements[investmentID]
	if !ok {
		return domain.ErrNotFound
	}
	a.Status = domain.AgreementStatusSigned
	a.InvestorSignature = signature
	return nil
}

type fakeProcessor struct {
	err     error
	charges []payment.ChargeRequest
}

func (f *fakeProcessor) Charge(_ context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error) {
	f.charges = append(f.charges, req)
	if f.err != nil {
		return nil, f.err
	}
	return &payment.ChargeResult{TransactionID: "tx-1", ProcessedAt: time.Now()}, nil
}

type serviceFixture struct {
	svc         *Service
	campaigns   *fakeCampaignRepo
	investors   *fakeInvestorRepo
	investments *fakeInvestmentRepo
	processor   *fakeProcessor
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()
	campaign := testCampaign()
	campaign.Deadline = time.Now().Add(30 * 24 * time.Hour)
	campaigns := &fakeCampaignRepo{items: map[string]*domain.Campaign{campaign.ID: campaign}}
	investors := &fakeInvestorRepo{items: map[string]*domain.Investor{
		"i-1": {
			ID: "i-1", FullName: "Dana Reyes", Email: "dana@example.com", Phone: "555-0100",
			Address: "1 Main St", City: "Austin", State: "TX", Zip: "78701",
			KYCStatus: domain.KYCStatusApproved, KYCTier: domain.KYCTier2,
		},
	}}
	investments := &fakeInvestmentRepo{
		investments: map[string]*domain.Investment{},
		agreements:  map[string]*domain.SafeAgreement{},
	}
	agreements := &fakeAgreementRepo{backing: investments}
	processor := &fakeProcessor{}
	svc := NewService(campaigns, investors, investments, agreements, processor,
		decimal.NewFromInt(100_000), infra.NewLogger("test"))
	return &serviceFixture{svc: svc, campaigns: campaigns, investors: investors, investments: investments, processor: processor}
}

func createCmd() CreateInvestmentCommand {
	return CreateInvestmentCommand{
		InvestorID:             "i-1",
		CampaignID:             "c-1",
		Amount:                 decimal.NewFromInt(1500),
		PaymentMethod:          domain.PaymentMethodCard,
		DigitalSignature:       "Dana Reyes",
		TermsAccepted:          true,
		RiskDisclosureAccepted: true,
		IdempotencyKey:         "req-1",
	}
}

func TestCreateInvestmentComputesFee(t *testing.T) {
	fx := newFixture(t)
	result, err := fx.svc.CreateInvestment(context.Background(), createCmd())
	if err != nil {
		t.Fatalf("CreateInvestment: %v", err)
	}
	inv := result.Investment
	if !inv.PlatformFee.Equal(decimal.RequireFromString("75.00")) {
		t.Fatalf("fee = %s, want 75.00", inv.PlatformFee)
	}
	if !inv.TotalAmount.Equal(decimal.RequireFromString("1575.00")) {
		t.Fatalf("total = %s, want 1575.00", inv.TotalAmount)
	}
	if inv.Status != domain.InvestmentStatusPending || inv.PaymentStatus != domain.PaymentStatusPending {
		t.Fatalf("status = %s/%s, want pending/pending", inv.Status, inv.PaymentStatus)
	}
	if !strings.HasPrefix(result.Agreement.AgreementID, "SAFE-") || len(result.Agreement.AgreementID) != len("SAFE-")+8 {
		t.Fatalf("agreement id = %q", result.Agreement.AgreementID)
	}
	if result.Agreement.Status != domain.AgreementStatusDraft {
		t.Fatalf("agreement status = %s, want draft", result.Agreement.Status)
	}
	if result.Agreement.DocumentText == "" {
		t.Fatal("agreement document must be rendered")
	}
}

func TestCreateInvestmentFeeFreeBelowThreshold(t *testing.T) {
	fx := newFixture(t)
	cmd := createCmd()
	cmd.Amount = decimal.NewFromInt(900)
	result, err := fx.svc.CreateInvestment(context.Background(), cmd)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Investment.PlatformFee.IsZero() {
		t.Fatalf("fee = %s, want 0", result.Investment.PlatformFee)
	}
	if !result.Investment.TotalAmount.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("total = %s, want 900", result.Investment.TotalAmount)
	}
}

func TestCreateInvestmentIdempotentReplay(t *testing.T) {
	fx := newFixture(t)
	first, err := fx.svc.CreateInvestment(context.Background(), createCmd())
	if err != nil {
		t.Fatal(err)
	}
	second, err := fx.svc.CreateInvestment(context.Background(), createCmd())
	if err != nil {
		t.Fatal(err)
	}
	if first.Investment.ID != second.Investment.ID {
		t.Fatal("replayed submission must return the original investment")
	}
	if fx.investments.creates != 1 {
		t.Fatalf("creates = %d, want exactly 1", fx.investments.creates)
	}
}

func TestCreateInvestmentRecordsSignature(t *testing.T) {
	fx := newFixture(t)
	result, err := fx.svc.CreateInvestment(context.Background(), createCmd())
	if err != nil {
		t.Fatal(err)
	}
	inv := result.Investment
	if !inv.AgreementSigned || inv.SignedAt == nil {
		t.Fatalf("signed = %v/%v, the submitted e-signature must be recorded at creation", inv.AgreementSigned, inv.SignedAt)
	}
	if result.Agreement.InvestorSignature != "Dana Reyes" {
		t.Fatalf("captured signature = %q", result.Agreement.InvestorSignature)
	}
	if result.Agreement.Status != domain.AgreementStatusDraft {
		t.Fatalf("agreement status = %s, want draft", result.Agreement.Status)
	}
	stored := fx.investments.investments[inv.ID]
	if !stored.AgreementSigned || stored.SignedAt == nil {
		t.Fatal("persisted investment must carry the signature")
	}
	if fx.investments.agreements[inv.ID].InvestorSignature != "Dana Reyes" {
		t.Fatal("persisted agreement must carry the signature text")
	}
}

func TestCreateInvestmentIdempotencyKeyScopedToCaller(t *testing.T) {
	fx := newFixture(t)
	if _, err := fx.svc.CreateInvestment(context.Background(), createCmd()); err != nil {
		t.Fatal(err)
	}
	other := *fx.investors.items["i-1"]
	other.ID = "i-2"
	other.FullName = "Riley Chen"
	other.Email = "riley@example.com"
	fx.investors.items["i-2"] = &other

	cmd := createCmd()
	cmd.InvestorID = "i-2"
	_, err := fx.svc.CreateInvestment(context.Background(), cmd)
	ve, ok := domain.AsValidation(err)
	if !ok || ve.Field != "idempotency_key" {
		t.Fatalf("another investor reusing the key must be rejected, got %v", err)
	}
	if fx.investments.creates != 1 {
		t.Fatalf("creates = %d, want 1", fx.investments.creates)
	}

	cmd = createCmd()
	cmd.CampaignID = "c-2"
	campaign := *fx.campaigns.items["c-1"]
	campaign.ID = "c-2"
	fx.campaigns.items["c-2"] = &campaign
	_, err = fx.svc.CreateInvestment(context.Background(), cmd)
	if ve, ok := domain.AsValidation(err); !ok || ve.Field != "idempotency_key" {
		t.Fatalf("reusing the key for another campaign must be rejected, got %v", err)
	}
}

func TestCreateInvestmentIdempotencyLookupFailure(t *testing.T) {
	fx := newFixture(t)
	fx.investments.lookupErr = errors.New("connection reset")
	_, err := fx.svc.CreateInvestment(context.Background(), createCmd())
	var ee *domain.ExternalError
	if !errors.As(err, &ee) {
		t.Fatalf("expected ExternalError, got %v", err)
	}
	if fx.investments.creates != 0 {
		t.Fatal("a failed replay lookup must not fall through to create")
	}
}

func TestCreateInvestmentGateFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CreateInvestmentCommand)
		field  string
	}{
		{"below minimum", func(c *CreateInvestmentCommand) { c.Amount = decimal.NewFromInt(10) }, "amount"},
		{"above platform maximum", func(c *CreateInvestmentCommand) { c.Amount = decimal.NewFromInt(500_000) }, "amount"},
		{"terms not accepted", func(c *CreateInvestmentCommand) { c.TermsAccepted = false }, "terms_accepted"},
		{"risk not acknowledged", func(c *CreateInvestmentCommand) { c.RiskDisclosureAccepted = false }, "risk_disclosure_accepted"},
		{"empty signature", func(c *CreateInvestmentCommand) { c.DigitalSignature = "  " }, "digital_signature"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newFixture(t)
			cmd := createCmd()
			tc.mutate(&cmd)
			_, err := fx.svc.CreateInvestment(context.Background(), cmd)
			ve, ok := domain.AsValidation(err)
			if !ok {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tc.field {
				t.Fatalf("field = %q, want %q", ve.Field, tc.field)
			}
			if fx.investments.creates != 0 {
				t.Fatal("blocked submission must not create records")
			}
		})
	}
}

func TestCreateInvestmentMissingProfileField(t *testing.T) {
	fx := newFixture(t)
	fx.investors.items["i-1"].Phone = ""
	_, err := fx.svc.CreateInvestment(context.Background(), createCmd())
	ve, ok := domain.AsValidation(err)
	if !ok || ve.Field != "phone" {
		t.Fatalf("expected phone validation error, got %v", err)
	}
}

func TestCreateInvestmentKYCGate(t *testing.T) {
	fx := newFixture(t)
	fx.investors.items["i-1"].KYCStatus = domain.KYCStatusPending
	_, err := fx.svc.CreateInvestment(context.Background(), createCmd())
	if _, ok := domain.AsAuthorization(err); !ok {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
}

func TestCreateInvestmentRejectsOverFunding(t *testing.T) {
	fx := newFixture(t)
	fx.investments.investments["prior"] = &domain.Investment{
		ID: "prior", CampaignID: "c-1", InvestorID: "i-2",
		Amount: decimal.NewFromInt(4000), Status: domain.InvestmentStatusCommitted,
	}
	_, err := fx.svc.CreateInvestment(context.Background(), createCmd()) // 1500 > 1000 remaining
	ve, ok := domain.AsValidation(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(ve.Reason, "$1,000.00 remaining") {
		t.Fatalf("reason %q should name the remaining capacity", ve.Reason)
	}
}

func TestCreateInvestmentClosedCampaign(t *testing.T) {
	fx := newFixture(t)
	fx.campaigns.items["c-1"].Status = domain.CampaignStatusClosed
	if _, err := fx.svc.CreateInvestment(context.Background(), createCmd()); !errors.Is(err, domain.ErrCampaignClosed) {
		t.Fatalf("expected ErrCampaignClosed, got %v", err)
	}
}

func TestCreateInvestmentCommitmentMethod(t *testing.T) {
	fx := newFixture(t)
	cmd := createCmd()
	cmd.PaymentMethod = domain.PaymentMethodCommitment
	result, err := fx.svc.CreateInvestment(context.Background(), cmd)
	if err != nil {
		t.Fatal(err)
	}
	if result.Investment.Status != domain.InvestmentStatusCommitted {
		t.Fatalf("status = %s, want committed", result.Investment.Status)
	}
	if result.Investment.PaymentStatus != domain.PaymentStatusPending {
		t.Fatalf("payment status = %s, want pending (capital due on call)", result.Investment.PaymentStatus)
	}
}

func TestSignCapturesSignature(t *testing.T) {
	fx := newFixture(t)
	created, err := fx.svc.CreateInvestment(context.Background(), createCmd())
	if err != nil {
		t.Fatal(err)
	}
	result, err := fx.svc.Sign(context.Background(), "i-1", created.Investment.ID, "Dana Reyes")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !result.Investment.AgreementSigned || result.Investment.SignedAt == nil {
		t.Fatal("investment must record the signature")
	}
	if result.Agreement.Status != domain.AgreementStatusSigned {
		t.Fatalf("agreement status = %s, want signed", result.Agreement.Status)
	}
	if result.Agreement.InvestorSignature != "Dana Reyes" {
		t.Fatalf("captured signature = %q", result.Agreement.InvestorSignature)
	}
}

func TestSignOwnershipCheck(t *testing.T) {
	fx := newFixture(t)
	created, err := fx.svc.CreateInvestment(context.Background(), createCmd())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fx.svc.Sign(context.Background(), "someone-else", created.Investment.ID, "X"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestConfirmPaymentSuccess(t *testing.T) {
	fx := newFixture(t)
	created, err := fx.svc.CreateInvestment(context.Background(), createCmd())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fx.svc.Sign(context.Background(), "i-1", created.Investment.ID, "Dana Reyes"); err != nil {
		t.Fatal(err)
	}
	inv, err := fx.svc.ConfirmPayment(context.Background(), "i-1", created.Investment.ID)
	if err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if inv.Status != domain.InvestmentStatusPaid || inv.PaymentStatus != domain.PaymentStatusCompleted {
		t.Fatalf("status = %s/%s, want paid/completed", inv.Status, inv.PaymentStatus)
	}
	if len(fx.processor.charges) != 1 {
		t.Fatalf("charges = %d, want 1", len(fx.processor.charges))
	}
	if !fx.processor.charges[0].Amount.Equal(decimal.RequireFromString("1575.00")) {
		t.Fatalf("charged %s, want the total including fee", fx.processor.charges[0].Amount)
	}
}

func TestConfirmPaymentFailureKeepsRecords(t *testing.T) {
	fx := newFixture(t)
	created, err := fx.svc.CreateInvestment(context.Background(), createCmd())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fx.svc.Sign(context.Background(), "i-1", created.Investment.ID, "Dana Reyes"); err != nil {
		t.Fatal(err)
	}
	fx.processor.err = errors.New("gateway timeout")
	_, err = fx.svc.ConfirmPayment(context.Background(), "i-1", created.Investment.ID)
	var ee *domain.ExternalError
	if !errors.As(err, &ee) {
		t.Fatalf("expected ExternalError, got %v", err)
	}
	stored := fx.investments.investments[created.Investment.ID]
	if stored == nil {
		t.Fatal("failed payment must not roll back the investment")
	}
	if stored.PaymentStatus != domain.PaymentStatusFailed {
		t.Fatalf("payment status = %s, want failed", stored.PaymentStatus)
	}

	// Retry after the gateway recovers succeeds against the same record.
	fx.processor.err = nil
	inv, err := fx.svc.ConfirmPayment(context.Background(), "i-1", created.Investment.ID)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if inv.ID != created.Investment.ID {
		t.Fatal("retry must reuse the original investment")
	}
	if fx.investments.creates != 1 {
		t.Fatalf("creates = %d, retries must not duplicate rows", fx.investments.creates)
	}
}

func TestConfirmPaymentRequiresSignature(t *testing.T) {
	fx := newFixture(t)
	fx.investments.investments["inv-unsigned"] = &domain.Investment{
		ID: "inv-unsigned", CampaignID: "c-1", InvestorID: "i-1",
		Amount: decimal.NewFromInt(1500), TotalAmount: decimal.NewFromInt(1575),
		Status: domain.InvestmentStatusPending, PaymentStatus: domain.PaymentStatusPending,
		PaymentMethod: domain.PaymentMethodCard,
	}
	if _, err := fx.svc.ConfirmPayment(context.Background(), "i-1", "inv-unsigned"); err == nil {
		t.Fatal("payment before signature must be blocked")
	}
}

func TestCancelIsExplicit(t *testing.T) {
	fx := newFixture(t)
	created, err := fx.svc.CreateInvestment(context.Background(), createCmd())
	if err != nil {
		t.Fatal(err)
	}
	inv, err := fx.svc.Cancel(context.Background(), "i-1", created.Investment.ID)
	if err != nil {
		t.Fatal(err)
	}
	if inv.Status != domain.InvestmentStatusCancelled {
		t.Fatalf("status = %s, want cancelled", inv.Status)
	}
}

func TestCancelCompletedIsImmutable(t *testing.T) {
	fx := newFixture(t)
	created, err := fx.svc.CreateInvestment(context.Background(), createCmd())
	if err != nil {
		t.Fatal(err)
	}
	fx.investments.investments[created.Investment.ID].Status = domain.InvestmentStatusCompleted
	if _, err := fx.svc.Cancel(context.Background(), "i-1", created.Investment.ID); !errors.Is(err, domain.ErrImmutableRecord) {
		t.Fatalf("expected ErrImmutableRecord, got %v", err)
	}
}

func TestCampaignWithStats(t *testing.T) {
	fx := newFixture(t)
	fx.investments.investments["a"] = &domain.Investment{
		ID: "a", CampaignID: "c-1", InvestorID: "x",
		Amount: decimal.NewFromInt(2500), Status: domain.InvestmentStatusPaid,
	}
	campaign, stats, err := fx.svc.CampaignWithStats(context.Background(), "c-1")
	if err != nil {
		t.Fatal(err)
	}
	if campaign.ID != "c-1" {
		t.Fatalf("campaign id = %s", campaign.ID)
	}
	if !stats.TotalRaised.Equal(decimal.NewFromInt(2500)) || stats.ProgressPercent != 50 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestCreateCampaignValidatesAllocations(t *testing.T) {
	fx := newFixture(t)
	cmd := CreateCampaignCommand{
		FounderID:         "f-1",
		CompanyName:       "Acme Robotics",
		Title:             "Seed round",
		FundingGoal:       decimal.NewFromInt(5000),
		MinimumInvestment: decimal.NewFromInt(25),
		DiscountRate:      decimal.NewFromInt(20),
		Deadline:          time.Now().Add(60 * 24 * time.Hour),
		Allocations:       allocs(40, 30, 20, 5),
		Team:              []domain.TeamMember{{Name: "Dana Reyes", Role: "CEO"}},
	}
	if _, err := fx.svc.CreateCampaign(context.Background(), cmd); err == nil {
		t.Fatal("allocation sum of 95 must be rejected")
	}
	cmd.Allocations = allocs(40, 30, 20, 10)
	campaign, err := fx.svc.CreateCampaign(context.Background(), cmd)
	if err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}
	if campaign.Status != domain.CampaignStatusActive {
		t.Fatalf("status = %s, want active", campaign.Status)
	}
}

func TestUpdateCampaignOwnership(t *testing.T) {
	fx := newFixture(t)
	fx.campaigns.items["c-1"].FounderID = "f-1"
	cmd := CreateCampaignCommand{
		CompanyName:       "Acme Robotics",
		Title:             "Seed round",
		FundingGoal:       decimal.NewFromInt(5000),
		MinimumInvestment: decimal.NewFromInt(25),
		DiscountRate:      decimal.NewFromInt(20),
		Allocations:       allocs(50, 50),
	}
	if _, err := fx.svc.UpdateCampaign(context.Background(), "not-the-founder", "c-1", cmd); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
