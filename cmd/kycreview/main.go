package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"equityfund/internal/domain"
	"equityfund/internal/infra"
	"equityfund/internal/sqlinline"
)

// kycreview records the outcome of an external identity review for an
// investor. Investments gated on an insufficient tier become possible only
// after this out-of-band update.
func main() {
	var (
		idFlag     string
		emailFlag  string
		tierFlag   string
		statusFlag string
	)

	flag.StringVar(&idFlag, "id", "", "investor ID to update (UUID)")
	flag.StringVar(&emailFlag, "email", "", "investor email to update")
	flag.StringVar(&tierFlag, "tier", "tier2", "verified tier to record (tier1, tier2, tier3)")
	flag.StringVar(&statusFlag, "status", "approved", "review outcome (approved, rejected, pending)")
	flag.Parse()

	investorID := strings.TrimSpace(idFlag)
	email := strings.TrimSpace(emailFlag)
	tier := strings.TrimSpace(strings.ToLower(tierFlag))
	status := strings.TrimSpace(strings.ToLower(statusFlag))

	if investorID == "" && email == "" {
		exitWithError(errors.New("either -id or -email must be provided"))
	}
	switch domain.KYCTier(tier) {
	case domain.KYCTier1, domain.KYCTier2, domain.KYCTier3:
	default:
		exitWithError(fmt.Errorf("unsupported tier %q", tierFlag))
	}
	switch domain.KYCStatus(status) {
	case domain.KYCStatusApproved, domain.KYCStatusRejected, domain.KYCStatusPending:
	default:
		exitWithError(fmt.Errorf("unsupported status %q", statusFlag))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "kycreview").Logger()
	runner := infra.NewSQLRunner(pool, logger)

	lookupCtx, cancelLookup := context.WithTimeout(context.Background(), 5*time.Second)
	var current struct {
		ID     string
		Email  string
		Status string
		Tier   string
	}
	var scanErr error
	if investorID != "" {
		row := runner.QueryRow(lookupCtx, sqlinline.QSelectInvestorKYCByID, investorID)
		scanErr = row.Scan(&current.ID, &current.Email, &current.Status, &current.Tier)
	} else {
		row := runner.QueryRow(lookupCtx, sqlinline.QSelectInvestorKYCByEmail, email)
		scanErr = row.Scan(&current.ID, &current.Email, &current.Status, &current.Tier)
	}
	cancelLookup()
	if scanErr != nil {
		exitWithError(fmt.Errorf("failed to load investor: %w", scanErr))
	}

	updateCtx, cancelUpdate := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelUpdate()
	row := runner.QueryRow(updateCtx, sqlinline.QUpdateInvestorKYC, current.ID, status, tier)

	var updated struct {
		ID     string
		Email  string
		Status string
		Tier   string
	}
	if err := row.Scan(&updated.ID, &updated.Email, &updated.Status, &updated.Tier); err != nil {
		exitWithError(fmt.Errorf("failed to record review outcome: %w", err))
	}

	fmt.Printf("Investor %s (%s): %s -> %s, tier %s -> %s\n",
		updated.ID, updated.Email, current.Status, updated.Status, current.Tier, updated.Tier)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
