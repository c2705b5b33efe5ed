package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"equityfund/internal/domain"
	"equityfund/internal/funding"
	"equityfund/internal/infra"
	"equityfund/internal/sqlinline"
	"equityfund/internal/storage"
)

// The worker settles campaigns whose deadline has passed: a campaign that met
// its goal becomes funded and its signed agreement documents are exported to
// the file store; one that fell short is closed.
type settler struct {
	ctx          context.Context
	runner       *infra.SQLRunner
	logger       infra.Logger
	store        *storage.FileStore
	pollInterval time.Duration
}

type expiredCampaign struct {
	ID          string
	CompanyName string
	FundingGoal decimal.Decimal
}

var errNoCampaignDue = errors.New("no campaign due for settlement")

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	storagePath := cfg.AgreementStoragePath
	if !filepath.IsAbs(storagePath) {
		if abs, err := filepath.Abs(storagePath); err == nil {
			storagePath = abs
		}
	}
	fileStore, err := storage.NewFileStore(storagePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}

	w := &settler{
		ctx:          ctx,
		runner:       infra.NewSQLRunner(pool, logger),
		logger:       logger,
		store:        fileStore,
		pollInterval: cfg.WorkerPollInterval,
	}
	if err := w.Run(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

func (w *settler) Run() error {
	w.logger.Info().Msg("worker: started")
	for {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		campaign, err := w.claimExpired()
		if err != nil {
			if !errors.Is(err, errNoCampaignDue) {
				w.logger.Error().Err(err).Msg("worker: failed to claim campaign")
			}
			select {
			case <-w.ctx.Done():
				return w.ctx.Err()
			case <-time.After(w.pollInterval):
			}
			continue
		}

		w.settle(campaign)
	}
}

func (w *settler) claimExpired() (expiredCampaign, error) {
	row := w.runner.QueryRow(w.ctx, sqlinline.QWorkerClaimExpiredCampaign)
	var c expiredCampaign
	var goal string
	if err := row.Scan(&c.ID, &c.CompanyName, &goal); err != nil {
		if infra.IsNoRows(err) {
			return expiredCampaign{}, errNoCampaignDue
		}
		return expiredCampaign{}, err
	}
	parsed, err := decimal.NewFromString(goal)
	if err != nil {
		return expiredCampaign{}, fmt.Errorf("campaign %s: funding goal: %w", c.ID, err)
	}
	c.FundingGoal = parsed
	return c, nil
}

func (w *settler) settle(c expiredCampaign) {
	raised, err := w.raised(c.ID)
	if err != nil {
		w.logger.Error().Err(err).Str("campaign_id", c.ID).Msg("worker: failed to compute raised amount")
		return
	}

	status := domain.CampaignStatusClosed
	if raised.GreaterThanOrEqual(c.FundingGoal) {
		status = domain.CampaignStatusFunded
	}
	if _, err := w.runner.Exec(w.ctx, sqlinline.QWorkerSettleCampaign, c.ID, string(status)); err != nil {
		w.logger.Error().Err(err).Str("campaign_id", c.ID).Msg("worker: failed to settle campaign")
		return
	}
	w.logger.Info().
		Str("campaign_id", c.ID).
		Str("status", string(status)).
		Str("raised", raised.String()).
		Str("goal", c.FundingGoal.String()).
		Msg("worker: campaign settled")

	if status == domain.CampaignStatusFunded {
		if err := w.exportAgreements(c); err != nil {
			w.logger.Error().Err(err).Str("campaign_id", c.ID).Msg("worker: agreement export failed")
		}
	}
}

func (w *settler) raised(campaignID string) (decimal.Decimal, error) {
	row := w.runner.QueryRow(w.ctx, sqlinline.QWorkerCampaignRaised, campaignID)
	var total string
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(total)
}

func (w *settler) exportAgreements(c expiredCampaign) error {
	rows, err := w.runner.Query(w.ctx, sqlinline.QWorkerSignedAgreements, c.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	exported := 0
	for rows.Next() {
		var agreementID, amountText, document string
		if err := rows.Scan(&agreementID, &amountText, &document); err != nil {
			return err
		}
		amount, err := decimal.NewFromString(amountText)
		if err != nil {
			return fmt.Errorf("agreement %s: amount: %w", agreementID, err)
		}
		key := fmt.Sprintf("agreements/%s/%s_%s", c.ID, agreementID, funding.ExportFilename(c.CompanyName, amount))
		if _, err := w.store.Write(w.ctx, key, []byte(document)); err != nil {
			return err
		}
		exported++
	}
	if err := rows.Err(); err != nil {
		return err
	}
	w.logger.Info().Str("campaign_id", c.ID).Int("documents", exported).Msg("worker: agreements exported")
	return nil
}
