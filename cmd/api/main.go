package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"equityfund/internal/adapter/repo"
	"equityfund/internal/funding"
	"equityfund/internal/http/handlers"
	httpapi "equityfund/internal/http/httpapi"
	"equityfund/internal/infra"
	"equityfund/internal/infra/credentials"
	"equityfund/internal/infra/geoip"
	"equityfund/internal/middleware"
	"equityfund/internal/providers/payment"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)

	// The gateway key comes from the environment when set, otherwise from the
	// credentials store so it can be rotated without a redeploy.
	paygateKey := strings.TrimSpace(cfg.PaygateAPIKey)
	if paygateKey == "" {
		credStore := credentials.NewStore(runner)
		keyFromStore, err := credStore.PaygateAPIKey(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to load payment gateway key from store")
		} else {
			paygateKey = keyFromStore
		}
	}
	if paygateKey == "" {
		logger.Fatal().Msg("payment gateway key missing; set PAYGATE_API_KEY or store one with cmd/paygatekey")
	}
	processor, err := payment.NewClient(payment.Options{
		APIKey:     paygateKey,
		BaseURL:    cfg.PaygateBaseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure payment gateway client")
	}

	var countryLookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip resolver unavailable, residency tagging degraded")
	} else if resolver != nil {
		countryLookup = resolver.CountryCode
	}

	service := funding.NewService(
		repo.NewCampaignRepository(dbpool),
		repo.NewInvestorRepository(dbpool),
		repo.NewInvestmentRepository(dbpool),
		repo.NewAgreementRepository(dbpool),
		processor,
		cfg.PlatformMaxInvest,
		logger,
	)

	app := handlers.NewApp(service, runner, logger)
	router := httpapi.NewRouter(app, httpapi.Options{
		JWTSecret:       cfg.JWTSecret,
		DefaultLocale:   cfg.DefaultLocale,
		RateLimitPerMin: cfg.RateLimitPerMin,
		AllowedOrigins:  cfg.AllowedOrigins,
		CountryLookup:   countryLookup,
		Logger:          logger,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
