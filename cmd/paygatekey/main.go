package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"equityfund/internal/infra"
	"equityfund/internal/infra/credentials"
)

// paygatekey stores the payment-gateway API key in the credentials table so
// the API server can pick it up without a redeploy.
func main() {
	var keyFlag string
	flag.StringVar(&keyFlag, "key", "", "payment gateway API key (falls back to PAYGATE_API_KEY)")
	flag.Parse()

	key := strings.TrimSpace(keyFlag)
	if key == "" {
		key = strings.TrimSpace(os.Getenv("PAYGATE_API_KEY"))
	}
	if key == "" {
		fmt.Fprintln(os.Stderr, "payment gateway API key is required via -key or PAYGATE_API_KEY")
		os.Exit(1)
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create pool: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "paygatekey").Logger()
	store := credentials.NewStore(infra.NewSQLRunner(pool, logger))

	ctxExec, cancelExec := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelExec()
	if err := store.SetPaygateAPIKey(ctxExec, key); err != nil {
		fmt.Fprintf(os.Stderr, "failed to persist payment gateway api key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("payment gateway API key stored successfully")
}
