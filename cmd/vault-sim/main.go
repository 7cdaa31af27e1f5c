package main

import (
	"context"
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-vault/pkg/app"
	"github.com/code-payments/code-vault/pkg/data/account"
	"github.com/code-payments/code-vault/pkg/data/account/memory"
	account_postgres "github.com/code-payments/code-vault/pkg/data/account/postgres"
	pg "github.com/code-payments/code-vault/pkg/database/postgres"
	"github.com/code-payments/code-vault/pkg/metrics"
	"github.com/code-payments/code-vault/pkg/solana/runtime"
)

var (
	configPath = flag.String("config", "config.yaml", "configuration file path")
	deposit    = flag.Uint64("deposit", 4, "lamports to deposit into the vault")
	airdrop    = flag.Uint64("airdrop", 10, "lamports to airdrop to the owner, on top of fees")
)

func main() {
	flag.Parse()

	logger := logrus.StandardLogger().WithField("type", "cmd/vault-sim")

	config, err := app.LoadConfig(*configPath)
	if err != nil {
		logger.WithError(err).Error("failed to load config")
		os.Exit(1)
	}

	metricsProvider, err := app.NewMetricsProvider(config)
	if err != nil {
		logger.WithError(err).Error("failed to create metrics provider")
		os.Exit(1)
	}
	if metricsProvider != nil {
		defer metricsProvider.Shutdown(shutdownTimeout)
	}

	app.ConfigureLogger(config, metricsProvider)

	store, closeStore, err := newStore(config)
	if err != nil {
		logger.WithError(err).Error("failed to create account store")
		os.Exit(1)
	}
	defer closeStore()

	sim, err := newSimulator(runtime.NewBank(store, runtime.WithEnvConfigs()), os.Stdout)
	if err != nil {
		logger.WithError(err).Error("failed to create simulator")
		os.Exit(1)
	}

	ctx := metrics.WithApplication(context.Background(), metricsProvider)
	if err := sim.Run(ctx, *airdrop, *deposit); err != nil {
		logger.WithError(err).Error("simulation failed")
		os.Exit(1)
	}
}

func newStore(config *app.BaseConfig) (account.Store, func(), error) {
	if !config.HasPostgres() {
		return memory.New(), func() {}, nil
	}

	db, err := pg.NewFromConfig(&config.Postgres)
	if err != nil {
		return nil, nil, err
	}
	return account_postgres.New(db), func() { db.Close() }, nil
}
