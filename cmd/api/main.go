package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/yhhuang/moneybook/internal/auth"
	"github.com/yhhuang/moneybook/internal/config"
	"github.com/yhhuang/moneybook/internal/database"
	moneybookHttp "github.com/yhhuang/moneybook/internal/http"
	authHandler "github.com/yhhuang/moneybook/internal/http/auth"
	ledgerHandler "github.com/yhhuang/moneybook/internal/http/ledger"
	recurringHandler "github.com/yhhuang/moneybook/internal/http/recurring"
	settingsHandler "github.com/yhhuang/moneybook/internal/http/settings"
	"github.com/yhhuang/moneybook/internal/ledger"
	ledgerPostgres "github.com/yhhuang/moneybook/internal/ledger/store/postgres"
	ledgerSheets "github.com/yhhuang/moneybook/internal/ledger/store/sheets"
	"github.com/yhhuang/moneybook/internal/logger"
	"github.com/yhhuang/moneybook/internal/recurring"
	"github.com/yhhuang/moneybook/internal/settings"
	settingsPostgres "github.com/yhhuang/moneybook/internal/settings/store/postgres"
	settingsSheets "github.com/yhhuang/moneybook/internal/settings/store/sheets"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ledgerStore, settingsStore, cleanup, err := buildStores(context.Background(), cfg)
	if err != nil {
		// Nothing can be loaded or saved without the store; this is the one
		// failure that takes the whole session down.
		log.Fatal().Err(err).Msg("failed to connect to store")
	}
	defer cleanup()

	var (
		settingsService  = settings.NewService(settingsStore, cfg.Store.CacheTTL, log)
		ledgerService    = ledger.NewService(ledgerStore, settingsService, cfg.Store.CacheTTL, log)
		recurringService = recurring.NewService(ledgerService, settingsService, log)
		authService      = auth.NewService(settingsService, cfg.Auth.Secret, cfg.Auth.SessionTTL)
	)

	var (
		authH      = authHandler.NewHandler(authService, log)
		ledgerH    = ledgerHandler.NewHandler(ledgerService, settingsService, log)
		recurringH = recurringHandler.NewHandler(recurringService, log)
		settingsH  = settingsHandler.NewHandler(settingsService, log)
	)

	router := moneybookHttp.New(authService, authH, ledgerH, recurringH, settingsH)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	log.Info().Str("addr", addr).Str("backend", cfg.Store.Backend).Msg("starting server")

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	if err := server.ListenAndServe(); err != nil {
		log.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}
}

func buildStores(ctx context.Context, cfg *config.Config) (ledger.Store, settings.Store, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendSheets:
		svc, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.Sheets.CredentialsFile))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("creating sheets client: %w", err)
		}

		return ledgerSheets.New(svc, cfg.Sheets.SpreadsheetID),
			settingsSheets.New(svc, cfg.Sheets.SpreadsheetID),
			func() {}, nil

	default:
		db, err := database.New(cfg.ConnectionString())
		if err != nil {
			return nil, nil, nil, err
		}

		return ledgerPostgres.New(db), settingsPostgres.New(db),
			func() { _ = db.Close() }, nil
	}
}
