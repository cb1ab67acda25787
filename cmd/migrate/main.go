// Command migrate copies a full ledger out of a Google spreadsheet into
// Postgres: every month worksheet's transactions plus the app_settings rows.
// It is a one-shot tool for switching store backends; run it once, point
// STORE_BACKEND at postgres and retire the spreadsheet.
package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/yhhuang/moneybook/internal/config"
	"github.com/yhhuang/moneybook/internal/database"
	"github.com/yhhuang/moneybook/internal/ledger"
	ledgerPostgres "github.com/yhhuang/moneybook/internal/ledger/store/postgres"
	ledgerSheets "github.com/yhhuang/moneybook/internal/ledger/store/sheets"
	"github.com/yhhuang/moneybook/internal/logger"
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

	ctx := context.Background()

	svc, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.Sheets.CredentialsFile))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create sheets client")
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	var (
		source       = ledgerSheets.New(svc, cfg.Sheets.SpreadsheetID)
		dest         = ledgerPostgres.New(db)
		settingsSrc  = settingsSheets.New(svc, cfg.Sheets.SpreadsheetID)
		settingsDest = settingsPostgres.New(db)
	)

	keys, err := source.ListPartitions(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to list worksheets")
	}

	total := 0

	for _, key := range keys {
		if _, err := ledger.ParsePartitionKey(key); err != nil {
			// app_settings and anything else that is not a month tab.
			continue
		}

		records, err := source.ReadPartition(ctx, key)
		if err != nil {
			log.Fatal().Err(err).Str("partition", key).Msg("failed to read worksheet")
		}

		if err := dest.CreatePartition(ctx, key); err != nil {
			log.Fatal().Err(err).Str("partition", key).Msg("failed to create partition")
		}

		for _, rec := range records {
			if err := dest.AppendRecord(ctx, key, rec); err != nil {
				log.Fatal().Err(err).Str("partition", key).Str("id", rec[ledger.FieldID]).
					Msg("failed to copy record")
			}
		}

		total += len(records)
		log.Info().Str("partition", key).Int("records", len(records)).Msg("copied partition")
	}

	entries, err := settingsSrc.ReadAll(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("no settings worksheet found, skipping settings")
		os.Exit(0)
	}

	for _, entry := range entries {
		if err := settingsDest.Put(ctx, entry); err != nil {
			log.Fatal().Err(err).Str("section", entry.Section).Str("key", entry.Key).
				Msg("failed to copy setting")
		}
	}

	log.Info().Int("transactions", total).Int("settings", len(entries)).Msg("migration complete")
}
