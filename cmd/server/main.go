// Package main is the entry point for the overlay portfolio risk and
// execution engine. The service ingests macro-model target weights,
// converts them into risk-bounded futures positions, and serves the
// resulting risk, exposure and rebalancing views over HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/mfontana/overlay/internal/config"
	"github.com/mfontana/overlay/internal/database"
	"github.com/mfontana/overlay/internal/modules/alerts"
	alertshandlers "github.com/mfontana/overlay/internal/modules/alerts/handlers"
	"github.com/mfontana/overlay/internal/modules/ledger"
	ledgerhandlers "github.com/mfontana/overlay/internal/modules/ledger/handlers"
	"github.com/mfontana/overlay/internal/modules/portfolio"
	portfoliohandlers "github.com/mfontana/overlay/internal/modules/portfolio/handlers"
	"github.com/mfontana/overlay/internal/modules/risk"
	"github.com/mfontana/overlay/internal/modules/settings"
	settingshandlers "github.com/mfontana/overlay/internal/modules/settings/handlers"
	"github.com/mfontana/overlay/internal/modules/sizing"
	"github.com/mfontana/overlay/internal/modules/snapshots"
	snapshotshandlers "github.com/mfontana/overlay/internal/modules/snapshots/handlers"
	"github.com/mfontana/overlay/internal/modules/trading"
	tradinghandlers "github.com/mfontana/overlay/internal/modules/trading/handlers"
	"github.com/mfontana/overlay/internal/scheduler"
	"github.com/mfontana/overlay/internal/server"
	"github.com/mfontana/overlay/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})
	logger.SetGlobal(log)

	log.Info().Msg("Starting overlay engine")

	// Three-database layout: config (settings), book (snapshots, active
	// positions, alerts), ledger (trade tickets, daily P&L).
	configDB := mustOpen(log, database.Config{
		Path:    filepath.Join(cfg.DataDir, "config.db"),
		Profile: database.ProfileStandard,
		Name:    "config",
	})
	defer configDB.Close()

	bookDB := mustOpen(log, database.Config{
		Path:    filepath.Join(cfg.DataDir, "book.db"),
		Profile: database.ProfileStandard,
		Name:    "book",
	})
	defer bookDB.Close()

	ledgerDB := mustOpen(log, database.Config{
		Path:    filepath.Join(cfg.DataDir, "ledger.db"),
		Profile: database.ProfileLedger,
		Name:    "ledger",
	})
	defer ledgerDB.Close()

	// Repositories
	settingsRepo := settings.NewRepository(configDB.Conn(), log)
	snapshotRepo := snapshots.NewRepository(bookDB.Conn(), log)
	ticketRepo := trading.NewTicketRepository(ledgerDB.Conn(), log)
	ledgerRepo := ledger.NewRepository(ledgerDB.Conn(), log)
	alertRepo := alerts.NewRepository(bookDB.Conn(), log)

	// Settings DB values take precedence over environment defaults
	if err := cfg.UpdateFromSettings(settingsRepo); err != nil {
		log.Warn().Err(err).Msg("Failed to update configuration from settings")
	}

	// Engine services
	sizer := sizing.New(log)
	riskEngine := risk.NewEngine(log)
	portfolioService := portfolio.NewService(sizer, riskEngine, log)
	alertService := alerts.NewService(log)

	// HTTP server
	srv := server.New(server.Config{
		Log:    log,
		Config: cfg,
		Handlers: server.Handlers{
			Portfolio: portfoliohandlers.NewHandler(portfolioService, snapshotRepo, ticketRepo, alertService, alertRepo, log),
			Snapshots: snapshotshandlers.NewHandler(snapshotRepo, log),
			Trading:   tradinghandlers.NewHandler(ticketRepo, log),
			Ledger:    ledgerhandlers.NewHandler(ledgerRepo, log),
			Alerts:    alertshandlers.NewHandler(alertRepo, log),
			Settings:  settingshandlers.NewHandler(settingsRepo, log),
		},
	})

	// Maintenance scheduler
	sched := scheduler.New(log)
	if err := sched.RegisterSnapshotRetention(snapshotRepo, cfg.SnapshotRetentionDays); err != nil {
		log.Error().Err(err).Msg("Failed to register snapshot retention job")
	}
	sched.Start()

	// Run server; shut down on SIGINT/SIGTERM
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Server stopped with error")
		}
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("Overlay engine stopped")
}

// mustOpen opens and migrates a database or exits.
func mustOpen(log zerolog.Logger, cfg database.Config) *database.DB {
	db, err := database.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("database", cfg.Name).Msg("Failed to open database")
	}
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Str("database", cfg.Name).Msg("Failed to migrate database")
	}
	return db
}
