package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rahulk736694/typeface-finance-app/internal/auth"
	"github.com/rahulk736694/typeface-finance-app/internal/categorize"
	categorizeStore "github.com/rahulk736694/typeface-finance-app/internal/categorize/store"
	"github.com/rahulk736694/typeface-finance-app/internal/config"
	"github.com/rahulk736694/typeface-finance-app/internal/database"
	appHttp "github.com/rahulk736694/typeface-finance-app/internal/http"
	categorizeHandler "github.com/rahulk736694/typeface-finance-app/internal/http/categorize"
	importHandler "github.com/rahulk736694/typeface-finance-app/internal/http/importcsv"
	ledgerHandler "github.com/rahulk736694/typeface-finance-app/internal/http/ledger"
	recurringHandler "github.com/rahulk736694/typeface-finance-app/internal/http/recurring"
	"github.com/rahulk736694/typeface-finance-app/internal/ledger"
	ledgerStore "github.com/rahulk736694/typeface-finance-app/internal/ledger/store"
	"github.com/rahulk736694/typeface-finance-app/internal/recurring"
	recurringStore "github.com/rahulk736694/typeface-finance-app/internal/recurring/store"
	"github.com/rahulk736694/typeface-finance-app/internal/statement"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	maxAmount, err := cfg.MaxAmount()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	var (
		ledgerService     = ledger.NewService(ledgerStore.New(db), maxAmount)
		recurringService  = recurring.NewService(recurringStore.New(db), maxAmount)
		categorizeService = categorize.NewService(categorizeStore.New(db))
		statementParser   = statement.NewParser()
		authManager       = auth.NewManager(cfg.Auth.Secret, cfg.Auth.TTL)
	)

	var (
		entriesH    = ledgerHandler.NewHandler(ledgerService)
		recurringH  = recurringHandler.NewHandler(recurringService)
		importH     = importHandler.NewHandler(statementParser, ledgerService, categorizeService)
		categorizeH = categorizeHandler.NewHandler(categorizeService)
	)

	router := appHttp.New(authManager, entriesH, recurringH, importH, categorizeH)

	if cfg.Scheduler.Enabled {
		scheduler := recurring.NewScheduler(recurringService, cfg.Scheduler.Interval)
		scheduler.Start()
		defer scheduler.Stop()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "addr", server.Addr)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	return nil
}
