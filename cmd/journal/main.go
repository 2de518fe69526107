package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camuig/trade-journal/internal/config"
	"github.com/camuig/trade-journal/internal/ledger"
	"github.com/camuig/trade-journal/internal/logger"
	"github.com/camuig/trade-journal/internal/moex"
	"github.com/camuig/trade-journal/internal/storage"
	"github.com/camuig/trade-journal/internal/telegram"
	"github.com/camuig/trade-journal/internal/web"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dbPath := flag.String("db", "", "path to SQLite database (overrides database.path)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	log := logger.New(cfg.Logging.Level)
	log.Info("starting trade journal", "db", cfg.Database.Path, "currency", cfg.Ledger.DefaultCurrency)

	db, err := storage.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}
	repo := storage.NewRepository(db)

	notifier := telegram.NewNotifier(cfg, log)

	var quotes ledger.QuoteSource
	if cfg.Quotes.Enabled {
		quotes = moex.NewClient(cfg, log)
		log.Infof("mark price quotes enabled for %d ticker(s) on %s", len(cfg.Quotes.Tickers), cfg.Quotes.Board)
	}

	journal := ledger.New(repo, notifier, quotes, cfg, log)
	webServer := web.NewServer(journal, cfg, log)

	go func() {
		if err := webServer.Start(); err != nil {
			log.Error("web server error", "error", err)
		}
	}()

	notifier.NotifyStatus("📒 Trade journal started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutdown signal received", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := webServer.Shutdown(shutdownCtx); err != nil {
		log.Error("web server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("database close error", "error", err)
		}
	}

	notifier.NotifyStatus("🛑 Trade journal stopped")
	log.Info("trade journal stopped")
}
