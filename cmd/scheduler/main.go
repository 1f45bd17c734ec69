package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/segyhp/library-engine/internal/config"
	"github.com/segyhp/library-engine/internal/repository"
	"github.com/segyhp/library-engine/internal/scheduler"
	"github.com/segyhp/library-engine/internal/service"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger(os.Stdout).With("component", "scheduler")
	slog.SetDefault(logger)
	logger.Info("starting library scheduler")

	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	db.SetMaxOpenConns(2)

	store := repository.NewStore(db)
	passes := service.NewPassService(store.Repositories, cfg, logger)
	circulation := service.NewCirculationService(store.Repositories, store, cfg, logger)

	s, err := scheduler.New(cfg, passes, circulation, logger)
	if err != nil {
		logger.Error("failed to schedule jobs", "error", err)
		os.Exit(1)
	}

	s.Start()
	logger.Info("scheduler started",
		"timezone", cfg.Scheduler.Timezone,
		"pass_expiry", cfg.Scheduler.PassExpirySpec,
		"overdue_report", cfg.Scheduler.OverdueSpec,
	)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down scheduler")
	<-s.Stop().Done()
	logger.Info("scheduler stopped")
}
