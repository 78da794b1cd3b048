// Command reconcile rebuilds derived progress counters for every user.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"neuralnexus/backend/config"
	"neuralnexus/backend/services"
	"neuralnexus/backend/store"
	"neuralnexus/backend/utils"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	logger, err := utils.InitLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.InitDB(cfg)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}

	tracker := services.NewTracker(services.Deps{
		Tx:       store.NewTx(db),
		Users:    store.NewUserRepo(db),
		Goals:    store.NewGoalRepo(db),
		Progress: store.NewProgressRepo(db),
		Log:      logger.Named("reconcile"),
		Location: cfg.Location,
	})

	updated, err := tracker.ReconcileAll(ctx)
	if err != nil {
		logger.Fatal("reconcile failed", zap.Error(err))
	}
	logger.Info("reconcile finished", zap.Int("updated", updated))
}
