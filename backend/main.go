package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"neuralnexus/backend/config"
	"neuralnexus/backend/curriculum"
	"neuralnexus/backend/routes"
	"neuralnexus/backend/services"
	"neuralnexus/backend/store"
	"neuralnexus/backend/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := store.InitDB(cfg)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("database handle", zap.Error(err))
	}
	defer sqlDB.Close()

	var locker services.Locker = services.NewKeyedMutex()
	if cfg.Redis.Enabled() {
		client, err := services.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal("redis connect failed", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		defer client.Close()
		locker = services.NewRedisLocker(client)
		logger.Info("using redis user locks", zap.String("addr", cfg.Redis.Addr))
	}

	dispatcher := curriculum.NewDispatcher(
		curriculum.NewWebhookClient(cfg.Curriculum, logger),
		cfg.Curriculum.Workers,
		cfg.Curriculum.QueueSize,
		logger,
	)
	if cfg.Curriculum.WebhookURL == "" {
		logger.Warn("CURRICULUM_WEBHOOK_URL not set, curriculum generation disabled")
	}

	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTLifetime)
	tracker := services.NewTracker(services.Deps{
		Tx:         store.NewTx(db),
		Users:      store.NewUserRepo(db),
		Goals:      store.NewGoalRepo(db),
		Progress:   store.NewProgressRepo(db),
		Locker:     locker,
		Tokens:     tokens,
		Curriculum: dispatcher,
		Log:        logger.Named("tracker"),
		Location:   cfg.Location,
	})
	dispatcher.Start(context.Background(), tracker)

	app := routes.NewApp(routes.Deps{
		Tracker:     tracker,
		Tokens:      tokens,
		DB:          sqlDB,
		Log:         logger.Named("http"),
		CORSOrigins: cfg.CORSOrigins,
	})

	go func() {
		if err := app.Listen(":" + cfg.ServerPort); err != nil {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()
	logger.Info("server started", zap.String("port", cfg.ServerPort), zap.String("db", cfg.DBDriver))

	<-ctx.Done()
	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	dispatcher.Stop()
}
