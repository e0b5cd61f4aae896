package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"fitpack_admin/internal/config"
	"fitpack_admin/internal/data"
	"fitpack_admin/internal/services"
	"fitpack_admin/internal/tasks"
)

// only one worker processes a tick when several are running
const lockKey = "worker:tick"

func main() {
	cfg := config.Load()

	logger, err := services.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Create context that cancels on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database
	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL not set")
	}
	db, err := services.InitDB(cfg.DatabaseURL, false, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	store := data.NewStore(db)

	cache, err := services.NewRedisCache(cfg.RedisURL, logger)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer cache.Close()

	fbApp, _, err := services.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.Storage.Bucket)
	if err != nil {
		logger.Warn("firebase initialization failed", zap.Error(err))
	}
	files, err := services.NewFileStorage(ctx, cfg.Storage, fbApp, logger)
	if err != nil {
		logger.Fatal("failed to initialize file storage", zap.Error(err))
	}

	// Initialize Task Registry
	registry := tasks.DefineTasks(tasks.NewRegistry())
	runner := tasks.NewRunner(store, registry, tasks.Deps{
		Orders:           store,
		Files:            files,
		Mailer:           services.NewEmailService(cfg.SMTP),
		Currency:         cfg.CurrencySymbol,
		ExportRecipients: cfg.ExportEmails,
		Log:              logger,
	}, logger)

	tick := func() {
		ok, err := cache.SetNX(ctx, lockKey, time.Now().Unix(), 4*time.Minute)
		if err != nil {
			logger.Error("acquire worker lock", zap.Error(err))
			return
		}
		if !ok {
			logger.Debug("another worker holds the tick")
			return
		}
		defer func() {
			if err := cache.Delete(context.Background(), lockKey); err != nil {
				logger.Warn("release worker lock", zap.Error(err))
			}
		}()
		runner.ProcessDue(ctx)
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.WorkerSchedule, tick); err != nil {
		logger.Fatal("invalid WORKER_SCHEDULE", zap.String("schedule", cfg.WorkerSchedule), zap.Error(err))
	}

	// run once on start, then on schedule
	tick()
	c.Start()
	logger.Info("worker started", zap.String("schedule", cfg.WorkerSchedule))

	<-ctx.Done()
	logger.Info("shutting down worker")
	<-c.Stop().Done()
}
