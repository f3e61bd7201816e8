package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/hamlet-bot/hamlet/internal/config"
	"github.com/hamlet-bot/hamlet/internal/media"
	"github.com/hamlet-bot/hamlet/internal/models"
	"github.com/hamlet-bot/hamlet/internal/queue"
	"github.com/hamlet-bot/hamlet/internal/storage/postgres"
	"github.com/hamlet-bot/hamlet/internal/village"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbCfg, err := postgres.LoadConfigFromEnv(ctx)
	if err != nil {
		log.Fatal("failed to load database config", zap.Error(err))
	}
	queueCfg, err := config.LoadQueueConfig(ctx)
	if err != nil {
		log.Fatal("failed to load queue config", zap.Error(err))
	}

	db, err := postgres.ConnectDB(dbCfg, log)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}

	if err := postgres.MigrateModels(db, &models.Job{}, &models.VillageBaseline{}); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	repo := postgres.NewJobRepository(db)
	baselines := postgres.NewBaselineRepository(db)
	generator := newGenerator()
	executor := village.NewExecutor(repo, baselines, generator)
	scheduler := queue.NewScheduler(repo, executor, queueCfg, log)

	log.Info("worker starting")
	scheduler.Run(ctx)
	log.Info("shutdown complete")
}

// newGenerator returns the provider client. The real client lives in the
// deployment repo with the API credentials; a build without it gets a
// generator that rejects every call.
func newGenerator() media.Generator {
	return media.Unconfigured{}
}
