package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hamlet-bot/hamlet/internal/job"
	"github.com/hamlet-bot/hamlet/internal/models"
	"github.com/hamlet-bot/hamlet/internal/storage/postgres"
	"github.com/hamlet-bot/hamlet/middleware"
)

// noopKicker covers the split deployment where the API runs in a
// different process from the worker: the worker's periodic tick picks
// the job up instead.
type noopKicker struct{}

func (noopKicker) Kick() {}

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()

	dbCfg, err := postgres.LoadConfigFromEnv(ctx)
	if err != nil {
		log.Fatal("failed to load database config", zap.Error(err))
	}

	db, err := postgres.ConnectDB(dbCfg, log)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}

	if err := postgres.MigrateModels(db, &models.Job{}, &models.VillageBaseline{}); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	repo := postgres.NewJobRepository(db)
	service := job.NewJobService(repo, noopKicker{})
	handler := job.NewJobHandler(service)

	r := gin.Default()
	r.Use(middleware.ErrorHandler())

	r.POST("/jobs", handler.Create)
	r.GET("/jobs/:id", handler.Get)
	r.GET("/jobs", handler.List)

	addr := os.Getenv("API_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	log.Info("api listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
