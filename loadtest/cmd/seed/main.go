package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-deadline-monitor/internal/config"
	"github.com/KasumiMercury/primind-deadline-monitor/internal/infra/repository"
	"github.com/KasumiMercury/primind-deadline-monitor/loadtest/internal/seed"
)

func main() {
	os.Exit(run())
}

func run() int {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	ctx := context.Background()

	dbConfig := config.LoadDatabaseConfig()
	if err := dbConfig.Validate(); err != nil {
		slog.Error("invalid database configuration", slog.String("error", err.Error()))
		return 1
	}

	db, err := repository.OpenDatabase(ctx, dbConfig.URL, repository.DatabaseOptions{
		MaxOpenConns:    dbConfig.MaxOpenConns,
		MaxIdleConns:    dbConfig.MaxIdleConns,
		ConnMaxLifetime: dbConfig.ConnMaxLifetime,
	})
	if err != nil {
		slog.Error("failed to connect database", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		_ = repository.CloseDatabase(db)
	}()

	if err := repository.AutoMigrate(ctx, db); err != nil {
		slog.Error("failed to migrate schema", slog.String("error", err.Error()))
		return 1
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8090"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	seed.NewHandler(repository.NewRequestSeeder(db)).Register(r.Group("/loadtest"))

	slog.Info("starting seed server", slog.String("port", port))
	if err := r.Run(":" + port); err != nil {
		slog.Error("seed server exited with error", slog.String("error", err.Error()))
		return 1
	}

	return 0
}
