package main

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"recipebox/internal/api"
	"recipebox/internal/config"
	"recipebox/internal/importer"
	"recipebox/internal/recipe"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("failed to load config: %w", err))
	}

	logger, err := buildLogger(cfg.Log.Level)
	if err != nil {
		panic(fmt.Errorf("failed to build logger: %w", err))
	}
	defer func() { _ = logger.Sync() }()

	store, err := recipe.NewPostgresStore(cfg.Database.URL)
	if err != nil {
		logger.Fatal("failed to create postgres store", zap.Error(err))
	}

	imp := importer.New(logger, importer.Options{
		Timeout:    cfg.Import.Timeout,
		UserAgent:  cfg.Import.UserAgent,
		SocialHost: cfg.Import.SocialHost,
	})

	handler := api.NewHandler(store, imp, logger)
	router := api.NewRouter(handler, logger, cfg.Server.AllowOrigins)

	logger.Info("starting server", zap.Int("port", cfg.Server.Port))
	if err := router.Run(cfg.Server.Addr()); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
