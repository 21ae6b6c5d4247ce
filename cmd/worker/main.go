package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"travel-planner/internal/alerts"
	"travel-planner/internal/cache"
	"travel-planner/internal/config"
	"travel-planner/internal/logger"
	"travel-planner/internal/provider/serpapi"
	"travel-planner/internal/search"
	"travel-planner/internal/streams"
	"travel-planner/internal/tracing"
)

func main() {
	cfg, err := config.Load(os.Getenv("TP_CONFIG"))
	if err != nil {
		panic(err)
	}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	logger.Init("worker")
	defer logger.Sync()

	if cfg.Tracing.Enabled {
		tracing.MustInit("travel-planner-worker", cfg.Tracing.Endpoint)
		defer tracing.Shutdown()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := streams.Connect(ctx, cfg.Redis)
	if err != nil {
		logger.L().Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	client, err := serpapi.New(cfg.SerpAPI)
	if err != nil {
		logger.L().Fatal("failed to init provider", zap.Error(err))
	}

	bus := streams.NewBus(rdb)
	worker := search.NewWorker(
		bus,
		cache.New(rdb, cfg.Search.ResultTTL),
		client,
		client,
		alerts.NewPublisher(bus),
	)

	logger.L().Info("worker started")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.L().Fatal("worker stopped", zap.Error(err))
	}
	logger.L().Info("worker gracefully shutdown")
}
