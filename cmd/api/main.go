package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"travel-planner/internal/alerts"
	"travel-planner/internal/cache"
	"travel-planner/internal/config"
	"travel-planner/internal/httpapi"
	"travel-planner/internal/itinerary"
	"travel-planner/internal/logger"
	"travel-planner/internal/search"
	"travel-planner/internal/streams"
	"travel-planner/internal/tracing"
)

func main() {
	cfg, err := config.Load(os.Getenv("TP_CONFIG"))
	if err != nil {
		panic(err)
	}

	logger.Init("api")
	defer logger.Sync()

	if cfg.Tracing.Enabled {
		tracing.MustInit("travel-planner-api", cfg.Tracing.Endpoint)
		defer tracing.Shutdown()
	}

	ctx := context.Background()
	rdb, err := streams.Connect(ctx, cfg.Redis)
	if err != nil {
		logger.L().Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	bus := streams.NewBus(rdb)
	results := cache.New(rdb, cfg.Search.ResultTTL)
	searches := search.NewService(bus, results)
	itineraries := itinerary.NewService(cache.New(rdb, cfg.Search.ItineraryTTL), searches)

	app := httpapi.New(httpapi.Deps{
		Searches:    searches,
		Itineraries: itineraries,
		Alerts:      alerts.NewPublisher(bus),
		Bus:         bus,
		Redis:       rdb,
	})

	go func() {
		logger.L().Info("http server listening", zap.String("addr", cfg.Server.Addr))
		if err := app.Listen(cfg.Server.Addr); err != nil {
			logger.L().Fatal("http server stopped", zap.Error(err))
		}
	}()

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
	<-sigint

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.L().Warn("shutdown incomplete", zap.Error(err))
	}
	logger.L().Info("application gracefully shutdown")
}
