package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"travel-planner/internal/alerts"
	"travel-planner/internal/cache"
	"travel-planner/internal/logger"
	"travel-planner/internal/metrics"
	"travel-planner/internal/models"
	"travel-planner/internal/provider"
	"travel-planner/internal/streams"
	"travel-planner/internal/tracing"
)

const workerGroup = "search-workers"

var tracer = otel.Tracer("travel-planner/search")

// Worker consumes search-request streams, resolves them against the
// providers, caches the outcome and publishes progress events.
type Worker struct {
	bus      *streams.Bus
	results  *cache.Store
	flights  provider.FlightProvider
	hotels   provider.HotelProvider
	alerts   *alerts.Publisher
	consumer string
}

func NewWorker(bus *streams.Bus, results *cache.Store, fp provider.FlightProvider, hp provider.HotelProvider, pub *alerts.Publisher) *Worker {
	return &Worker{
		bus:      bus,
		results:  results,
		flights:  fp,
		hotels:   hp,
		alerts:   pub,
		consumer: uuid.NewString(),
	}
}

// Run blocks consuming both request streams until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.bus.CreateGroup(ctx, streams.FlightSearchRequested, workerGroup, "0"); err != nil {
		return err
	}
	if err := w.bus.CreateGroup(ctx, streams.HotelSearchRequested, workerGroup, "0"); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.consume(ctx, streams.FlightSearchRequested, w.handleFlights) })
	g.Go(func() error { return w.consume(ctx, streams.HotelSearchRequested, w.handleHotels) })
	return g.Wait()
}

func (w *Worker) consume(ctx context.Context, stream string, handle func(context.Context, map[string]any)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		entries, err := w.bus.ReadGroup(ctx, stream, workerGroup, w.consumer)
		if err != nil {
			if streams.IsNoGroup(err) {
				// The request stream expired while idle and took the
				// group with it; rebuild so new requests are not lost.
				if cerr := w.bus.CreateGroup(ctx, stream, workerGroup, "0"); cerr != nil && ctx.Err() == nil {
					logger.L().Warn("failed to recreate consumer group", zap.String("stream", stream), zap.Error(cerr))
				}
				continue
			}
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				logger.L().Warn("stream read failed", zap.String("stream", stream), zap.Error(err))
			}
			continue
		}

		for _, entry := range entries {
			for _, msg := range entry.Messages {
				go w.handleMessage(ctx, stream, msg.ID, msg.Values, handle)
			}
		}
	}
}

func (w *Worker) handleMessage(ctx context.Context, stream, messageID string, values map[string]any, handle func(context.Context, map[string]any)) {
	ctx = tracing.ExtractFromJSON(ctx, str(values, "trace_context"))
	ctx, span := tracer.Start(ctx, "worker.handleMessage")
	defer span.End()

	handle(ctx, values)

	if err := w.bus.Ack(ctx, stream, workerGroup, messageID); err != nil {
		span.RecordError(err)
		logger.WithTrace(ctx).Warn("failed to ack message", zap.String("message_id", messageID), zap.Error(err))
	}
}

func (w *Worker) handleFlights(ctx context.Context, values map[string]any) {
	ctx, span := tracer.Start(ctx, "worker.handleFlights")
	defer span.End()

	searchID := str(values, "search_id")
	userID := str(values, "user_id")
	w.publishEvent(ctx, searchID, map[string]any{"status": string(models.StatusProcessing)})

	var req models.FlightSearchRequest
	if err := json.Unmarshal([]byte(str(values, "request")), &req); err != nil {
		w.fail(ctx, span, models.KindFlights, searchID, err)
		return
	}

	flights, err := w.flights.SearchFlights(ctx, req)
	if err != nil {
		w.fail(ctx, span, models.KindFlights, searchID, err)
		return
	}

	sort.SliceStable(flights, func(i, j int) bool {
		return flights[i].Price.Amount < flights[j].Price.Amount
	})

	res := FlightResults{
		SearchID:    searchID,
		Request:     req,
		Status:      models.StatusCompleted,
		Flights:     flights,
		CompletedAt: time.Now().UTC(),
	}
	if err := w.results.Set(ctx, CacheKey(models.KindFlights, searchID), res); err != nil {
		logger.WithTrace(ctx).Warn("failed to cache flight results", zap.Error(err))
	}

	w.trackBestPrice(ctx, userID, req, flights)
	w.complete(ctx, models.KindFlights, searchID, flights)
}

func (w *Worker) handleHotels(ctx context.Context, values map[string]any) {
	ctx, span := tracer.Start(ctx, "worker.handleHotels")
	defer span.End()

	searchID := str(values, "search_id")
	w.publishEvent(ctx, searchID, map[string]any{"status": string(models.StatusProcessing)})

	var req models.HotelSearchRequest
	if err := json.Unmarshal([]byte(str(values, "request")), &req); err != nil {
		w.fail(ctx, span, models.KindHotels, searchID, err)
		return
	}

	hotels, err := w.hotels.SearchHotels(ctx, req)
	if err != nil {
		w.fail(ctx, span, models.KindHotels, searchID, err)
		return
	}

	res := HotelResults{
		SearchID:    searchID,
		Request:     req,
		Status:      models.StatusCompleted,
		Hotels:      hotels,
		CompletedAt: time.Now().UTC(),
	}
	if err := w.results.Set(ctx, CacheKey(models.KindHotels, searchID), res); err != nil {
		logger.WithTrace(ctx).Warn("failed to cache hotel results", zap.Error(err))
	}

	w.complete(ctx, models.KindHotels, searchID, hotels)
}

func (w *Worker) complete(ctx context.Context, kind models.SearchKind, searchID string, results any) {
	body, err := json.Marshal(results)
	if err != nil {
		logger.WithTrace(ctx).Error("failed to encode results", zap.Error(err))
		body = []byte("[]")
	}

	count := 0
	switch v := results.(type) {
	case []models.Flight:
		count = len(v)
	case []models.Hotel:
		count = len(v)
	}

	w.publishEvent(ctx, searchID, map[string]any{
		"status":        string(models.StatusCompleted),
		"results":       string(body),
		"total_results": count,
	})
	metrics.SearchesCompleted.WithLabelValues(string(kind), "ok").Inc()
}

func (w *Worker) fail(ctx context.Context, span trace.Span, kind models.SearchKind, searchID string, err error) {
	span.RecordError(err)
	logger.WithTrace(ctx).Warn("search failed",
		zap.String("kind", string(kind)),
		zap.String("search_id", searchID),
		zap.Error(err))

	w.publishEvent(ctx, searchID, map[string]any{
		"status": string(models.StatusFailed),
		"error":  err.Error(),
	})
	metrics.SearchesCompleted.WithLabelValues(string(kind), "error").Inc()
}

func (w *Worker) publishEvent(ctx context.Context, searchID string, values map[string]any) {
	values["search_id"] = searchID
	values["trace_context"] = tracing.InjectToJSON(ctx)
	if err := w.bus.Add(ctx, streams.SearchResultStream(searchID), values); err != nil {
		logger.WithTrace(ctx).Warn("failed to publish search event",
			zap.String("search_id", searchID), zap.Error(err))
	}
}

// trackBestPrice remembers the cheapest fare seen per route and date, and
// alerts the requesting user when a later search beats it.
func (w *Worker) trackBestPrice(ctx context.Context, userID string, req models.FlightSearchRequest, flights []models.Flight) {
	if len(flights) == 0 {
		return
	}
	best := flights[0].Price // flights are sorted by price

	var prev models.Price
	err := w.results.Get(ctx, bestPriceKey(req), &prev)
	switch {
	case errors.Is(err, cache.ErrNotFound):
	case err != nil:
		logger.WithTrace(ctx).Warn("failed to read best price", zap.Error(err))
		return
	case best.Amount >= prev.Amount:
		return
	default:
		if userID != "" && w.alerts != nil {
			_, pubErr := w.alerts.Publish(ctx, models.Alert{
				UserID:   userID,
				Severity: models.SeverityInfo,
				Title:    fmt.Sprintf("Price drop: %s to %s", req.From, req.To),
				Message: fmt.Sprintf("Fares for %s dropped from %.2f to %.2f %s.",
					req.DepartureDate, prev.Amount, best.Amount, best.Currency),
			})
			if pubErr != nil {
				logger.WithTrace(ctx).Warn("failed to publish price alert", zap.Error(pubErr))
			}
		}
	}

	if err := w.results.Set(ctx, bestPriceKey(req), best); err != nil {
		logger.WithTrace(ctx).Warn("failed to store best price", zap.Error(err))
	}
}

func str(values map[string]any, key string) string {
	s, _ := values[key].(string)
	return s
}
