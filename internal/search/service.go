// Package search orchestrates the async search pipeline: the API enqueues
// requests onto Redis streams, the worker resolves them against the
// provider and publishes progress to per-search result streams.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"travel-planner/internal/cache"
	"travel-planner/internal/metrics"
	"travel-planner/internal/models"
	"travel-planner/internal/streams"
	"travel-planner/internal/tracing"
)

// FlightResults is the cached outcome of a completed flight search.
type FlightResults struct {
	SearchID    string                     `json:"search_id"`
	Request     models.FlightSearchRequest `json:"request"`
	Status      models.SearchStatus        `json:"status"`
	Flights     []models.Flight            `json:"flights"`
	CompletedAt time.Time                  `json:"completed_at"`
}

type HotelResults struct {
	SearchID    string                    `json:"search_id"`
	Request     models.HotelSearchRequest `json:"request"`
	Status      models.SearchStatus       `json:"status"`
	Hotels      []models.Hotel            `json:"hotels"`
	CompletedAt time.Time                 `json:"completed_at"`
}

// CacheKey is the Redis key under which a completed search's results live.
func CacheKey(kind models.SearchKind, searchID string) string {
	return fmt.Sprintf("search:cache:%s:%s", kind, searchID)
}

func bestPriceKey(req models.FlightSearchRequest) string {
	return fmt.Sprintf("search:bestprice:%s:%s:%s", req.From, req.To, req.DepartureDate)
}

// Service is the API-side half of the pipeline.
type Service struct {
	bus     *streams.Bus
	results *cache.Store
}

func NewService(bus *streams.Bus, results *cache.Store) *Service {
	return &Service{bus: bus, results: results}
}

// EnqueueFlights publishes a flight search request and returns its search ID.
func (s *Service) EnqueueFlights(ctx context.Context, userID string, req models.FlightSearchRequest) (string, error) {
	return s.enqueue(ctx, models.KindFlights, streams.FlightSearchRequested, userID, req)
}

func (s *Service) EnqueueHotels(ctx context.Context, userID string, req models.HotelSearchRequest) (string, error) {
	return s.enqueue(ctx, models.KindHotels, streams.HotelSearchRequested, userID, req)
}

func (s *Service) enqueue(ctx context.Context, kind models.SearchKind, stream, userID string, req any) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode %s request: %w", kind, err)
	}

	searchID := uuid.NewString()
	values := map[string]any{
		"search_id":     searchID,
		"kind":          string(kind),
		"user_id":       userID,
		"request":       string(body),
		"trace_context": tracing.InjectToJSON(ctx),
	}
	if err := s.bus.Add(ctx, stream, values); err != nil {
		return "", fmt.Errorf("enqueue %s search: %w", kind, err)
	}

	metrics.SearchesStarted.WithLabelValues(string(kind)).Inc()
	return searchID, nil
}

// FlightResults returns the cached outcome of a completed search.
// cache.ErrNotFound means the search is unknown, still running, or expired.
func (s *Service) FlightResults(ctx context.Context, searchID string) (FlightResults, error) {
	var res FlightResults
	err := s.results.Get(ctx, CacheKey(models.KindFlights, searchID), &res)
	return res, err
}

func (s *Service) HotelResults(ctx context.Context, searchID string) (HotelResults, error) {
	var res HotelResults
	err := s.results.Get(ctx, CacheKey(models.KindHotels, searchID), &res)
	return res, err
}
