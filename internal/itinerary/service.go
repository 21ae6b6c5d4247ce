package itinerary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"travel-planner/internal/cache"
	"travel-planner/internal/models"
	"travel-planner/internal/search"
)

// ErrNotFound covers both unknown itinerary IDs and referenced searches
// whose results have expired.
var ErrNotFound = errors.New("itinerary: not found")

func storeKey(id string) string {
	return "itinerary:" + id
}

type Service struct {
	store    *cache.Store
	searches *search.Service
}

func NewService(store *cache.Store, searches *search.Service) *Service {
	return &Service{store: store, searches: searches}
}

// Create resolves any referenced search results, builds the plan and saves
// it. Referencing an expired or unknown search is an error rather than a
// silently thinner itinerary.
func (s *Service) Create(ctx context.Context, req models.ItineraryRequest) (models.Itinerary, error) {
	flight, err := s.resolveFlight(ctx, req)
	if err != nil {
		return models.Itinerary{}, err
	}
	hotel, err := s.resolveHotel(ctx, req)
	if err != nil {
		return models.Itinerary{}, err
	}

	it, err := Build(req, flight, hotel)
	if err != nil {
		return models.Itinerary{}, err
	}

	it.ID = uuid.NewString()
	it.CreatedAt = time.Now().UTC()
	if err := s.store.Set(ctx, storeKey(it.ID), it); err != nil {
		return models.Itinerary{}, fmt.Errorf("itinerary: save: %w", err)
	}
	return it, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.Itinerary, error) {
	var it models.Itinerary
	err := s.store.Get(ctx, storeKey(id), &it)
	if errors.Is(err, cache.ErrNotFound) {
		return models.Itinerary{}, ErrNotFound
	}
	return it, err
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, storeKey(id))
	if errors.Is(err, cache.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Service) resolveFlight(ctx context.Context, req models.ItineraryRequest) (*models.Flight, error) {
	if req.FlightSearchID == "" {
		return nil, nil
	}
	res, err := s.searches.FlightResults(ctx, req.FlightSearchID)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, fmt.Errorf("%w: flight search %s", ErrNotFound, req.FlightSearchID)
	}
	if err != nil {
		return nil, err
	}
	if len(res.Flights) == 0 {
		return nil, nil
	}
	if req.FlightID == "" {
		return &res.Flights[0], nil
	}
	for i := range res.Flights {
		if res.Flights[i].ID == req.FlightID {
			return &res.Flights[i], nil
		}
	}
	return nil, fmt.Errorf("%w: flight %s in search %s", ErrNotFound, req.FlightID, req.FlightSearchID)
}

func (s *Service) resolveHotel(ctx context.Context, req models.ItineraryRequest) (*models.Hotel, error) {
	if req.HotelSearchID == "" {
		return nil, nil
	}
	res, err := s.searches.HotelResults(ctx, req.HotelSearchID)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, fmt.Errorf("%w: hotel search %s", ErrNotFound, req.HotelSearchID)
	}
	if err != nil {
		return nil, err
	}
	if len(res.Hotels) == 0 {
		return nil, nil
	}
	if req.HotelName == "" {
		return &res.Hotels[0], nil
	}
	for i := range res.Hotels {
		if res.Hotels[i].Name == req.HotelName {
			return &res.Hotels[i], nil
		}
	}
	return nil, fmt.Errorf("%w: hotel %q in search %s", ErrNotFound, req.HotelName, req.HotelSearchID)
}
