// Package provider defines the upstream travel-data interfaces the worker
// fans out to, and shared plumbing for implementations.
package provider

import (
	"context"
	"errors"

	"travel-planner/internal/models"
)

// ErrTemporary marks failures worth retrying (network hiccups, throttling,
// upstream 5xx).
var ErrTemporary = errors.New("temporary provider error")

type FlightProvider interface {
	Name() string
	SearchFlights(ctx context.Context, req models.FlightSearchRequest) ([]models.Flight, error)
}

type HotelProvider interface {
	Name() string
	SearchHotels(ctx context.Context, req models.HotelSearchRequest) ([]models.Hotel, error)
}
