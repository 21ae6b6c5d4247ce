package serpapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"travel-planner/internal/models"
)

type flightsResponse struct {
	BestFlights  []flightOption `json:"best_flights"`
	OtherFlights []flightOption `json:"other_flights"`
}

type flightOption struct {
	Flights       []flightSegment `json:"flights"`
	TotalDuration int             `json:"total_duration"`
	Price         float64         `json:"price"`
	BookingToken  string          `json:"booking_token"`
}

type flightSegment struct {
	DepartureAirport airportTime `json:"departure_airport"`
	ArrivalAirport   airportTime `json:"arrival_airport"`
	Duration         int         `json:"duration"`
	Airline          string      `json:"airline"`
	FlightNumber     string      `json:"flight_number"`
}

type airportTime struct {
	Name string `json:"name"`
	ID   string `json:"id"`
	Time string `json:"time"`
}

// SearchFlights queries the google_flights engine. The query string keeps
// the natural-language form alongside the structured parameters.
func (c *Client) SearchFlights(ctx context.Context, req models.FlightSearchRequest) ([]models.Flight, error) {
	q := fmt.Sprintf("flights from %s to %s on %s", req.From, req.To, req.DepartureDate)
	if req.ReturnDate != "" {
		q += fmt.Sprintf(" returning on %s", req.ReturnDate)
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("departure_id", req.From)
	params.Set("arrival_id", req.To)
	params.Set("outbound_date", req.DepartureDate)
	if req.ReturnDate != "" {
		params.Set("return_date", req.ReturnDate)
	}

	var resp flightsResponse
	if err := c.get(ctx, "google_flights", params, &resp); err != nil {
		return nil, fmt.Errorf("search flights %s-%s: %w", req.From, req.To, err)
	}

	options := append(resp.BestFlights, resp.OtherFlights...)
	flights := make([]models.Flight, 0, len(options))
	for _, opt := range options {
		if f, ok := normalizeFlight(opt); ok {
			flights = append(flights, f)
		}
	}
	return flights, nil
}

// normalizeFlight flattens a multi-segment option into one Flight keyed by
// its first and last segments. Options without segments are dropped.
func normalizeFlight(opt flightOption) (models.Flight, bool) {
	if len(opt.Flights) == 0 {
		return models.Flight{}, false
	}
	first := opt.Flights[0]
	last := opt.Flights[len(opt.Flights)-1]

	numbers := make([]string, 0, len(opt.Flights))
	for _, seg := range opt.Flights {
		numbers = append(numbers, strings.ReplaceAll(seg.FlightNumber, " ", ""))
	}

	return models.Flight{
		ID:           strings.Join(numbers, "_") + "_" + first.DepartureAirport.ID,
		Airline:      models.Airline{Name: first.Airline},
		FlightNumber: first.FlightNumber,
		Departure: models.FlightPoint{
			Airport: first.DepartureAirport.ID,
			Time:    first.DepartureAirport.Time,
		},
		Arrival: models.FlightPoint{
			Airport: last.ArrivalAirport.ID,
			Time:    last.ArrivalAirport.Time,
		},
		DurationMinutes: opt.TotalDuration,
		Stops:           len(opt.Flights) - 1,
		Price:           models.Price{Amount: opt.Price, Currency: "USD"},
		BookingToken:    opt.BookingToken,
	}, true
}
