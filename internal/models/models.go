package models

import "time"

// FlightSearchRequest mirrors the POST /search/flights body. Dates are
// YYYY-MM-DD strings, the format the upstream engine expects.
type FlightSearchRequest struct {
	From          string `json:"from"`
	To            string `json:"to"`
	DepartureDate string `json:"departure_date"`
	ReturnDate    string `json:"return_date,omitempty"`
	Passengers    int    `json:"passengers,omitempty"`
}

type HotelSearchRequest struct {
	Query        string `json:"query"`
	CheckInDate  string `json:"check_in_date"`
	CheckOutDate string `json:"check_out_date"`
}

type Airline struct {
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

type FlightPoint struct {
	Airport string `json:"airport"`
	Time    string `json:"time"`
}

type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type Flight struct {
	ID              string      `json:"id"`
	Airline         Airline     `json:"airline"`
	FlightNumber    string      `json:"flight_number"`
	Departure       FlightPoint `json:"departure"`
	Arrival         FlightPoint `json:"arrival"`
	DurationMinutes int         `json:"duration_minutes"`
	Stops           int         `json:"stops"`
	Price           Price       `json:"price"`
	BookingToken    string      `json:"booking_token,omitempty"`
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type HotelLocation struct {
	Coordinates Coordinates `json:"coordinates"`
	Rating      float64     `json:"rating,omitempty"`
}

type PriceQuote struct {
	Source string `json:"source"`
	Rate   string `json:"rate"`
}

type HotelPricing struct {
	PerNight  string       `json:"per_night,omitempty"`
	Total     string       `json:"total,omitempty"`
	Providers []PriceQuote `json:"providers,omitempty"`
}

type Transportation struct {
	Type     string `json:"type"`
	Duration string `json:"duration"`
}

type NearbyPlace struct {
	Name           string           `json:"name"`
	Transportation []Transportation `json:"transportation,omitempty"`
}

type Hotel struct {
	Name          string        `json:"name"`
	Type          string        `json:"type,omitempty"`
	HotelClass    string        `json:"hotel_class,omitempty"`
	Stars         int           `json:"stars,omitempty"`
	OverallRating float64       `json:"overall_rating,omitempty"`
	TotalReviews  int           `json:"total_reviews,omitempty"`
	Location      HotelLocation `json:"location"`
	CheckInTime   string        `json:"check_in_time,omitempty"`
	CheckOutTime  string        `json:"check_out_time,omitempty"`
	Pricing       HotelPricing  `json:"pricing"`
	Amenities     []string      `json:"amenities,omitempty"`
	NearbyPlaces  []NearbyPlace `json:"nearby_places,omitempty"`
	Images        []string      `json:"images,omitempty"`
	Link          string        `json:"link,omitempty"`
}

// SearchKind discriminates the two search pipelines sharing the stream
// plumbing.
type SearchKind string

const (
	KindFlights SearchKind = "flights"
	KindHotels  SearchKind = "hotels"
)

type SearchStatus string

const (
	StatusProcessing SearchStatus = "processing"
	StatusCompleted  SearchStatus = "completed"
	StatusFailed     SearchStatus = "failed"
)

type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

type Alert struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Severity  AlertSeverity `json:"severity"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	CreatedAt time.Time     `json:"created_at"`
}

type ItineraryRequest struct {
	Destination    string   `json:"destination"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	Interests      []string `json:"interests,omitempty"`
	FlightSearchID string   `json:"flight_search_id,omitempty"`
	FlightID       string   `json:"flight_id,omitempty"`
	HotelSearchID  string   `json:"hotel_search_id,omitempty"`
	HotelName      string   `json:"hotel_name,omitempty"`
}

type ItineraryDay struct {
	Date       string   `json:"date"`
	Title      string   `json:"title"`
	Activities []string `json:"activities"`
}

type Itinerary struct {
	ID          string         `json:"id"`
	Destination string         `json:"destination"`
	StartDate   string         `json:"start_date"`
	EndDate     string         `json:"end_date"`
	Flight      *Flight        `json:"flight,omitempty"`
	Hotel       *Hotel         `json:"hotel,omitempty"`
	Days        []ItineraryDay `json:"days"`
	CreatedAt   time.Time      `json:"created_at"`
}
