package serpapi

import (
	"context"
	"fmt"
	"net/url"

	"travel-planner/internal/models"
)

// Truncation limits applied when extracting hotel properties. Upstream
// responses are large; clients only need the head of each list.
const (
	maxPriceQuotes  = 3
	maxAmenities    = 10
	maxNearbyPlaces = 3
	maxTransports   = 2
	maxImages       = 5
)

type hotelsResponse struct {
	Properties []hotelProperty `json:"properties"`
}

type hotelProperty struct {
	Name                string        `json:"name"`
	Type                string        `json:"type"`
	HotelClass          string        `json:"hotel_class"`
	ExtractedHotelClass int           `json:"extracted_hotel_class"`
	OverallRating       float64       `json:"overall_rating"`
	Reviews             int           `json:"reviews"`
	GPSCoordinates      gpsPoint      `json:"gps_coordinates"`
	LocationRating      float64       `json:"location_rating"`
	CheckInTime         string        `json:"check_in_time"`
	CheckOutTime        string        `json:"check_out_time"`
	RatePerNight        lowestRate    `json:"rate_per_night"`
	TotalRate           lowestRate    `json:"total_rate"`
	Prices              []hotelPrice  `json:"prices"`
	Amenities           []string      `json:"amenities"`
	NearbyPlaces        []nearbyPlace `json:"nearby_places"`
	Images              []hotelImage  `json:"images"`
	Link                string        `json:"link"`
}

type gpsPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type lowestRate struct {
	Lowest string `json:"lowest"`
}

type hotelPrice struct {
	Source       string     `json:"source"`
	RatePerNight lowestRate `json:"rate_per_night"`
}

type nearbyPlace struct {
	Name            string           `json:"name"`
	Transportations []transportation `json:"transportations"`
}

type transportation struct {
	Type     string `json:"type"`
	Duration string `json:"duration"`
}

type hotelImage struct {
	Thumbnail string `json:"thumbnail"`
}

// SearchHotels queries the google_hotels engine and extracts the fields the
// planner cares about from each property.
func (c *Client) SearchHotels(ctx context.Context, req models.HotelSearchRequest) ([]models.Hotel, error) {
	params := url.Values{}
	params.Set("q", req.Query)
	params.Set("check_in_date", req.CheckInDate)
	params.Set("check_out_date", req.CheckOutDate)

	var resp hotelsResponse
	if err := c.get(ctx, "google_hotels", params, &resp); err != nil {
		return nil, fmt.Errorf("search hotels %q: %w", req.Query, err)
	}

	hotels := make([]models.Hotel, 0, len(resp.Properties))
	for _, p := range resp.Properties {
		hotels = append(hotels, extractHotel(p))
	}
	return hotels, nil
}

func extractHotel(p hotelProperty) models.Hotel {
	h := models.Hotel{
		Name:          p.Name,
		Type:          p.Type,
		HotelClass:    p.HotelClass,
		Stars:         p.ExtractedHotelClass,
		OverallRating: p.OverallRating,
		TotalReviews:  p.Reviews,
		Location: models.HotelLocation{
			Coordinates: models.Coordinates{
				Latitude:  p.GPSCoordinates.Latitude,
				Longitude: p.GPSCoordinates.Longitude,
			},
			Rating: p.LocationRating,
		},
		CheckInTime:  p.CheckInTime,
		CheckOutTime: p.CheckOutTime,
		Pricing: models.HotelPricing{
			PerNight: p.RatePerNight.Lowest,
			Total:    p.TotalRate.Lowest,
		},
		Link: p.Link,
	}

	for _, price := range head(p.Prices, maxPriceQuotes) {
		h.Pricing.Providers = append(h.Pricing.Providers, models.PriceQuote{
			Source: price.Source,
			Rate:   price.RatePerNight.Lowest,
		})
	}

	h.Amenities = append(h.Amenities, head(p.Amenities, maxAmenities)...)

	for _, place := range head(p.NearbyPlaces, maxNearbyPlaces) {
		np := models.NearbyPlace{Name: place.Name}
		for _, t := range head(place.Transportations, maxTransports) {
			np.Transportation = append(np.Transportation, models.Transportation{
				Type:     t.Type,
				Duration: t.Duration,
			})
		}
		h.NearbyPlaces = append(h.NearbyPlaces, np)
	}

	for _, img := range head(p.Images, maxImages) {
		h.Images = append(h.Images, img.Thumbnail)
	}

	return h
}

func head[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
