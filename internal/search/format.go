package search

import (
	"fmt"

	"travel-planner/internal/models"
)

// HotelSummary is the condensed, human-readable view of a completed hotel
// search, shaped for display and for downstream planning.
type HotelSummary struct {
	QueryDetails QueryDetails  `json:"query_details"`
	HotelOptions []HotelOption `json:"hotel_options"`
}

type QueryDetails struct {
	Location     string `json:"location"`
	CheckIn      string `json:"check_in"`
	CheckOut     string `json:"check_out"`
	TotalResults int    `json:"total_results"`
}

type HotelOption struct {
	Name               string     `json:"name"`
	Class              string     `json:"class,omitempty"`
	Rating             string     `json:"rating"`
	Price              OptionRate `json:"price"`
	KeyAmenities       []string   `json:"key_amenities,omitempty"`
	LocationHighlights []string   `json:"location_highlights,omitempty"`
	BookingLink        string     `json:"booking_link,omitempty"`
}

type OptionRate struct {
	Nightly string `json:"nightly,omitempty"`
	Total   string `json:"total,omitempty"`
}

// Summarize flattens hotel results into the summary view.
func (r HotelResults) Summarize() HotelSummary {
	summary := HotelSummary{
		QueryDetails: QueryDetails{
			Location:     r.Request.Query,
			CheckIn:      r.Request.CheckInDate,
			CheckOut:     r.Request.CheckOutDate,
			TotalResults: len(r.Hotels),
		},
		HotelOptions: make([]HotelOption, 0, len(r.Hotels)),
	}

	for _, h := range r.Hotels {
		opt := HotelOption{
			Name:         h.Name,
			Class:        hotelClass(h),
			Rating:       hotelRating(h),
			Price:        OptionRate{Nightly: h.Pricing.PerNight, Total: h.Pricing.Total},
			KeyAmenities: h.Amenities,
			BookingLink:  h.Link,
		}
		for _, place := range h.NearbyPlaces {
			if len(place.Transportation) == 0 {
				continue
			}
			t := place.Transportation[0]
			opt.LocationHighlights = append(opt.LocationHighlights,
				fmt.Sprintf("%s (%s by %s)", place.Name, t.Duration, t.Type))
		}
		summary.HotelOptions = append(summary.HotelOptions, opt)
	}

	return summary
}

func hotelClass(h models.Hotel) string {
	if h.Stars > 0 {
		return fmt.Sprintf("%d★", h.Stars)
	}
	return h.HotelClass
}

func hotelRating(h models.Hotel) string {
	if h.OverallRating <= 0 {
		return "No ratings"
	}
	return fmt.Sprintf("%.1f/5 (%d reviews)", h.OverallRating, h.TotalReviews)
}
