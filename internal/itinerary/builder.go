// Package itinerary builds and stores day-by-day trip plans from search
// results and traveler interests. Plans are assembled from fixed activity
// templates; there is no recommendation model behind them.
package itinerary

import (
	"errors"
	"fmt"
	"time"

	"travel-planner/internal/models"
)

const dateLayout = "2006-01-02"

// maxTripDays bounds the plan length so a typo'd year cannot produce a
// multi-thousand-day itinerary.
const maxTripDays = 60

var (
	ErrInvalidDates = errors.New("itinerary: end date must not be before start date")
	ErrTripTooLong  = fmt.Errorf("itinerary: trip longer than %d days", maxTripDays)
)

// Middle-of-trip activity pairs, rotated across days.
var defaultDayPlans = [][]string{
	{"Morning: visit museums and parks.", "Evening: enjoy local cuisine."},
	{"Morning: shopping and local market visit.", "Afternoon: relax at a café or park."},
	{"Morning: explore historic neighborhoods.", "Evening: catch a local show or event."},
}

// interestPlans maps a traveler interest to the day plan it replaces.
var interestPlans = map[string][]string{
	"food":      {"Morning: food market tour.", "Evening: tasting menu at a local restaurant."},
	"museums":   {"Morning: museum visit.", "Afternoon: gallery walk."},
	"nature":    {"Morning: hike a nearby trail.", "Afternoon: picnic in a city park."},
	"shopping":  {"Morning: browse local boutiques.", "Afternoon: souvenir hunting at the market."},
	"nightlife": {"Afternoon: rest up at the hotel.", "Evening: explore bars and live music."},
	"beach":     {"Morning: beach time.", "Afternoon: waterfront stroll."},
}

// Build assembles the day-by-day plan. flight and hotel are optional; when
// present they anchor the arrival and departure days.
func Build(req models.ItineraryRequest, flight *models.Flight, hotel *models.Hotel) (models.Itinerary, error) {
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return models.Itinerary{}, fmt.Errorf("itinerary: parse start date: %w", err)
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return models.Itinerary{}, fmt.Errorf("itinerary: parse end date: %w", err)
	}
	if end.Before(start) {
		return models.Itinerary{}, ErrInvalidDates
	}

	numDays := int(end.Sub(start).Hours()/24) + 1
	if numDays > maxTripDays {
		return models.Itinerary{}, ErrTripTooLong
	}

	plans := middlePlans(req.Interests)
	days := make([]models.ItineraryDay, 0, numDays)
	for i := 0; i < numDays; i++ {
		date := start.AddDate(0, 0, i).Format(dateLayout)
		switch {
		case numDays == 1:
			days = append(days, models.ItineraryDay{
				Date:       date,
				Title:      "Day trip",
				Activities: append(arrivalActivities(req.Destination, hotel), departureActivities(flight, hotel)...),
			})
		case i == 0:
			days = append(days, models.ItineraryDay{
				Date:       date,
				Title:      "Arrival",
				Activities: arrivalActivities(req.Destination, hotel),
			})
		case i == numDays-1:
			days = append(days, models.ItineraryDay{
				Date:       date,
				Title:      "Departure",
				Activities: departureActivities(flight, hotel),
			})
		default:
			days = append(days, models.ItineraryDay{
				Date:       date,
				Title:      fmt.Sprintf("Day %d", i+1),
				Activities: plans[(i-1)%len(plans)],
			})
		}
	}

	return models.Itinerary{
		Destination: req.Destination,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Flight:      flight,
		Hotel:       hotel,
		Days:        days,
	}, nil
}

func middlePlans(interests []string) [][]string {
	plans := make([][]string, 0, len(interests))
	for _, interest := range interests {
		if plan, ok := interestPlans[interest]; ok {
			plans = append(plans, plan)
		}
	}
	if len(plans) == 0 {
		return defaultDayPlans
	}
	return plans
}

func arrivalActivities(destination string, hotel *models.Hotel) []string {
	arrive := fmt.Sprintf("Arrive in %s.", destination)
	checkIn := "Check into your hotel."
	if hotel != nil {
		checkIn = fmt.Sprintf("Check into %s.", hotel.Name)
		if hotel.CheckInTime != "" {
			checkIn = fmt.Sprintf("Check into %s (check-in from %s).", hotel.Name, hotel.CheckInTime)
		}
	}
	return []string{arrive, checkIn, "Afternoon: city tour and local attractions."}
}

func departureActivities(flight *models.Flight, hotel *models.Hotel) []string {
	checkOut := "Check out of your hotel."
	if hotel != nil && hotel.CheckOutTime != "" {
		checkOut = fmt.Sprintf("Check out of %s by %s.", hotel.Name, hotel.CheckOutTime)
	}
	depart := "Depart for home."
	if flight != nil {
		depart = fmt.Sprintf("Transfer to %s for your flight home.", flight.Arrival.Airport)
	}
	return []string{checkOut, depart}
}
