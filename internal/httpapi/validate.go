package httpapi

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"travel-planner/internal/models"
)

const dateLayout = "2006-01-02"

var airportCode = regexp.MustCompile(`^[A-Z]{3}$`)

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be a YYYY-MM-DD date", field)
	}
	return t, nil
}

// validateFlightRequest normalizes airport codes in place and checks dates.
func validateFlightRequest(req *models.FlightSearchRequest) error {
	req.From = strings.ToUpper(strings.TrimSpace(req.From))
	req.To = strings.ToUpper(strings.TrimSpace(req.To))

	if !airportCode.MatchString(req.From) {
		return errors.New("from must be a 3-letter airport code")
	}
	if !airportCode.MatchString(req.To) {
		return errors.New("to must be a 3-letter airport code")
	}
	if req.From == req.To {
		return errors.New("origin and destination must differ")
	}
	if req.Passengers < 0 {
		return errors.New("passengers must not be negative")
	}

	departure, err := parseDate("departure_date", req.DepartureDate)
	if err != nil {
		return err
	}
	if req.ReturnDate != "" {
		ret, err := parseDate("return_date", req.ReturnDate)
		if err != nil {
			return err
		}
		if ret.Before(departure) {
			return errors.New("return_date must not be before departure_date")
		}
	}
	return nil
}

func validateHotelRequest(req *models.HotelSearchRequest) error {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return errors.New("query must not be empty")
	}

	checkIn, err := parseDate("check_in_date", req.CheckInDate)
	if err != nil {
		return err
	}
	checkOut, err := parseDate("check_out_date", req.CheckOutDate)
	if err != nil {
		return err
	}
	if !checkOut.After(checkIn) {
		return errors.New("check_out_date must be after check_in_date")
	}
	return nil
}

func validateItineraryRequest(req *models.ItineraryRequest) error {
	req.Destination = strings.TrimSpace(req.Destination)
	if req.Destination == "" {
		return errors.New("destination must not be empty")
	}
	if _, err := parseDate("start_date", req.StartDate); err != nil {
		return err
	}
	if _, err := parseDate("end_date", req.EndDate); err != nil {
		return err
	}
	return nil
}

func validateAlert(a *models.Alert) error {
	a.UserID = strings.TrimSpace(a.UserID)
	a.Title = strings.TrimSpace(a.Title)
	if a.UserID == "" {
		return errors.New("user_id must not be empty")
	}
	if a.Title == "" {
		return errors.New("title must not be empty")
	}
	return nil
}
