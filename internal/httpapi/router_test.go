package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-planner/internal/alerts"
	"travel-planner/internal/cache"
	"travel-planner/internal/itinerary"
	"travel-planner/internal/models"
	"travel-planner/internal/search"
	"travel-planner/internal/streams"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) (*fiber.App, *redis.Client, *cache.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	bus := streams.NewBus(rdb)
	results := cache.New(rdb, time.Minute)
	searches := search.NewService(bus, results)

	app := New(Deps{
		Searches:    searches,
		Itineraries: itinerary.NewService(cache.New(rdb, time.Hour), searches),
		Alerts:      alerts.NewPublisher(bus),
		Bus:         bus,
		Redis:       rdb,
	})
	return app, rdb, results
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &env))
	return resp, env
}

func TestStartFlightSearch(t *testing.T) {
	app, rdb, _ := newTestApp(t)

	resp, env := doJSON(t, app, http.MethodPost, "/api/v1/search/flights", models.FlightSearchRequest{
		From:          "jfk",
		To:            "LAX",
		DepartureDate: "2026-05-01",
		ReturnDate:    "2026-05-10",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)

	var data struct {
		SearchID string `json:"search_id"`
		Status   string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data.SearchID)
	assert.Equal(t, "processing", data.Status)

	msgs, err := rdb.XRange(context.Background(), streams.FlightSearchRequested, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, data.SearchID, msgs[0].Values["search_id"])

	// Codes were normalized before enqueueing.
	var queued models.FlightSearchRequest
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Values["request"].(string)), &queued))
	assert.Equal(t, "JFK", queued.From)
}

func TestStartFlightSearchValidation(t *testing.T) {
	app, _, _ := newTestApp(t)

	cases := []models.FlightSearchRequest{
		{From: "JFKX", To: "LAX", DepartureDate: "2026-05-01"},
		{From: "JFK", To: "JFK", DepartureDate: "2026-05-01"},
		{From: "JFK", To: "LAX", DepartureDate: "May 1st"},
		{From: "JFK", To: "LAX", DepartureDate: "2026-05-10", ReturnDate: "2026-05-01"},
		{From: "JFK", To: "LAX", DepartureDate: "2026-05-01", Passengers: -1},
	}
	for _, tc := range cases {
		resp, env := doJSON(t, app, http.MethodPost, "/api/v1/search/flights", tc)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.False(t, env.Success)
	}
}

func TestStartHotelSearchValidation(t *testing.T) {
	app, _, _ := newTestApp(t)

	cases := []models.HotelSearchRequest{
		{Query: "", CheckInDate: "2026-05-01", CheckOutDate: "2026-05-05"},
		{Query: "NY hotels", CheckInDate: "2026-05-05", CheckOutDate: "2026-05-05"},
		{Query: "NY hotels", CheckInDate: "bad", CheckOutDate: "2026-05-05"},
	}
	for _, tc := range cases {
		resp, env := doJSON(t, app, http.MethodPost, "/api/v1/search/hotels", tc)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.False(t, env.Success)
	}
}

func TestFlightResultsNotFound(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, env := doJSON(t, app, http.MethodGet, "/api/v1/search/flights/unknown", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, env.Success)
}

func TestHotelResultsSummaryView(t *testing.T) {
	app, _, results := newTestApp(t)

	res := search.HotelResults{
		SearchID: "hs-1",
		Request: models.HotelSearchRequest{
			Query: "New York hotels", CheckInDate: "2026-05-01", CheckOutDate: "2026-05-05",
		},
		Status: models.StatusCompleted,
		Hotels: []models.Hotel{{Name: "The Grand", Stars: 4, OverallRating: 4.5, TotalReviews: 12}},
	}
	require.NoError(t, results.Set(context.Background(), search.CacheKey(models.KindHotels, "hs-1"), res))

	resp, env := doJSON(t, app, http.MethodGet, "/api/v1/search/hotels/hs-1?view=summary", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary search.HotelSummary
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, "New York hotels", summary.QueryDetails.Location)
	require.Len(t, summary.HotelOptions, 1)
	assert.Equal(t, "4★", summary.HotelOptions[0].Class)
	assert.Equal(t, "4.5/5 (12 reviews)", summary.HotelOptions[0].Rating)
}

func TestPublishAlert(t *testing.T) {
	app, rdb, _ := newTestApp(t)

	resp, env := doJSON(t, app, http.MethodPost, "/api/v1/alerts", models.Alert{
		UserID:   "user-1",
		Severity: models.SeverityCritical,
		Title:    "Airport closure",
		Message:  "JFK closed due to weather.",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, env.Success)

	count, err := rdb.XLen(context.Background(), streams.AlertStream("user-1")).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPublishAlertValidation(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/alerts", models.Alert{
		UserID: "user-1", Severity: "panic", Title: "Nope",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/alerts", models.Alert{
		Severity: models.SeverityInfo, Title: "No user",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestItineraryLifecycle(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, env := doJSON(t, app, http.MethodPost, "/api/v1/itineraries", models.ItineraryRequest{
		Destination: "Paris",
		StartDate:   "2026-06-01",
		EndDate:     "2026-06-03",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var it models.Itinerary
	require.NoError(t, json.Unmarshal(env.Data, &it))
	require.NotEmpty(t, it.ID)
	assert.Len(t, it.Days, 3)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/itineraries/"+it.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/itineraries/"+it.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/itineraries/"+it.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestItineraryWithExpiredSearch(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/itineraries", models.ItineraryRequest{
		Destination:    "Paris",
		StartDate:      "2026-06-01",
		EndDate:        "2026-06-03",
		FlightSearchID: "expired",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, env := doJSON(t, app, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)
}
