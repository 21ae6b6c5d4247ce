package search

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-planner/internal/alerts"
	"travel-planner/internal/cache"
	"travel-planner/internal/models"
	"travel-planner/internal/streams"
)

type fakeFlightProvider struct {
	flights []models.Flight
	err     error
}

func (f *fakeFlightProvider) Name() string { return "fake" }

func (f *fakeFlightProvider) SearchFlights(context.Context, models.FlightSearchRequest) ([]models.Flight, error) {
	return f.flights, f.err
}

type fakeHotelProvider struct {
	hotels []models.Hotel
	err    error
}

func (f *fakeHotelProvider) Name() string { return "fake" }

func (f *fakeHotelProvider) SearchHotels(context.Context, models.HotelSearchRequest) ([]models.Hotel, error) {
	return f.hotels, f.err
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func flightFixture(id string, price float64) models.Flight {
	return models.Flight{
		ID:        id,
		Airline:   models.Airline{Name: "Delta"},
		Departure: models.FlightPoint{Airport: "JFK", Time: "2026-05-01 08:15"},
		Arrival:   models.FlightPoint{Airport: "LAX", Time: "2026-05-01 11:30"},
		Price:     models.Price{Amount: price, Currency: "USD"},
	}
}

// drainRequest pops the single pending message off a request stream.
func drainRequest(t *testing.T, rdb *redis.Client, stream string) map[string]any {
	t.Helper()
	msgs, err := rdb.XRange(context.Background(), stream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	values := make(map[string]any, len(msgs[0].Values))
	for k, v := range msgs[0].Values {
		values[k] = v
	}
	require.NoError(t, rdb.Del(context.Background(), stream).Err())
	return values
}

func resultEvents(t *testing.T, rdb *redis.Client, searchID string) []map[string]string {
	t.Helper()
	msgs, err := rdb.XRange(context.Background(), streams.SearchResultStream(searchID), "-", "+").Result()
	require.NoError(t, err)
	events := make([]map[string]string, 0, len(msgs))
	for _, msg := range msgs {
		ev := make(map[string]string, len(msg.Values))
		for k, v := range msg.Values {
			ev[k], _ = v.(string)
		}
		events = append(events, ev)
	}
	return events
}

func TestEnqueueFlights(t *testing.T) {
	rdb := newTestRedis(t)
	svc := NewService(streams.NewBus(rdb), cache.New(rdb, time.Minute))

	req := models.FlightSearchRequest{From: "JFK", To: "LAX", DepartureDate: "2026-05-01"}
	searchID, err := svc.EnqueueFlights(context.Background(), "user-1", req)
	require.NoError(t, err)
	require.NotEmpty(t, searchID)

	values := drainRequest(t, rdb, streams.FlightSearchRequested)
	assert.Equal(t, searchID, values["search_id"])
	assert.Equal(t, string(models.KindFlights), values["kind"])
	assert.Equal(t, "user-1", values["user_id"])

	var decoded models.FlightSearchRequest
	require.NoError(t, json.Unmarshal([]byte(values["request"].(string)), &decoded))
	assert.Equal(t, req, decoded)
}

func TestHandleFlightsCompletesSearch(t *testing.T) {
	rdb := newTestRedis(t)
	bus := streams.NewBus(rdb)
	results := cache.New(rdb, time.Minute)
	svc := NewService(bus, results)

	fp := &fakeFlightProvider{flights: []models.Flight{
		flightFixture("exp", 410),
		flightFixture("cheap", 255),
		flightFixture("mid", 320),
	}}
	w := NewWorker(bus, results, fp, &fakeHotelProvider{}, alerts.NewPublisher(bus))

	searchID, err := svc.EnqueueFlights(context.Background(), "", models.FlightSearchRequest{
		From: "JFK", To: "LAX", DepartureDate: "2026-05-01",
	})
	require.NoError(t, err)

	w.handleFlights(context.Background(), drainRequest(t, rdb, streams.FlightSearchRequested))

	res, err := svc.FlightResults(context.Background(), searchID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, res.Status)
	require.Len(t, res.Flights, 3)
	// Cheapest first.
	assert.Equal(t, "cheap", res.Flights[0].ID)
	assert.Equal(t, "mid", res.Flights[1].ID)
	assert.Equal(t, "exp", res.Flights[2].ID)

	events := resultEvents(t, rdb, searchID)
	require.Len(t, events, 2)
	assert.Equal(t, string(models.StatusProcessing), events[0]["status"])
	assert.Equal(t, string(models.StatusCompleted), events[1]["status"])
	assert.Equal(t, "3", events[1]["total_results"])

	var streamed []models.Flight
	require.NoError(t, json.Unmarshal([]byte(events[1]["results"]), &streamed))
	assert.Len(t, streamed, 3)
}

func TestHandleFlightsProviderFailure(t *testing.T) {
	rdb := newTestRedis(t)
	bus := streams.NewBus(rdb)
	results := cache.New(rdb, time.Minute)
	svc := NewService(bus, results)

	fp := &fakeFlightProvider{err: assert.AnError}
	w := NewWorker(bus, results, fp, &fakeHotelProvider{}, alerts.NewPublisher(bus))

	searchID, err := svc.EnqueueFlights(context.Background(), "", models.FlightSearchRequest{
		From: "JFK", To: "LAX", DepartureDate: "2026-05-01",
	})
	require.NoError(t, err)

	w.handleFlights(context.Background(), drainRequest(t, rdb, streams.FlightSearchRequested))

	_, err = svc.FlightResults(context.Background(), searchID)
	assert.ErrorIs(t, err, cache.ErrNotFound)

	events := resultEvents(t, rdb, searchID)
	require.Len(t, events, 2)
	assert.Equal(t, string(models.StatusFailed), events[1]["status"])
	assert.NotEmpty(t, events[1]["error"])
}

func TestHandleHotelsCompletesSearch(t *testing.T) {
	rdb := newTestRedis(t)
	bus := streams.NewBus(rdb)
	results := cache.New(rdb, time.Minute)
	svc := NewService(bus, results)

	hp := &fakeHotelProvider{hotels: []models.Hotel{{Name: "The Grand", Stars: 4}}}
	w := NewWorker(bus, results, &fakeFlightProvider{}, hp, alerts.NewPublisher(bus))

	searchID, err := svc.EnqueueHotels(context.Background(), "", models.HotelSearchRequest{
		Query: "New York hotels", CheckInDate: "2026-05-01", CheckOutDate: "2026-05-05",
	})
	require.NoError(t, err)

	w.handleHotels(context.Background(), drainRequest(t, rdb, streams.HotelSearchRequested))

	res, err := svc.HotelResults(context.Background(), searchID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, res.Status)
	require.Len(t, res.Hotels, 1)
	assert.Equal(t, "The Grand", res.Hotels[0].Name)

	events := resultEvents(t, rdb, searchID)
	require.Len(t, events, 2)
	assert.Equal(t, string(models.StatusCompleted), events[1]["status"])
	assert.Equal(t, "1", events[1]["total_results"])
}

func TestWorkerRecreatesExpiredGroup(t *testing.T) {
	rdb := newTestRedis(t)
	bus := streams.NewBus(rdb)
	results := cache.New(rdb, time.Minute)
	svc := NewService(bus, results)

	fp := &fakeFlightProvider{flights: []models.Flight{flightFixture("f1", 320)}}
	w := NewWorker(bus, results, fp, &fakeHotelProvider{}, alerts.NewPublisher(bus))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Wait for the worker to set up, then drop the request stream the way
	// TTL expiry would, taking the consumer group with it.
	require.Eventually(t, func() bool {
		n, err := rdb.Exists(context.Background(), streams.FlightSearchRequested).Result()
		return err == nil && n == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, rdb.Del(context.Background(), streams.FlightSearchRequested).Err())

	searchID, err := svc.EnqueueFlights(context.Background(), "", models.FlightSearchRequest{
		From: "JFK", To: "LAX", DepartureDate: "2026-05-01",
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		msgs, err := rdb.XRange(context.Background(), streams.SearchResultStream(searchID), "-", "+").Result()
		if err != nil {
			return false
		}
		for _, msg := range msgs {
			if msg.Values["status"] == string(models.StatusCompleted) {
				return true
			}
		}
		return false
	}, 10*time.Second, 20*time.Millisecond)
}

func TestTrackBestPricePublishesDropAlert(t *testing.T) {
	rdb := newTestRedis(t)
	bus := streams.NewBus(rdb)
	results := cache.New(rdb, time.Minute)
	svc := NewService(bus, results)

	fp := &fakeFlightProvider{flights: []models.Flight{flightFixture("f1", 320)}}
	w := NewWorker(bus, results, fp, &fakeHotelProvider{}, alerts.NewPublisher(bus))

	req := models.FlightSearchRequest{From: "JFK", To: "LAX", DepartureDate: "2026-05-01"}

	_, err := svc.EnqueueFlights(context.Background(), "user-1", req)
	require.NoError(t, err)
	w.handleFlights(context.Background(), drainRequest(t, rdb, streams.FlightSearchRequested))

	// First sighting sets the baseline without alerting.
	count, err := rdb.XLen(context.Background(), streams.AlertStream("user-1")).Result()
	require.NoError(t, err)
	assert.Zero(t, count)

	fp.flights = []models.Flight{flightFixture("f2", 255)}
	_, err = svc.EnqueueFlights(context.Background(), "user-1", req)
	require.NoError(t, err)
	w.handleFlights(context.Background(), drainRequest(t, rdb, streams.FlightSearchRequested))

	msgs, err := rdb.XRange(context.Background(), streams.AlertStream("user-1"), "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, string(models.SeverityInfo), msgs[0].Values["severity"])
	assert.Contains(t, msgs[0].Values["title"], "Price drop")
	assert.Contains(t, msgs[0].Values["message"], "255.00")
}
