// Package httpapi wires the planner's HTTP surface: search submission,
// cached results, SSE event relays, itineraries and alerts.
package httpapi

import (
	"net/http"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	recovermw "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"travel-planner/internal/alerts"
	"travel-planner/internal/itinerary"
	"travel-planner/internal/search"
	"travel-planner/internal/streams"
)

type Deps struct {
	Searches    *search.Service
	Itineraries *itinerary.Service
	Alerts      *alerts.Publisher
	Bus         *streams.Bus
	Redis       *redis.Client
}

type handlers struct {
	searches    *search.Service
	itineraries *itinerary.Service
	alerts      *alerts.Publisher
	bus         *streams.Bus
	rdb         *redis.Client
}

func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{AppName: "travel-planner"})
	app.Use(recovermw.New())
	app.Use(cors.New())
	app.Use(otelfiber.Middleware())

	h := &handlers{
		searches:    deps.Searches,
		itineraries: deps.Itineraries,
		alerts:      deps.Alerts,
		bus:         deps.Bus,
		rdb:         deps.Redis,
	}

	api := app.Group("/api/v1")

	api.Route("/search/flights", func(router fiber.Router) {
		router.Post("/", h.startFlightSearch)
		router.Get("/:search_id", h.flightResults)
		router.Get("/:search_id/events", h.searchEvents)
	})

	api.Route("/search/hotels", func(router fiber.Router) {
		router.Post("/", h.startHotelSearch)
		router.Get("/:search_id", h.hotelResults)
		router.Get("/:search_id/events", h.searchEvents)
	})

	api.Route("/itineraries", func(router fiber.Router) {
		router.Post("/", h.createItinerary)
		router.Get("/:id", h.getItinerary)
		router.Delete("/:id", h.deleteItinerary)
	})

	api.Post("/alerts", h.publishAlert)
	api.Get("/alerts/:user_id/events", h.alertEvents)

	app.Get("/healthz", h.healthz)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return app
}

func (h *handlers) healthz(c *fiber.Ctx) error {
	if err := h.rdb.Ping(c.UserContext()).Err(); err != nil {
		return fail(c, http.StatusServiceUnavailable, "Redis unreachable", err)
	}
	return ok(c, "OK", nil)
}
