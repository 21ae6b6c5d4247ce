package httpapi

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"travel-planner/internal/cache"
	"travel-planner/internal/logger"
	"travel-planner/internal/models"
)

var tracer = otel.Tracer("travel-planner/httpapi")

// userIDHeader optionally ties a search to a user so the worker can address
// price-drop alerts.
const userIDHeader = "X-User-ID"

func (h *handlers) startFlightSearch(c *fiber.Ctx) error {
	ctx, span := tracer.Start(c.UserContext(), "startFlightSearch")
	defer span.End()

	var req models.FlightSearchRequest
	if err := c.BodyParser(&req); err != nil {
		span.RecordError(err)
		return fail(c, http.StatusBadRequest, "Invalid request", err)
	}
	if err := validateFlightRequest(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request", err)
	}

	searchID, err := h.searches.EnqueueFlights(ctx, c.Get(userIDHeader), req)
	if err != nil {
		logger.WithTrace(ctx).Warn("failed to enqueue flight search", zap.Error(err))
		span.RecordError(err)
		return fail(c, http.StatusInternalServerError, "Failed to process request", err)
	}

	span.AddEvent("Search request submitted")
	return ok(c, "Search request submitted", fiber.Map{
		"search_id": searchID,
		"status":    string(models.StatusProcessing),
	})
}

func (h *handlers) startHotelSearch(c *fiber.Ctx) error {
	ctx, span := tracer.Start(c.UserContext(), "startHotelSearch")
	defer span.End()

	var req models.HotelSearchRequest
	if err := c.BodyParser(&req); err != nil {
		span.RecordError(err)
		return fail(c, http.StatusBadRequest, "Invalid request", err)
	}
	if err := validateHotelRequest(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request", err)
	}

	searchID, err := h.searches.EnqueueHotels(ctx, c.Get(userIDHeader), req)
	if err != nil {
		logger.WithTrace(ctx).Warn("failed to enqueue hotel search", zap.Error(err))
		span.RecordError(err)
		return fail(c, http.StatusInternalServerError, "Failed to process request", err)
	}

	span.AddEvent("Search request submitted")
	return ok(c, "Search request submitted", fiber.Map{
		"search_id": searchID,
		"status":    string(models.StatusProcessing),
	})
}

func (h *handlers) flightResults(c *fiber.Ctx) error {
	res, err := h.searches.FlightResults(c.UserContext(), c.Params("search_id"))
	if errors.Is(err, cache.ErrNotFound) {
		return fail(c, http.StatusNotFound, "Search not found or still processing", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to load results", err)
	}
	return ok(c, "Search results", res)
}

func (h *handlers) hotelResults(c *fiber.Ctx) error {
	res, err := h.searches.HotelResults(c.UserContext(), c.Params("search_id"))
	if errors.Is(err, cache.ErrNotFound) {
		return fail(c, http.StatusNotFound, "Search not found or still processing", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to load results", err)
	}
	if c.Query("view") == "summary" {
		return ok(c, "Search results", res.Summarize())
	}
	return ok(c, "Search results", res)
}
