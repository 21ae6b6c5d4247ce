package httpapi

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"travel-planner/internal/itinerary"
	"travel-planner/internal/logger"
	"travel-planner/internal/models"
)

func (h *handlers) createItinerary(c *fiber.Ctx) error {
	ctx, span := tracer.Start(c.UserContext(), "createItinerary")
	defer span.End()

	var req models.ItineraryRequest
	if err := c.BodyParser(&req); err != nil {
		span.RecordError(err)
		return fail(c, http.StatusBadRequest, "Invalid request", err)
	}
	if err := validateItineraryRequest(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request", err)
	}

	it, err := h.itineraries.Create(ctx, req)
	switch {
	case errors.Is(err, itinerary.ErrNotFound):
		return fail(c, http.StatusNotFound, "Referenced search not found", err)
	case errors.Is(err, itinerary.ErrInvalidDates), errors.Is(err, itinerary.ErrTripTooLong):
		return fail(c, http.StatusBadRequest, "Invalid request", err)
	case err != nil:
		logger.WithTrace(ctx).Warn("failed to create itinerary", zap.Error(err))
		span.RecordError(err)
		return fail(c, http.StatusInternalServerError, "Failed to create itinerary", err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Itinerary created",
		"data":    it,
	})
}

func (h *handlers) getItinerary(c *fiber.Ctx) error {
	it, err := h.itineraries.Get(c.UserContext(), c.Params("id"))
	if errors.Is(err, itinerary.ErrNotFound) {
		return fail(c, http.StatusNotFound, "Itinerary not found", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to load itinerary", err)
	}
	return ok(c, "Itinerary", it)
}

func (h *handlers) deleteItinerary(c *fiber.Ctx) error {
	err := h.itineraries.Delete(c.UserContext(), c.Params("id"))
	if errors.Is(err, itinerary.ErrNotFound) {
		return fail(c, http.StatusNotFound, "Itinerary not found", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to delete itinerary", err)
	}
	return ok(c, "Itinerary deleted", nil)
}
