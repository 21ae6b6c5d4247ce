package httpapi

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"travel-planner/internal/alerts"
	"travel-planner/internal/logger"
	"travel-planner/internal/models"
)

func (h *handlers) publishAlert(c *fiber.Ctx) error {
	ctx, span := tracer.Start(c.UserContext(), "publishAlert")
	defer span.End()

	var alert models.Alert
	if err := c.BodyParser(&alert); err != nil {
		span.RecordError(err)
		return fail(c, http.StatusBadRequest, "Invalid request", err)
	}
	if err := validateAlert(&alert); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request", err)
	}

	published, err := h.alerts.Publish(ctx, alert)
	if errors.Is(err, alerts.ErrInvalidSeverity) {
		return fail(c, http.StatusBadRequest, "Invalid request", err)
	}
	if err != nil {
		logger.WithTrace(ctx).Warn("failed to publish alert", zap.Error(err))
		span.RecordError(err)
		return fail(c, http.StatusInternalServerError, "Failed to publish alert", err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Alert published",
		"data":    published,
	})
}
