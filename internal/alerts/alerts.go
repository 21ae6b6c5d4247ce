// Package alerts publishes travel advisories onto per-user Redis streams.
// The API relays those streams to clients over SSE.
package alerts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"travel-planner/internal/metrics"
	"travel-planner/internal/models"
	"travel-planner/internal/streams"
	"travel-planner/internal/tracing"
)

var ErrInvalidSeverity = errors.New("alerts: invalid severity")

func ValidSeverity(s models.AlertSeverity) bool {
	switch s {
	case models.SeverityInfo, models.SeverityWarning, models.SeverityCritical:
		return true
	}
	return false
}

type Publisher struct {
	bus *streams.Bus
}

func NewPublisher(bus *streams.Bus) *Publisher {
	return &Publisher{bus: bus}
}

// Publish assigns the alert an ID and timestamp and appends it to the
// user's stream. The filled-in alert is returned to the caller.
func (p *Publisher) Publish(ctx context.Context, alert models.Alert) (models.Alert, error) {
	if !ValidSeverity(alert.Severity) {
		return models.Alert{}, ErrInvalidSeverity
	}

	alert.ID = uuid.NewString()
	alert.CreatedAt = time.Now().UTC()

	values := map[string]any{
		"id":            alert.ID,
		"user_id":       alert.UserID,
		"severity":      string(alert.Severity),
		"title":         alert.Title,
		"message":       alert.Message,
		"created_at":    alert.CreatedAt.Format(time.RFC3339),
		"trace_context": tracing.InjectToJSON(ctx),
	}
	if err := p.bus.Add(ctx, streams.AlertStream(alert.UserID), values); err != nil {
		return models.Alert{}, err
	}

	metrics.AlertsPublished.WithLabelValues(string(alert.Severity)).Inc()
	return alert, nil
}
