package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"travel-planner/internal/logger"
	"travel-planner/internal/metrics"
	"travel-planner/internal/models"
	"travel-planner/internal/streams"
)

// searchEvents relays the per-search result stream to the client. The
// stream is deleted once a terminal event has been delivered.
func (h *handlers) searchEvents(c *fiber.Ctx) error {
	searchID := c.Params("search_id")
	if searchID == "" {
		return fail(c, http.StatusBadRequest, "Invalid search ID", nil)
	}
	return h.streamSSE(c, streams.SearchResultStream(searchID), true)
}

// alertEvents relays a user's alert stream. Alerts have no terminal event;
// the connection stays open until the client goes away.
func (h *handlers) alertEvents(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	if userID == "" {
		return fail(c, http.StatusBadRequest, "Invalid user ID", nil)
	}
	return h.streamSSE(c, streams.AlertStream(userID), false)
}

func (h *handlers) streamSSE(c *fiber.Ctx, streamName string, endOnTerminal bool) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	ctx := context.Background()
	reqCtx := c.Context()
	reqCtx.SetBodyStreamWriter(func(w *bufio.Writer) {
		metrics.ActiveSSEConnections.Inc()
		defer metrics.ActiveSSEConnections.Dec()
		h.writeStream(ctx, w, streamName, endOnTerminal)
	})

	return nil
}

// writeStream replays the stream from the beginning and then follows new
// entries. Reads are plain XREADs with a per-connection cursor, so every
// subscriber sees the full event sequence, and subscribing to an ID that
// nothing publishes to creates no keys at all.
func (h *handlers) writeStream(ctx context.Context, w *bufio.Writer, streamName string, endOnTerminal bool) {
	lastID := "0"
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		entries, err := h.bus.Read(ctx, streamName, lastID)
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// No events within the block window; heartbeat so
				// intermediaries keep the connection open.
				if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
				continue
			}
			logger.L().Warn("sse stream read failed", zap.String("stream", streamName), zap.Error(err))
			return
		}

		for _, entry := range entries {
			for _, msg := range entry.Messages {
				lastID = msg.ID
				err := h.writeMessage(ctx, w, streamName, msg, endOnTerminal)
				if errors.Is(err, io.EOF) {
					return
				}
				if err != nil {
					logger.L().Warn("sse write failed", zap.String("stream", streamName), zap.Error(err))
					return
				}
			}
		}
	}
}

// writeMessage forwards one stream entry as an SSE data event. It returns
// io.EOF after delivering a terminal event so the caller ends the stream.
func (h *handlers) writeMessage(ctx context.Context, w *bufio.Writer, streamName string, msg redis.XMessage, endOnTerminal bool) error {
	data := make(map[string]any, len(msg.Values))
	for k, v := range msg.Values {
		if k == "trace_context" {
			continue
		}
		data[k] = v
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if endOnTerminal && isTerminal(data) {
		// Auto-cleanup once the search has finished.
		if err := h.bus.Delete(ctx, streamName); err != nil {
			logger.L().Warn("sse stream cleanup failed", zap.String("stream", streamName), zap.Error(err))
		}
		return io.EOF
	}
	return nil
}

func isTerminal(data map[string]any) bool {
	status, _ := data["status"].(string)
	return status == string(models.StatusCompleted) || status == string(models.StatusFailed)
}
