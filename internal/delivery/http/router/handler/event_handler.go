package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"dispatch/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// EventHandler streams change events to browsers over server-sent events,
// replacing the interval polling a snapshot store otherwise forces.
type EventHandler struct {
	feed service.ChangeFeed
}

// NewEventHandler is the constructor for EventHandler, injected by Fx.
func NewEventHandler(feed service.ChangeFeed) *EventHandler {
	return &EventHandler{feed: feed}
}

// Stream subscribes the client to the change feed until it disconnects.
func (h *EventHandler) Stream(c echo.Context) error {
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	ctx := c.Request().Context()
	events, cancel := h.feed.Subscribe(ctx)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, open := <-events:
			if !open {
				return nil
			}

			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			w.Flush()
		}
	}
}
