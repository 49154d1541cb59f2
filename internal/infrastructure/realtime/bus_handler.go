package realtime

import (
	"context"

	"github.com/jewelry/backend/internal/domain/shared"
)

// BusHandler forwards domain events from the event bus to the hub
type BusHandler struct {
	hub *Hub
}

// NewBusHandler creates a handler publishing to hub
func NewBusHandler(hub *Hub) *BusHandler {
	return &BusHandler{hub: hub}
}

// Handle converts the event and publishes it. Events that do not map to a
// table are ignored.
func (h *BusHandler) Handle(_ context.Context, evt shared.DomainEvent) error {
	if change, ok := FromDomainEvent(evt); ok {
		h.hub.Publish(change)
	}
	return nil
}

// EventTypes returns nil so the handler receives every event
func (h *BusHandler) EventTypes() []string {
	return nil
}

var _ shared.EventHandler = (*BusHandler)(nil)
