package event

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/jewelry/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// BusStats counts dispatches since start
type BusStats struct {
	Published uint64 `json:"published"`
	Failed    uint64 `json:"failed"`
	Handlers  int    `json:"handlers"`
}

// InMemoryEventBus dispatches domain events synchronously to the handlers
// registered in-process. Handler failures are logged and never reach the
// publisher, so a broken subscriber cannot fail a committed write.
type InMemoryEventBus struct {
	registry  *HandlerRegistry
	logger    *zap.Logger
	running   atomic.Bool
	published atomic.Uint64
	failed    atomic.Uint64
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger.Named("event-bus"),
	}
}

// Publish delivers each event to its handlers in registration order
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, evt := range events {
		b.published.Add(1)
		for _, handler := range b.registry.HandlersFor(evt.EventType()) {
			if err := b.dispatch(ctx, handler, evt); err != nil {
				b.failed.Add(1)
				b.logger.Error("event handler failed",
					zap.String("event_type", evt.EventType()),
					zap.String("event_id", evt.EventID().String()),
					zap.String("aggregate_type", evt.AggregateType()),
					zap.String("aggregate_id", evt.AggregateID()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers a handler. Without explicit types the handler's own
// EventTypes are used; if those are empty too it receives every event.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start marks the bus running
func (b *InMemoryEventBus) Start(_ context.Context) error {
	b.running.Store(true)
	b.logger.Info("event bus started", zap.Int("handlers", b.registry.Len()))
	return nil
}

// Stop marks the bus stopped. Publishing is synchronous so nothing is in flight
// once callers have returned.
func (b *InMemoryEventBus) Stop(_ context.Context) error {
	b.running.Store(false)
	b.logger.Info("event bus stopped",
		zap.Uint64("published", b.published.Load()),
		zap.Uint64("failed", b.failed.Load()),
	)
	return nil
}

// Running reports whether Start has been called without a later Stop
func (b *InMemoryEventBus) Running() bool {
	return b.running.Load()
}

// Stats returns dispatch counters
func (b *InMemoryEventBus) Stats() BusStats {
	return BusStats{
		Published: b.published.Load(),
		Failed:    b.failed.Load(),
		Handlers:  b.registry.Len(),
	}
}

// dispatch converts a handler panic into an error
func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, evt shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, evt)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
