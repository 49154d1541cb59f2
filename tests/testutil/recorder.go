// Package testutil holds helpers shared by the integration tests.
package testutil

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/stretchr/testify/require"
)

// EventRecorder is an event handler that keeps everything it is given.
// Subscribe it to a bus to assert what a service published.
type EventRecorder struct {
	mu     sync.Mutex
	filter []string
	events []shared.DomainEvent
}

// NewEventRecorder records only the named types, or everything when none
// are named.
func NewEventRecorder(eventTypes ...string) *EventRecorder {
	return &EventRecorder{filter: eventTypes}
}

func (r *EventRecorder) EventTypes() []string { return r.filter }

func (r *EventRecorder) Handle(_ context.Context, event shared.DomainEvent) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	return nil
}

// Events returns a snapshot in delivery order.
func (r *EventRecorder) Events() []shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Types returns the recorded event types in delivery order.
func (r *EventRecorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, e := range r.events {
		types[i] = e.EventType()
	}
	return types
}

// Reset forgets what was recorded so far.
func (r *EventRecorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// RequireType waits for an event of the given type and returns the first
// one. The bus delivers synchronously, so the wait matters only for
// handlers fed from another goroutine.
func (r *EventRecorder) RequireType(t *testing.T, eventType string, within time.Duration) shared.DomainEvent {
	t.Helper()

	var found shared.DomainEvent
	require.Eventually(t, func() bool {
		for _, e := range r.Events() {
			if e.EventType() == eventType {
				found = e
				return true
			}
		}
		return false
	}, within, 10*time.Millisecond, "no %s event recorded", eventType)
	return found
}
