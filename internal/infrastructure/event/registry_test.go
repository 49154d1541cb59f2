package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_Register(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newTestHandler()

	registry.Register(handler, "OrderPlaced", "OrderStatusChanged")

	assert.Len(t, registry.HandlersFor("OrderPlaced"), 1)
	assert.Len(t, registry.HandlersFor("OrderStatusChanged"), 1)
	assert.Empty(t, registry.HandlersFor("OrderDeleted"))
	assert.Equal(t, 1, registry.Len())
}

func TestHandlerRegistry_DuplicateRegistration(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newTestHandler()

	registry.Register(handler, "OrderPlaced")
	registry.Register(handler, "OrderPlaced")
	registry.Register(handler)

	assert.Len(t, registry.HandlersFor("OrderPlaced"), 1)
	assert.Len(t, registry.HandlersFor("ProductCreated"), 1)
}

func TestHandlerRegistry_OrderTypeSpecificFirst(t *testing.T) {
	registry := NewHandlerRegistry()
	wildcard := newTestHandler()
	specific := newTestHandler()

	registry.Register(wildcard)
	registry.Register(specific, "ReviewSubmitted")

	handlers := registry.HandlersFor("ReviewSubmitted")
	assert.Len(t, handlers, 2)
	assert.Same(t, specific, handlers[0])
	assert.Same(t, wildcard, handlers[1])
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	h1 := newTestHandler()
	h2 := newTestHandler()

	registry.Register(h1, "ContactSubmitted")
	registry.Register(h2, "ContactSubmitted")
	registry.Register(h1)

	registry.Unregister(h1)

	handlers := registry.HandlersFor("ContactSubmitted")
	assert.Len(t, handlers, 1)
	assert.Same(t, h2, handlers[0])
	assert.Equal(t, 1, registry.Len())
}
