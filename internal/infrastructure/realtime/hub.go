package realtime

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultSubscriberBuffer = 64
	DefaultDedupeWindow     = 2 * time.Second
)

// Subscription receives the events of the tables it subscribed to
type Subscription struct {
	hub    *Hub
	tables map[string]bool
	ch     chan ChangeEvent
	once   sync.Once
}

// C returns the delivery channel. It is closed by Close or Hub.Close.
func (s *Subscription) C() <-chan ChangeEvent {
	return s.ch
}

// Wants reports whether the subscription covers the table
func (s *Subscription) Wants(table string) bool {
	return len(s.tables) == 0 || s.tables[table]
}

// Close unsubscribes and closes the channel
func (s *Subscription) Close() {
	s.hub.remove(s)
}

// HubOption configures a Hub
type HubOption func(*Hub)

// WithBuffer sets the per-subscriber channel size
func WithBuffer(size int) HubOption {
	return func(h *Hub) {
		if size > 0 {
			h.buffer = size
		}
	}
}

// WithDedupeWindow turns on echo suppression. A write made here reaches the
// hub from the bus and, when the NOTIFY listener runs, once more from the row
// trigger. Each local change then swallows at most one NOTIFY change for the
// same row that arrives within d. Local changes are always delivered.
func WithDedupeWindow(d time.Duration) HubOption {
	return func(h *Hub) {
		h.dedupe = d
	}
}

// WithHubLogger sets the logger
func WithHubLogger(logger *zap.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

// Hub fans change events out to subscribers. Publishing never blocks: when a
// subscriber's buffer is full its oldest pending event is discarded so the
// newest state still gets through.
type Hub struct {
	mu      sync.Mutex
	subs    map[*Subscription]struct{}
	echoes  map[string][]time.Time
	buffer  int
	dedupe  time.Duration
	closed  bool
	logger  *zap.Logger
	now     func() time.Time
	dropped atomic.Uint64
}

// NewHub creates a hub
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		subs:   make(map[*Subscription]struct{}),
		echoes: make(map[string][]time.Time),
		buffer: DefaultSubscriberBuffer,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers a subscriber for the tables; no tables means all
func (h *Hub) Subscribe(tables ...string) *Subscription {
	sub := &Subscription{
		hub:    h,
		tables: make(map[string]bool, len(tables)),
		ch:     make(chan ChangeEvent, h.buffer),
	}
	for _, t := range tables {
		sub.tables[t] = true
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
		sub.once.Do(func() {})
		return sub
	}
	h.subs[sub] = struct{}{}
	return sub
}

// Publish delivers the event to every interested subscriber
func (h *Hub) Publish(evt ChangeEvent) {
	if evt.At.IsZero() {
		evt.At = h.now()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || h.echo(evt) {
		return
	}

	for sub := range h.subs {
		if !sub.Wants(evt.Table) {
			continue
		}
		select {
		case sub.ch <- evt:
			continue
		default:
		}
		// Full: discard the oldest pending event and retry once
		select {
		case <-sub.ch:
			h.dropped.Add(1)
		default:
		}
		select {
		case sub.ch <- evt:
		default:
			h.dropped.Add(1)
		}
	}
}

// echo reports whether evt is the NOTIFY copy of a change already delivered
// from the bus. Local changes record an expected echo; a NOTIFY change
// consumes the oldest one for its row. Caller holds mu.
func (h *Hub) echo(evt ChangeEvent) bool {
	if h.dedupe <= 0 {
		return false
	}
	now := h.now()
	for k, pending := range h.echoes {
		pending = slices.DeleteFunc(pending, func(at time.Time) bool { return now.Sub(at) > h.dedupe })
		if len(pending) == 0 {
			delete(h.echoes, k)
			continue
		}
		h.echoes[k] = pending
	}

	key := evt.key()
	if evt.Source != SourceNotify {
		h.echoes[key] = append(h.echoes[key], now)
		return false
	}
	pending, ok := h.echoes[key]
	if !ok {
		return false
	}
	if len(pending) == 1 {
		delete(h.echoes, key)
	} else {
		h.echoes[key] = pending[1:]
	}
	return true
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
	}
	sub.once.Do(func() { close(sub.ch) })
}

// SubscriberCount returns the number of live subscriptions
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Dropped returns how many events were discarded for slow subscribers
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Close closes every subscription. Later publishes are ignored.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subs {
		sub.once.Do(func() { close(sub.ch) })
		delete(h.subs, sub)
	}
	h.logger.Info("realtime hub closed", zap.Uint64("dropped", h.dropped.Load()))
}
