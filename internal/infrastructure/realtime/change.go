// Package realtime fans out row-level change notifications to subscribers.
// Changes come from the in-process event bus and, when enabled, from
// PostgreSQL NOTIFY messages raised by row triggers on other instances.
package realtime

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/jewelry/backend/internal/domain/shared"
)

// Action is the kind of write a ChangeEvent reports
type Action string

const (
	ActionInsert     Action = "insert"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionResequence Action = "resequence"
)

// Tables that may be subscribed to
const (
	TableUsers              = "users"
	TableProducts           = "products"
	TableCategories         = "categories"
	TableOrders             = "orders"
	TableReviews            = "reviews"
	TableContactSubmissions = "contact_submissions"
	TableMetalTypes         = "metal_types"
	TableStoneTypes         = "stone_types"
	TableOccasions          = "occasions"
)

var knownTables = map[string]bool{
	TableUsers:              true,
	TableProducts:           true,
	TableCategories:         true,
	TableOrders:             true,
	TableReviews:            true,
	TableContactSubmissions: true,
	TableMetalTypes:         true,
	TableStoneTypes:         true,
	TableOccasions:          true,
}

var adminOnlyTables = map[string]bool{
	TableUsers:              true,
	TableOrders:             true,
	TableReviews:            true,
	TableContactSubmissions: true,
}

// IsKnownTable reports whether the table can be subscribed to
func IsKnownTable(table string) bool {
	return knownTables[table]
}

// IsAdminOnly reports whether subscribing to the table needs an admin token
func IsAdminOnly(table string) bool {
	return adminOnlyTables[table]
}

// PublicTables lists the tables any client may subscribe to
func PublicTables() []string {
	return []string{TableProducts, TableCategories, TableMetalTypes, TableStoneTypes, TableOccasions}
}

// Source tells where a ChangeEvent was observed.
type Source uint8

const (
	// SourceLocal is a write made by this instance, reported by the event bus
	SourceLocal Source = iota
	// SourceNotify is a write reported by a PostgreSQL row trigger
	SourceNotify
)

// ChangeEvent describes one write to a table
type ChangeEvent struct {
	Table   string          `json:"table"`
	Action  Action          `json:"action"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	At      time.Time       `json:"at"`
	Source  Source          `json:"-"`
}

// key identifies the row a change touched
func (e ChangeEvent) key() string {
	return e.Table + "|" + string(e.Action) + "|" + e.ID
}

var actionSuffixes = []struct {
	suffix string
	action Action
}{
	{"Resequenced", ActionResequence},
	{"Created", ActionInsert},
	{"Registered", ActionInsert},
	{"Submitted", ActionInsert},
	{"Placed", ActionInsert},
	{"StatusChanged", ActionUpdate},
	{"Updated", ActionUpdate},
	{"Moderated", ActionUpdate},
	{"Deleted", ActionDelete},
}

// ActionForEvent maps a domain event type to the write it represents
func ActionForEvent(eventType string) (Action, bool) {
	for _, s := range actionSuffixes {
		if strings.HasSuffix(eventType, s.suffix) {
			return s.action, true
		}
	}
	return "", false
}

// FromDomainEvent converts a domain event whose aggregate type is a known
// table. The event itself becomes the payload.
func FromDomainEvent(evt shared.DomainEvent) (ChangeEvent, bool) {
	table := evt.AggregateType()
	if !IsKnownTable(table) {
		return ChangeEvent{}, false
	}
	action, ok := ActionForEvent(evt.EventType())
	if !ok {
		return ChangeEvent{}, false
	}

	change := ChangeEvent{
		Table:  table,
		Action: action,
		ID:     evt.AggregateID(),
		At:     evt.OccurredAt(),
	}
	if payload, err := json.Marshal(evt); err == nil {
		change.Payload = payload
	}
	return change, true
}
