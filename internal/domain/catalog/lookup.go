package catalog

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jewelry/backend/internal/domain/shared"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// LookupKind identifies one of the attribute tables products refer to.
// The value is the table name.
type LookupKind string

const (
	LookupMetalType LookupKind = "metal_types"
	LookupStoneType LookupKind = "stone_types"
	LookupOccasion  LookupKind = "occasions"
)

// IsValid reports whether the kind is known
func (k LookupKind) IsValid() bool {
	switch k {
	case LookupMetalType, LookupStoneType, LookupOccasion:
		return true
	}
	return false
}

// ProductColumn returns the products column that references this lookup
func (k LookupKind) ProductColumn() string {
	switch k {
	case LookupMetalType:
		return "metal_type_id"
	case LookupStoneType:
		return "stone_type_id"
	case LookupOccasion:
		return "occasion_id"
	}
	return ""
}

// ParseLookupKind accepts both the table name and the URL form (metal-types)
func ParseLookupKind(s string) (LookupKind, error) {
	k := LookupKind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !k.IsValid() {
		return "", shared.NewDomainError("INVALID_LOOKUP", "Unknown lookup type: "+s)
	}
	return k, nil
}

// Lookup is a named attribute value (Gold, Diamond, Wedding, ...)
type Lookup struct {
	shared.EventRecorder
	ID        int64
	Kind      LookupKind
	Name      string
	CreatedAt time.Time
}

// MetalType, StoneType and Occasion are lookups of the matching kind
type (
	MetalType = Lookup
	StoneType = Lookup
	Occasion  = Lookup
)

// NormalizeLookupName trims, collapses whitespace and title-cases a name
func NormalizeLookupName(name string) string {
	return cases.Title(language.English).String(strings.Join(strings.Fields(name), " "))
}

// NewLookup creates a lookup value. The ID is assigned on insert.
func NewLookup(kind LookupKind, name string) (*Lookup, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_LOOKUP", "Unknown lookup type: "+string(kind))
	}
	name = NormalizeLookupName(name)
	if err := validateLookupName(name); err != nil {
		return nil, err
	}
	return &Lookup{
		Kind:      kind,
		Name:      name,
		CreatedAt: time.Now(),
	}, nil
}

// Rename changes the display name
func (l *Lookup) Rename(name string) error {
	name = NormalizeLookupName(name)
	if err := validateLookupName(name); err != nil {
		return err
	}
	l.Name = name
	l.AddDomainEvent(NewLookupChangedEvent(EventTypeLookupUpdated, l))
	return nil
}

// MarkCreated records the creation event once the ID is known
func (l *Lookup) MarkCreated() {
	l.AddDomainEvent(NewLookupChangedEvent(EventTypeLookupCreated, l))
}

// MarkDeleted records the deletion event
func (l *Lookup) MarkDeleted() {
	l.AddDomainEvent(NewLookupChangedEvent(EventTypeLookupDeleted, l))
}

func validateLookupName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 100 characters")
	}
	return nil
}

// Event type constants
const (
	EventTypeLookupCreated = "LookupCreated"
	EventTypeLookupUpdated = "LookupUpdated"
	EventTypeLookupDeleted = "LookupDeleted"
)

// LookupChangedEvent is raised for lookup writes. Its aggregate type is the
// lookup table name.
type LookupChangedEvent struct {
	shared.BaseDomainEvent
	LookupID int64  `json:"lookup_id"`
	Name     string `json:"name"`
}

// NewLookupChangedEvent creates a LookupChangedEvent
func NewLookupChangedEvent(eventType string, l *Lookup) *LookupChangedEvent {
	return &LookupChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, string(l.Kind), strconv.FormatInt(l.ID, 10)),
		LookupID:        l.ID,
		Name:            l.Name,
	}
}

// LookupRepository persists the three lookup tables
type LookupRepository interface {
	// List returns all values of a kind ordered by name
	List(ctx context.Context, kind LookupKind) ([]*Lookup, error)

	// FindByID finds a value by kind and ID
	FindByID(ctx context.Context, kind LookupKind, id int64) (*Lookup, error)

	// ExistsByName checks for a case-insensitive name clash, ignoring excludeID
	ExistsByName(ctx context.Context, kind LookupKind, name string, excludeID int64) (bool, error)

	// Create inserts the value and sets its ID
	Create(ctx context.Context, lookup *Lookup) error

	// Update saves a renamed value
	Update(ctx context.Context, lookup *Lookup) error

	// Delete removes a value
	Delete(ctx context.Context, kind LookupKind, id int64) error
}
