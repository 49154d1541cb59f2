package review

import (
	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/shared"
)

// AggregateTypeReview is the aggregate type of review events
const AggregateTypeReview = "reviews"

// Event type constants
const (
	EventTypeReviewSubmitted = "ReviewSubmitted"
	EventTypeReviewModerated = "ReviewModerated"
	EventTypeReviewDeleted   = "ReviewDeleted"
)

// ReviewEvent carries the review state at the time of the change
type ReviewEvent struct {
	shared.BaseDomainEvent
	ReviewID  uuid.UUID `json:"review_id"`
	ProductID uuid.UUID `json:"product_id"`
	Rating    int       `json:"rating"`
	Status    Status    `json:"status"`
}

// NewReviewEvent creates a review event of the given type
func NewReviewEvent(eventType string, r *Review) *ReviewEvent {
	return &ReviewEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeReview, r.ID.String()),
		ReviewID:        r.ID,
		ProductID:       r.ProductID,
		Rating:          r.Rating,
		Status:          r.Status,
	}
}
