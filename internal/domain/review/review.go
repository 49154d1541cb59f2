package review

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status is the moderation state of a review
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// IsValid reports whether the status is known
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Review is a customer's rating of a product. Only approved reviews are
// public and count towards the product rating.
type Review struct {
	shared.BaseAggregateRoot
	ProductID  uuid.UUID
	UserID     uuid.UUID
	AuthorName string
	Rating     int
	Title      string
	Comment    string
	Status     Status
}

// New creates a pending review
func New(productID, userID uuid.UUID, authorName string, rating int, title, comment string) (*Review, error) {
	if productID == uuid.Nil || userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REVIEW", "Product and user are required")
	}
	if rating < 1 || rating > 5 {
		return nil, shared.NewDomainError("INVALID_RATING", "Rating must be between 1 and 5")
	}
	title = strings.TrimSpace(title)
	if len(title) > 200 {
		return nil, shared.NewDomainError("INVALID_TITLE", "Title cannot exceed 200 characters")
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, shared.NewDomainError("INVALID_COMMENT", "Comment cannot be empty")
	}
	if len(comment) > 5000 {
		return nil, shared.NewDomainError("INVALID_COMMENT", "Comment cannot exceed 5000 characters")
	}

	r := &Review{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		UserID:            userID,
		AuthorName:        strings.TrimSpace(authorName),
		Rating:            rating,
		Title:             title,
		Comment:           comment,
		Status:            StatusPending,
	}
	r.AddDomainEvent(NewReviewEvent(EventTypeReviewSubmitted, r))
	return r, nil
}

// Approve publishes the review
func (r *Review) Approve() error {
	return r.moderate(StatusApproved)
}

// Reject hides the review
func (r *Review) Reject() error {
	return r.moderate(StatusRejected)
}

func (r *Review) moderate(target Status) error {
	if r.Status == target {
		return shared.NewDomainError("INVALID_STATE", "Review is already "+string(target))
	}
	r.Status = target
	r.Touch()
	r.AddDomainEvent(NewReviewEvent(EventTypeReviewModerated, r))
	return nil
}

// MarkDeleted records the deletion event
func (r *Review) MarkDeleted() {
	r.AddDomainEvent(NewReviewEvent(EventTypeReviewDeleted, r))
}

// RatingSummary aggregates the approved reviews of a product
type RatingSummary struct {
	Average decimal.Decimal
	Count   int
}

// Summarize averages the ratings of approved reviews
func Summarize(reviews []*Review) RatingSummary {
	sum, count := 0, 0
	for _, r := range reviews {
		if r.Status != StatusApproved {
			continue
		}
		sum += r.Rating
		count++
	}
	if count == 0 {
		return RatingSummary{Average: decimal.Zero}
	}
	avg := decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(count))).Round(2)
	return RatingSummary{Average: avg, Count: count}
}

// Filter narrows review listings
type Filter struct {
	ProductID *uuid.UUID
	Status    *Status
	Page      int
	PageSize  int
}

// Offset returns the number of rows to skip
func (f Filter) Offset() int {
	return shared.PageOffset(f.Page, f.PageSize)
}

// Limit returns the page size, defaulting to 20 and capped at 100
func (f Filter) Limit() int {
	return shared.PageLimit(f.PageSize)
}

// Repository defines the interface for review persistence
type Repository interface {
	Save(ctx context.Context, review *Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*Review, error)
	FindAll(ctx context.Context, filter Filter) ([]*Review, int64, error)
	// ExistsForUser reports whether the user already reviewed the product
	ExistsForUser(ctx context.Context, productID, userID uuid.UUID) (bool, error)
	// RatingSummary aggregates the approved reviews of a product
	RatingSummary(ctx context.Context, productID uuid.UUID) (RatingSummary, error)
	CountByStatus(ctx context.Context, status Status) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
