package review

import (
	"time"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/review"
)

// SubmitReviewRequest is a customer's review of a product
type SubmitReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Title   string `json:"title" binding:"max=200"`
	Comment string `json:"comment" binding:"required,max=5000"`
}

// ReviewListQuery filters review listings
type ReviewListQuery struct {
	Status    string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
	ProductID string `form:"product_id" binding:"omitempty,uuid"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ReviewResponse represents a review in API responses
type ReviewResponse struct {
	ID         uuid.UUID `json:"id"`
	ProductID  uuid.UUID `json:"product_id"`
	UserID     uuid.UUID `json:"user_id"`
	AuthorName string    `json:"author_name"`
	Rating     int       `json:"rating"`
	Title      string    `json:"title,omitempty"`
	Comment    string    `json:"comment"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToReviewResponse converts a domain review to a response
func ToReviewResponse(r *review.Review) ReviewResponse {
	return ReviewResponse{
		ID:         r.ID,
		ProductID:  r.ProductID,
		UserID:     r.UserID,
		AuthorName: r.AuthorName,
		Rating:     r.Rating,
		Title:      r.Title,
		Comment:    r.Comment,
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt,
	}
}

func toReviewResponses(reviews []*review.Review) []ReviewResponse {
	out := make([]ReviewResponse, len(reviews))
	for i, r := range reviews {
		out[i] = ToReviewResponse(r)
	}
	return out
}
