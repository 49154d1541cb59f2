package contact

import (
	"time"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/contact"
)

// SubmitRequest is the public contact form
type SubmitRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email,max=254"`
	Phone   string `json:"phone" binding:"omitempty,max=40,phone"`
	Subject string `json:"subject" binding:"max=200"`
	Message string `json:"message" binding:"required,min=10,max=5000"`
}

// ListQuery filters submissions in the back-office
type ListQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=new read replied archived"`
	Search   string `form:"search" binding:"max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// UpdateStatusRequest changes a submission's handling status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=new read replied archived"`
}

// SubmissionResponse represents a submission in API responses
type SubmissionResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToSubmissionResponse converts a domain submission to a response
func ToSubmissionResponse(s *contact.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		Phone:     s.Phone,
		Subject:   s.Subject,
		Message:   s.Message,
		Status:    string(s.Status),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
