package contact

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/shared"
)

// Status tracks how far the shop has handled a submission
type Status string

const (
	StatusNew      Status = "new"
	StatusRead     Status = "read"
	StatusReplied  Status = "replied"
	StatusArchived Status = "archived"
)

// IsValid reports whether the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusRead, StatusReplied, StatusArchived:
		return true
	}
	return false
}

// Submission is a message sent through the public contact form
type Submission struct {
	shared.BaseAggregateRoot
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
	Status  Status
}

// NewSubmission validates and creates a new submission
func NewSubmission(name, email, phone, subject, message string) (*Submission, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	subject = strings.TrimSpace(subject)
	message = strings.TrimSpace(message)

	if name == "" || len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Name is required and cannot exceed 100 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	if len(subject) > 200 {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Subject cannot exceed 200 characters")
	}
	if len(message) < 10 {
		return nil, shared.NewDomainError("INVALID_MESSAGE", "Message must be at least 10 characters")
	}
	if len(message) > 5000 {
		return nil, shared.NewDomainError("INVALID_MESSAGE", "Message cannot exceed 5000 characters")
	}

	s := &Submission{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             email,
		Phone:             strings.TrimSpace(phone),
		Subject:           subject,
		Message:           message,
		Status:            StatusNew,
	}
	s.AddDomainEvent(NewSubmissionEvent(EventTypeContactSubmitted, s))
	return s, nil
}

// MarkRead moves a new submission to read; other statuses are left alone
func (s *Submission) MarkRead() bool {
	if s.Status != StatusNew {
		return false
	}
	s.Status = StatusRead
	s.Touch()
	s.AddDomainEvent(NewSubmissionEvent(EventTypeContactUpdated, s))
	return true
}

// SetStatus sets any known status
func (s *Submission) SetStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown status: "+string(status))
	}
	if s.Status == status {
		return nil
	}
	s.Status = status
	s.Touch()
	s.AddDomainEvent(NewSubmissionEvent(EventTypeContactUpdated, s))
	return nil
}

// MarkDeleted records the deletion event
func (s *Submission) MarkDeleted() {
	s.AddDomainEvent(NewSubmissionEvent(EventTypeContactDeleted, s))
}

// AggregateTypeSubmission is the aggregate type of submission events
const AggregateTypeSubmission = "contact_submissions"

// Event type constants
const (
	EventTypeContactSubmitted = "ContactSubmitted"
	EventTypeContactUpdated   = "ContactUpdated"
	EventTypeContactDeleted   = "ContactDeleted"
)

// SubmissionEvent carries the submission state at the time of the change
type SubmissionEvent struct {
	shared.BaseDomainEvent
	SubmissionID uuid.UUID `json:"submission_id"`
	Subject      string    `json:"subject"`
	Status       Status    `json:"status"`
}

// NewSubmissionEvent creates a submission event of the given type
func NewSubmissionEvent(eventType string, s *Submission) *SubmissionEvent {
	return &SubmissionEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeSubmission, s.ID.String()),
		SubmissionID:    s.ID,
		Subject:         s.Subject,
		Status:          s.Status,
	}
}

// Filter narrows submission listings
type Filter struct {
	Status   *Status
	Search   string
	Page     int
	PageSize int
}

// Offset returns the number of rows to skip
func (f Filter) Offset() int {
	return shared.PageOffset(f.Page, f.PageSize)
}

// Limit returns the page size, defaulting to 20 and capped at 100
func (f Filter) Limit() int {
	return shared.PageLimit(f.PageSize)
}

// Repository defines the interface for submission persistence
type Repository interface {
	Save(ctx context.Context, submission *Submission) error
	FindByID(ctx context.Context, id uuid.UUID) (*Submission, error)
	FindAll(ctx context.Context, filter Filter) ([]*Submission, int64, error)
	CountByStatus(ctx context.Context, status Status) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
