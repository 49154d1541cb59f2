package contact

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/contact"
	"github.com/jewelry/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Service handles contact form submissions
type Service struct {
	repo      contact.Repository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewService creates a contact service
func NewService(repo contact.Repository, publisher shared.EventPublisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, publisher: publisher, logger: logger}
}

// Submit stores a message from the public form
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*SubmissionResponse, error) {
	sub, err := contact.NewSubmission(req.Name, req.Email, req.Phone, req.Subject, req.Message)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to save contact submission: %w", err)
	}
	s.publish(ctx, sub)

	s.logger.Info("Contact submission received",
		zap.String("submission_id", sub.ID.String()),
		zap.String("subject", sub.Subject))

	resp := ToSubmissionResponse(sub)
	return &resp, nil
}

// List returns submissions, newest first
func (s *Service) List(ctx context.Context, query ListQuery) (*shared.Paginated[SubmissionResponse], error) {
	filter := contact.Filter{Search: query.Search, Page: max(query.Page, 1), PageSize: query.PageSize}
	if query.Status != "" {
		status := contact.Status(query.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", "Unknown status: "+query.Status)
		}
		filter.Status = &status
	}
	subs, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact submissions: %w", err)
	}
	items := make([]SubmissionResponse, len(subs))
	for i, sub := range subs {
		items[i] = ToSubmissionResponse(sub)
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.Limit())
	return &page, nil
}

// Get returns one submission; opening a new one marks it read
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*SubmissionResponse, error) {
	sub, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.MarkRead() {
		if err := s.repo.Save(ctx, sub); err != nil {
			return nil, fmt.Errorf("failed to mark submission read: %w", err)
		}
		s.publish(ctx, sub)
	}
	resp := ToSubmissionResponse(sub)
	return &resp, nil
}

// UpdateStatus sets the handling status
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*SubmissionResponse, error) {
	sub, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sub.SetStatus(contact.Status(req.Status)); err != nil {
		return nil, err
	}
	if len(sub.GetDomainEvents()) > 0 {
		if err := s.repo.Save(ctx, sub); err != nil {
			return nil, fmt.Errorf("failed to update submission: %w", err)
		}
		s.publish(ctx, sub)
	}
	resp := ToSubmissionResponse(sub)
	return &resp, nil
}

// Delete removes a submission
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	sub, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return submissionNotFound()
		}
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	sub.MarkDeleted()
	s.publish(ctx, sub)
	return nil
}

func (s *Service) find(ctx context.Context, id uuid.UUID) (*contact.Submission, error) {
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, submissionNotFound()
		}
		return nil, fmt.Errorf("failed to load submission: %w", err)
	}
	return sub, nil
}

func (s *Service) publish(ctx context.Context, sub *contact.Submission) {
	if err := shared.PublishAndClear(ctx, s.publisher, sub); err != nil {
		s.logger.Warn("Failed to publish contact events", zap.String("submission_id", sub.ID.String()), zap.Error(err))
	}
}

func submissionNotFound() error {
	return shared.NewDomainError("NOT_FOUND", "Submission not found")
}
