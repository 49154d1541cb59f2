package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/catalog"
	"github.com/jewelry/backend/internal/domain/identity"
	"github.com/jewelry/backend/internal/domain/review"
	"github.com/jewelry/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Service handles review submission and moderation
type Service struct {
	reviewRepo  review.Repository
	productRepo catalog.ProductRepository
	userRepo    identity.UserRepository
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewService creates a review service
func NewService(
	reviewRepo review.Repository,
	productRepo catalog.ProductRepository,
	userRepo identity.UserRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// Submit stores a pending review. A customer reviews a product once.
func (s *Service) Submit(ctx context.Context, userID, productID uuid.UUID, req SubmitReviewRequest) (*ReviewResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Product not found")
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if !product.IsActive {
		return nil, shared.NewDomainError("NOT_FOUND", "Product not found")
	}

	exists, err := s.reviewRepo.ExistsForUser(ctx, productID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "You have already reviewed this product")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "User not found")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	r, err := review.New(productID, userID, user.FullName, req.Rating, req.Title, req.Comment)
	if err != nil {
		return nil, err
	}
	if err := s.reviewRepo.Save(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to save review: %w", err)
	}
	s.publish(ctx, r)

	s.logger.Info("Review submitted",
		zap.String("review_id", r.ID.String()),
		zap.String("product_id", productID.String()),
		zap.Int("rating", r.Rating))

	resp := ToReviewResponse(r)
	return &resp, nil
}

// ListForProduct returns the approved reviews of a product
func (s *Service) ListForProduct(ctx context.Context, productID uuid.UUID, page, pageSize int) (*shared.Paginated[ReviewResponse], error) {
	approved := review.StatusApproved
	return s.list(ctx, review.Filter{
		ProductID: &productID,
		Status:    &approved,
		Page:      max(page, 1),
		PageSize:  pageSize,
	})
}

// List returns reviews for moderation
func (s *Service) List(ctx context.Context, query ReviewListQuery) (*shared.Paginated[ReviewResponse], error) {
	filter := review.Filter{Page: max(query.Page, 1), PageSize: query.PageSize}
	if query.Status != "" {
		status := review.Status(query.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", "Unknown review status: "+query.Status)
		}
		filter.Status = &status
	}
	if query.ProductID != "" {
		id, err := uuid.Parse(query.ProductID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Invalid product id")
		}
		filter.ProductID = &id
	}
	return s.list(ctx, filter)
}

// Approve publishes a review and refreshes the product rating
func (s *Service) Approve(ctx context.Context, id uuid.UUID) (*ReviewResponse, error) {
	return s.moderate(ctx, id, (*review.Review).Approve)
}

// Reject hides a review and refreshes the product rating
func (s *Service) Reject(ctx context.Context, id uuid.UUID) (*ReviewResponse, error) {
	return s.moderate(ctx, id, (*review.Review).Reject)
}

// Delete removes a review and refreshes the product rating
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	r, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.reviewRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return reviewNotFound()
		}
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if err := s.refreshRating(ctx, r.ProductID); err != nil {
		return err
	}
	r.MarkDeleted()
	s.publish(ctx, r)
	return nil
}

func (s *Service) moderate(ctx context.Context, id uuid.UUID, apply func(*review.Review) error) (*ReviewResponse, error) {
	r, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(r); err != nil {
		return nil, err
	}
	if err := s.reviewRepo.Save(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to save review: %w", err)
	}
	if err := s.refreshRating(ctx, r.ProductID); err != nil {
		return nil, err
	}
	s.publish(ctx, r)

	s.logger.Info("Review moderated",
		zap.String("review_id", r.ID.String()),
		zap.String("status", string(r.Status)))

	resp := ToReviewResponse(r)
	return &resp, nil
}

// refreshRating recomputes the product's rating from its approved reviews.
// A product deleted since the review was written is skipped.
func (s *Service) refreshRating(ctx context.Context, productID uuid.UUID) error {
	summary, err := s.reviewRepo.RatingSummary(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to summarize ratings: %w", err)
	}
	err = s.productRepo.UpdateRating(ctx, productID, summary.Average, summary.Count)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to update product rating: %w", err)
	}
	return nil
}

func (s *Service) list(ctx context.Context, filter review.Filter) (*shared.Paginated[ReviewResponse], error) {
	reviews, total, err := s.reviewRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	page := shared.NewPaginated(toReviewResponses(reviews), total, filter.Page, filter.Limit())
	return &page, nil
}

func (s *Service) find(ctx context.Context, id uuid.UUID) (*review.Review, error) {
	r, err := s.reviewRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, reviewNotFound()
		}
		return nil, fmt.Errorf("failed to load review: %w", err)
	}
	return r, nil
}

func (s *Service) publish(ctx context.Context, r *review.Review) {
	if err := shared.PublishAndClear(ctx, s.publisher, r); err != nil {
		s.logger.Warn("Failed to publish review events", zap.String("review_id", r.ID.String()), zap.Error(err))
	}
}

func reviewNotFound() error {
	return shared.NewDomainError("NOT_FOUND", "Review not found")
}
