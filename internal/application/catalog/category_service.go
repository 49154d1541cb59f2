package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/catalog"
	"github.com/jewelry/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CategoryService handles category operations
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	productRepo  catalog.ProductRepository
	publisher    shared.EventPublisher
	logger       *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(
	categoryRepo catalog.CategoryRepository,
	productRepo catalog.ProductRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		publisher:    publisher,
		logger:       logger,
	}
}

// List returns all categories in display order
func (s *CategoryService) List(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	out := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		out[i] = ToCategoryResponse(c)
	}
	return out, nil
}

// Get returns one category
func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, req CategoryRequest) (*CategoryResponse, error) {
	category, err := catalog.NewCategory(req.Name, req.Slug, req.Description)
	if err != nil {
		return nil, err
	}
	if req.ImageURL != "" || req.SortOrder != 0 {
		if err := category.Update(category.Name, category.Slug, category.Description, req.ImageURL, req.SortOrder); err != nil {
			return nil, err
		}
	}
	if err := s.ensureUniqueSlug(ctx, category.Slug, nil); err != nil {
		return nil, err
	}
	if err := s.save(ctx, category); err != nil {
		return nil, err
	}
	s.logger.Info("Category created", zap.String("category_id", category.ID.String()), zap.String("slug", category.Slug))

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Update replaces a category's fields
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req CategoryRequest) (*CategoryResponse, error) {
	category, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := category.Update(req.Name, req.Slug, req.Description, req.ImageURL, req.SortOrder); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueSlug(ctx, category.Slug, &category.ID); err != nil {
		return nil, err
	}
	if err := s.save(ctx, category); err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Delete removes a category that no product references
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	category, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	count, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return shared.NewDomainError("CATEGORY_IN_USE",
			fmt.Sprintf("Category is used by %d product(s)", count))
	}
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	category.MarkDeleted()
	s.publish(ctx, category)
	return nil
}

func (s *CategoryService) ensureUniqueSlug(ctx context.Context, slug string, excludeID *uuid.UUID) error {
	exists, err := s.categoryRepo.ExistsBySlug(ctx, slug, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check slug: %w", err)
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "A category with this slug already exists")
	}
	return nil
}

func (s *CategoryService) find(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Category not found")
		}
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	return category, nil
}

func (s *CategoryService) save(ctx context.Context, category *catalog.Category) error {
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return shared.NewDomainError("ALREADY_EXISTS", "A category with this slug already exists")
		}
		return fmt.Errorf("failed to save category: %w", err)
	}
	s.publish(ctx, category)
	return nil
}

func (s *CategoryService) publish(ctx context.Context, category *catalog.Category) {
	if err := shared.PublishAndClear(ctx, s.publisher, category); err != nil {
		s.logger.Warn("Failed to publish category events", zap.Error(err))
	}
}
