package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/review"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/jewelry/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReviewRepository implements review.Repository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// Save creates or updates a review
func (r *GormReviewRepository) Save(ctx context.Context, rv *review.Review) error {
	model := models.ReviewModelFromDomain(rv)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return duplicate(err, shared.NewDomainError("ALREADY_EXISTS", "You have already reviewed this product"))
	}
	return nil
}

// FindByID finds a review by ID
func (r *GormReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*review.Review, error) {
	var model models.ReviewModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns one page of reviews, newest first, and the total count
func (r *GormReviewRepository) FindAll(ctx context.Context, filter review.Filter) ([]*review.Review, int64, error) {
	var reviewModels []*models.ReviewModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ReviewModel{})
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.
		Order("created_at DESC").Order("id ASC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&reviewModels).Error; err != nil {
		return nil, 0, err
	}

	reviews := make([]*review.Review, len(reviewModels))
	for i, model := range reviewModels {
		reviews[i] = model.ToDomain()
	}
	return reviews, total, nil
}

// ExistsForUser reports whether the user already reviewed the product
func (r *GormReviewRepository) ExistsForUser(ctx context.Context, productID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ReviewModel{}).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// RatingSummary aggregates the approved reviews of a product
func (r *GormReviewRepository) RatingSummary(ctx context.Context, productID uuid.UUID) (review.RatingSummary, error) {
	var row struct {
		Total int64
		Count int64
	}
	if err := r.db.WithContext(ctx).Model(&models.ReviewModel{}).
		Select("COALESCE(SUM(rating), 0) AS total, COUNT(*) AS count").
		Where("product_id = ? AND status = ?", productID, review.StatusApproved).
		Scan(&row).Error; err != nil {
		return review.RatingSummary{}, err
	}
	if row.Count == 0 {
		return review.RatingSummary{Average: decimal.Zero}, nil
	}
	avg := decimal.NewFromInt(row.Total).Div(decimal.NewFromInt(row.Count)).Round(2)
	return review.RatingSummary{Average: avg, Count: int(row.Count)}, nil
}

// CountByStatus counts reviews in a status
func (r *GormReviewRepository) CountByStatus(ctx context.Context, status review.Status) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ReviewModel{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// Delete deletes a review
func (r *GormReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ReviewModel{}, "id = ?", id)
	return affected(result)
}

// Ensure GormReviewRepository implements review.Repository
var _ review.Repository = (*GormReviewRepository)(nil)
