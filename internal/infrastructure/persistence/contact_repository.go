package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/contact"
	"github.com/jewelry/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormContactRepository implements contact.Repository using GORM
type GormContactRepository struct {
	db *gorm.DB
}

// NewGormContactRepository creates a new GormContactRepository
func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

// Save creates or updates a submission
func (r *GormContactRepository) Save(ctx context.Context, s *contact.Submission) error {
	return r.db.WithContext(ctx).Save(models.ContactSubmissionModelFromDomain(s)).Error
}

// FindByID finds a submission by ID
func (r *GormContactRepository) FindByID(ctx context.Context, id uuid.UUID) (*contact.Submission, error) {
	var model models.ContactSubmissionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns one page of submissions, newest first, and the total count
func (r *GormContactRepository) FindAll(ctx context.Context, filter contact.Filter) ([]*contact.Submission, int64, error) {
	var rows []*models.ContactSubmissionModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ContactSubmissionModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(subject) LIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.
		Order("created_at DESC").Order("id ASC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	submissions := make([]*contact.Submission, len(rows))
	for i, row := range rows {
		submissions[i] = row.ToDomain()
	}
	return submissions, total, nil
}

// CountByStatus counts submissions in a status
func (r *GormContactRepository) CountByStatus(ctx context.Context, status contact.Status) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ContactSubmissionModel{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// Delete deletes a submission
func (r *GormContactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ContactSubmissionModel{}, "id = ?", id)
	return affected(result)
}

// Ensure GormContactRepository implements contact.Repository
var _ contact.Repository = (*GormContactRepository)(nil)
