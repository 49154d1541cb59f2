package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/catalog"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/jewelry/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

var errSlugTaken = shared.NewDomainError("ALREADY_EXISTS", "Category slug already exists")

type GormCategoryRepository struct {
	db *gorm.DB
}

func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormCategoryRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Category, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *GormCategoryRepository) first(ctx context.Context, cond string, arg any) (*catalog.Category, error) {
	var row models.CategoryModel
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	return row.ToDomain(), nil
}

func (r *GormCategoryRepository) FindAll(ctx context.Context) ([]*catalog.Category, error) {
	var rows []*models.CategoryModel
	if err := r.db.WithContext(ctx).Order("sort_order ASC, name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*catalog.Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToDomain())
	}
	return out, nil
}

// Save upserts by primary key. A slug clash with another category is
// reported as ALREADY_EXISTS.
func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	err := r.db.WithContext(ctx).Save(models.CategoryModelFromDomain(category)).Error
	return duplicate(err, errSlugTaken)
}

func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&models.CategoryModel{}, "id = ?", id))
}

func (r *GormCategoryRepository) ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.CategoryModel{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	n, err := count(query)
	return n > 0, err
}

var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
