package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/catalog"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/jewelry/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds the products with the given IDs; missing IDs are skipped
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	if len(ids) == 0 {
		return []*catalog.Product{}, nil
	}
	var productModels []*models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&productModels).Error; err != nil {
		return nil, err
	}
	return toDomainProducts(productModels), nil
}

// FindAll returns one page of products and the total match count
func (r *GormProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]*catalog.Product, int64, error) {
	var productModels []*models.ProductModel
	var total int64

	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Order(productOrder(filter.Sort)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&productModels).Error; err != nil {
		return nil, 0, err
	}

	return toDomainProducts(productModels), total, nil
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter catalog.ProductFilter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	} else if slug := strings.TrimSpace(filter.CategorySlug); slug != "" {
		query = query.Where("category_id IN (?)",
			r.db.Model(&models.CategoryModel{}).Select("id").Where("slug = ?", slug))
	}
	if filter.MetalTypeID != nil {
		query = query.Where("metal_type_id = ?", *filter.MetalTypeID)
	}
	if filter.StoneTypeID != nil {
		query = query.Where("stone_type_id = ?", *filter.StoneTypeID)
	}
	if filter.OccasionID != nil {
		query = query.Where("occasion_id = ?", *filter.OccasionID)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.Featured != nil {
		query = query.Where("is_featured = ?", *filter.Featured)
	}
	if filter.InStock {
		query = query.Where("stock > 0")
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}
	return query
}

// FindRelated returns active products of the same category, excluding the product itself
func (r *GormProductRepository) FindRelated(ctx context.Context, product *catalog.Product, limit int) ([]*catalog.Product, error) {
	if product.CategoryID == nil {
		return []*catalog.Product{}, nil
	}
	if limit <= 0 {
		limit = 4
	}
	var productModels []*models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("category_id = ? AND id <> ? AND is_active = ?", *product.CategoryID, product.ID, true).
		Order(productOrder(catalog.SortRating)).
		Limit(limit).
		Find(&productModels).Error; err != nil {
		return nil, err
	}
	return toDomainProducts(productModels), nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	return r.db.WithContext(ctx).Save(model).Error
}

// AdjustStock adds delta to the stock in one conditional update
func (r *GormProductRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	if delta == 0 {
		return nil
	}
	query := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("id = ?", id)
	if delta < 0 {
		query = query.Where("stock >= ?", -delta)
	}
	result := query.Updates(map[string]interface{}{
		"stock":      gorm.Expr("stock + ?", delta),
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	return shared.ErrInsufficientStock
}

// UpdateRating stores the aggregated review rating of a product
func (r *GormProductRepository) UpdateRating(ctx context.Context, id uuid.UUID, rating decimal.Decimal, count int) error {
	result := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"rating":       rating,
			"review_count": count,
		})
	return affected(result)
}

// Delete deletes a product. Order lines keep it alive: the delete then
// fails with ErrProductInUse.
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProductModel{}, "id = ?", id)
	return referenced(affected(result), catalog.ErrProductInUse)
}

// Count counts all products
func (r *GormProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProductModel{}).Count(&count).Error
	return count, err
}

// CountByCategory counts products referencing a category
func (r *GormProductRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

// CountByLookup counts products referencing a lookup value
func (r *GormProductRepository) CountByLookup(ctx context.Context, kind catalog.LookupKind, id int64) (int64, error) {
	column := kind.ProductColumn()
	if column == "" {
		return 0, shared.NewDomainError("INVALID_LOOKUP", "Unknown lookup type: "+string(kind))
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where(column+" = ?", id).
		Count(&count).Error
	return count, err
}

func toDomainProducts(productModels []*models.ProductModel) []*catalog.Product {
	products := make([]*catalog.Product, len(productModels))
	for i, model := range productModels {
		products[i] = model.ToDomain()
	}
	return products
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
