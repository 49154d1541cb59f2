package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductSort is a storefront sort key
type ProductSort string

const (
	SortNewest    ProductSort = "newest"
	SortPriceAsc  ProductSort = "price_asc"
	SortPriceDesc ProductSort = "price_desc"
	SortName      ProductSort = "name"
	SortRating    ProductSort = "rating"
)

// IsValid reports whether the sort key is known
func (s ProductSort) IsValid() bool {
	switch s {
	case SortNewest, SortPriceAsc, SortPriceDesc, SortName, SortRating:
		return true
	}
	return false
}

// ProductFilter narrows product listings
type ProductFilter struct {
	Search       string
	CategoryID   *uuid.UUID
	CategorySlug string
	MetalTypeID  *int64
	StoneTypeID  *int64
	OccasionID   *int64
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Featured     *bool
	InStock      bool
	// Active restricts by visibility; nil means both (admin listings)
	Active   *bool
	Sort     ProductSort
	Page     int
	PageSize int
}

// Offset returns the number of rows to skip
func (f ProductFilter) Offset() int {
	return shared.PageOffset(f.Page, f.PageSize)
}

// Limit returns the page size, defaulting to 20 and capped at 100
func (f ProductFilter) Limit() int {
	return shared.PageLimit(f.PageSize)
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs finds the products with the given IDs; missing IDs are skipped
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Product, error)

	// FindAll returns one page of products and the total match count
	FindAll(ctx context.Context, filter ProductFilter) ([]*Product, int64, error)

	// FindRelated returns active products of the same category, excluding the product itself
	FindRelated(ctx context.Context, product *Product, limit int) ([]*Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// AdjustStock adds delta to the stock in one conditional update. A result
	// below zero fails with shared.ErrInsufficientStock and changes nothing.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) error

	// UpdateRating stores the aggregated review rating of a product
	UpdateRating(ctx context.Context, id uuid.UUID, rating decimal.Decimal, count int) error

	// Delete deletes a product
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts all products
	Count(ctx context.Context) (int64, error)

	// CountByCategory counts products referencing a category
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)

	// CountByLookup counts products referencing a lookup value
	CountByLookup(ctx context.Context, kind LookupKind, id int64) (int64, error)
}
