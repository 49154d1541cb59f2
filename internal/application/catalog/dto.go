package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name           string           `json:"name" binding:"required,min=1,max=200"`
	Description    string           `json:"description" binding:"max=5000"`
	Price          decimal.Decimal  `json:"price" binding:"required"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price"`
	CategoryID     *uuid.UUID       `json:"category_id"`
	MetalTypeID    *int64           `json:"metal_type_id"`
	StoneTypeID    *int64           `json:"stone_type_id"`
	OccasionID     *int64           `json:"occasion_id"`
	Stock          int              `json:"stock" binding:"min=0"`
	IsFeatured     bool             `json:"is_featured"`
	IsActive       *bool            `json:"is_active"`
}

// UpdateProductRequest replaces a product's merchandising fields
type UpdateProductRequest struct {
	Name           string           `json:"name" binding:"required,min=1,max=200"`
	Description    string           `json:"description" binding:"max=5000"`
	Price          decimal.Decimal  `json:"price" binding:"required"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price"`
	CategoryID     *uuid.UUID       `json:"category_id"`
	MetalTypeID    *int64           `json:"metal_type_id"`
	StoneTypeID    *int64           `json:"stone_type_id"`
	OccasionID     *int64           `json:"occasion_id"`
}

// ProductListQuery is the storefront/admin product query string
type ProductListQuery struct {
	Search    string           `form:"search" binding:"max=100"`
	Category  string           `form:"category"` // id or slug
	MetalType *int64           `form:"metal_type"`
	StoneType *int64           `form:"stone_type"`
	Occasion  *int64           `form:"occasion"`
	MinPrice  *decimal.Decimal `form:"min_price"`
	MaxPrice  *decimal.Decimal `form:"max_price"`
	Featured  *bool            `form:"featured"`
	InStock   bool             `form:"in_stock"`
	Active    *bool            `form:"active"` // admin only
	Sort      string           `form:"sort" binding:"omitempty,oneof=newest price_asc price_desc name rating"`
	Page      int              `form:"page" binding:"omitempty,min=1"`
	PageSize  int              `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// SetStockRequest overwrites the stock level
type SetStockRequest struct {
	Stock int `json:"stock" binding:"min=0"`
}

// SetFlagRequest toggles a boolean product flag
type SetFlagRequest struct {
	Value bool `json:"value"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price,omitempty"`
	Currency       string           `json:"currency"`
	CategoryID     *uuid.UUID       `json:"category_id,omitempty"`
	MetalTypeID    *int64           `json:"metal_type_id,omitempty"`
	StoneTypeID    *int64           `json:"stone_type_id,omitempty"`
	OccasionID     *int64           `json:"occasion_id,omitempty"`
	ImageURL       string           `json:"image_url"`
	Images         []string         `json:"images"`
	Stock          int              `json:"stock"`
	InStock        bool             `json:"in_stock"`
	IsFeatured     bool             `json:"is_featured"`
	IsActive       bool             `json:"is_active"`
	Rating         decimal.Decimal  `json:"rating"`
	ReviewCount    int              `json:"review_count"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// ToProductResponse converts a domain product to a response
func ToProductResponse(p *catalog.Product) ProductResponse {
	resp := ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.Amount(),
		Currency:    string(p.Price.Currency()),
		CategoryID:  p.CategoryID,
		MetalTypeID: p.MetalTypeID,
		StoneTypeID: p.StoneTypeID,
		OccasionID:  p.OccasionID,
		ImageURL:    p.ImageURL,
		Images:      p.Images,
		Stock:       p.Stock,
		InStock:     p.Stock > 0,
		IsFeatured:  p.IsFeatured,
		IsActive:    p.IsActive,
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if resp.Images == nil {
		resp.Images = []string{}
	}
	if p.CompareAtPrice != nil {
		amount := p.CompareAtPrice.Amount()
		resp.CompareAtPrice = &amount
	}
	return resp
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []*catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = ToProductResponse(p)
	}
	return out
}

// CategoryRequest creates or updates a category
type CategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Slug        string `json:"slug" binding:"omitempty,max=120,slug"`
	Description string `json:"description" binding:"max=2000"`
	ImageURL    string `json:"image_url" binding:"omitempty,url,max=500"`
	SortOrder   int    `json:"sort_order"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToCategoryResponse converts a domain category to a response
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		SortOrder:   c.SortOrder,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// LookupRequest creates or renames a metal type, stone type or occasion
type LookupRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// LookupResponse represents a lookup value
type LookupResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ImageUploadRequest asks for a presigned upload URL
type ImageUploadRequest struct {
	Filename    string `json:"filename" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required"`
}

// ImageUploadResponse carries the presigned PUT URL
type ImageUploadResponse struct {
	UploadURL  string    `json:"upload_url"`
	StorageKey string    `json:"storage_key"`
	PublicURL  string    `json:"public_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// AttachImageRequest confirms an uploaded object
type AttachImageRequest struct {
	StorageKey string `json:"storage_key" binding:"required,max=500"`
}

// RemoveImageRequest drops an image from the gallery
type RemoveImageRequest struct {
	URL string `json:"url" binding:"required"`
}
