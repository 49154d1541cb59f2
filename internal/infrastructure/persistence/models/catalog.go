package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/catalog"
	"github.com/jewelry/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CategoryModel is the persistence model for the Category domain entity.
type CategoryModel struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);not null"`
	Slug        string `gorm:"type:varchar(120);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	ImageURL    string `gorm:"type:varchar(500)"`
	SortOrder   int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category entity.
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseAggregateRoot: m.aggregateRoot(),
		Name:              m.Name,
		Slug:              m.Slug,
		Description:       m.Description,
		ImageURL:          m.ImageURL,
		SortOrder:         m.SortOrder,
	}
}

// FromDomain populates the persistence model from a domain Category entity.
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.setEntity(c.BaseEntity)
	m.Name = c.Name
	m.Slug = c.Slug
	m.Description = c.Description
	m.ImageURL = c.ImageURL
	m.SortOrder = c.SortOrder
}

// CategoryModelFromDomain creates a new persistence model from a domain Category entity.
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{}
	m.FromDomain(c)
	return m
}

// LookupModel is a row of metal_types, stone_types or occasions. The table is
// chosen per query from the lookup kind.
type LookupModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"not null"`
}

// ToDomain converts the row into a domain Lookup of the given kind
func (m *LookupModel) ToDomain(kind catalog.LookupKind) *catalog.Lookup {
	return &catalog.Lookup{
		ID:        m.ID,
		Kind:      kind,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
	}
}

// LookupModelFromDomain creates a new persistence model from a domain Lookup
func LookupModelFromDomain(l *catalog.Lookup) *LookupModel {
	return &LookupModel{
		ID:        l.ID,
		Name:      l.Name,
		CreatedAt: l.CreatedAt,
	}
}

// MetalTypeModel, StoneTypeModel and OccasionModel bind LookupModel to its
// three tables for schema creation in tests.
type (
	MetalTypeModel struct{ LookupModel }
	StoneTypeModel struct{ LookupModel }
	OccasionModel  struct{ LookupModel }
)

func (MetalTypeModel) TableName() string { return string(catalog.LookupMetalType) }
func (StoneTypeModel) TableName() string { return string(catalog.LookupStoneType) }
func (OccasionModel) TableName() string  { return string(catalog.LookupOccasion) }

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	BaseModel
	Name           string           `gorm:"type:varchar(200);not null"`
	Description    string           `gorm:"type:text"`
	Price          decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	CompareAtPrice *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Currency       string           `gorm:"type:varchar(3);not null;default:'USD'"`
	CategoryID     *uuid.UUID       `gorm:"type:uuid;index"`
	MetalTypeID    *int64           `gorm:"index"`
	StoneTypeID    *int64           `gorm:"index"`
	OccasionID     *int64           `gorm:"index"`
	ImageURL       string           `gorm:"type:varchar(500)"`
	Images         StringList       `gorm:"type:text;not null"`
	Stock          int              `gorm:"not null;default:0"`
	IsFeatured     bool             `gorm:"not null;default:false;index"`
	IsActive       bool             `gorm:"not null;default:true;index"`
	Rating         decimal.Decimal  `gorm:"type:decimal(3,2);not null;default:0"`
	ReviewCount    int              `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	currency := currencyOrDefault(m.Currency)
	p := &catalog.Product{
		BaseAggregateRoot: m.aggregateRoot(),
		Name:              m.Name,
		Description:       m.Description,
		Price:             valueobject.MustMoney(m.Price, currency),
		CategoryID:        m.CategoryID,
		MetalTypeID:       m.MetalTypeID,
		StoneTypeID:       m.StoneTypeID,
		OccasionID:        m.OccasionID,
		ImageURL:          m.ImageURL,
		Images:            append([]string{}, m.Images...),
		Stock:             m.Stock,
		IsFeatured:        m.IsFeatured,
		IsActive:          m.IsActive,
		Rating:            m.Rating,
		ReviewCount:       m.ReviewCount,
	}
	if m.CompareAtPrice != nil {
		compare := valueobject.MustMoney(*m.CompareAtPrice, currency)
		p.CompareAtPrice = &compare
	}
	return p
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.setEntity(p.BaseEntity)
	m.Name = p.Name
	m.Description = p.Description
	m.Price = p.Price.Amount()
	m.Currency = string(p.Price.Currency())
	m.CompareAtPrice = nil
	if p.CompareAtPrice != nil {
		amount := p.CompareAtPrice.Amount()
		m.CompareAtPrice = &amount
	}
	m.CategoryID = p.CategoryID
	m.MetalTypeID = p.MetalTypeID
	m.StoneTypeID = p.StoneTypeID
	m.OccasionID = p.OccasionID
	m.ImageURL = p.ImageURL
	m.Images = StringList(append([]string{}, p.Images...))
	m.Stock = p.Stock
	m.IsFeatured = p.IsFeatured
	m.IsActive = p.IsActive
	m.Rating = p.Rating
	m.ReviewCount = p.ReviewCount
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
