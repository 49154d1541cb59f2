package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/jewelry/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ErrProductInUse refuses deleting a product that order lines still point at
var ErrProductInUse = shared.NewDomainError("PRODUCT_IN_USE", "Product appears in orders and cannot be deleted; deactivate it instead")

// MaxProductImages caps the gallery size of a product
const MaxProductImages = 12

// ProductDetails are the editable merchandising fields of a product
type ProductDetails struct {
	Name           string
	Description    string
	Price          valueobject.Money
	CompareAtPrice *valueobject.Money
	CategoryID     *uuid.UUID
	MetalTypeID    *int64
	StoneTypeID    *int64
	OccasionID     *int64
}

// Product is a piece of jewelry offered on the storefront
type Product struct {
	shared.BaseAggregateRoot
	Name           string
	Description    string
	Price          valueobject.Money
	CompareAtPrice *valueobject.Money
	CategoryID     *uuid.UUID
	MetalTypeID    *int64
	StoneTypeID    *int64
	OccasionID     *int64
	ImageURL       string
	Images         []string
	Stock          int
	IsFeatured     bool
	IsActive       bool
	Rating         decimal.Decimal
	ReviewCount    int
}

// NewProduct creates an active product
func NewProduct(details ProductDetails, stock int) (*Product, error) {
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Stock:             stock,
		IsActive:          true,
		Rating:            decimal.Zero,
	}
	if err := product.applyDetails(details); err != nil {
		return nil, err
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update replaces the merchandising fields
func (p *Product) Update(details ProductDetails) error {
	if err := p.applyDetails(details); err != nil {
		return err
	}
	p.Touch()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
	return nil
}

func (p *Product) applyDetails(d ProductDetails) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	if !d.Price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Price must be greater than zero")
	}
	if d.CompareAtPrice != nil {
		gt, err := d.CompareAtPrice.GreaterThan(d.Price)
		if err != nil {
			return shared.NewDomainError("INVALID_PRICE", err.Error())
		}
		if !gt {
			return shared.NewDomainError("INVALID_PRICE", "Compare-at price must exceed the price")
		}
	}

	p.Name = name
	p.Description = strings.TrimSpace(d.Description)
	p.Price = d.Price
	p.CompareAtPrice = d.CompareAtPrice
	p.CategoryID = d.CategoryID
	p.MetalTypeID = d.MetalTypeID
	p.StoneTypeID = d.StoneTypeID
	p.OccasionID = d.OccasionID
	return nil
}

// SetStock overwrites the stock level
func (p *Product) SetStock(stock int) error {
	if stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	p.Stock = stock
	p.Touch()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
	return nil
}

// DecreaseStock takes quantity units out of stock
func (p *Product) DecreaseStock(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if quantity > p.Stock {
		return shared.ErrInsufficientStock
	}
	p.Stock -= quantity
	p.Touch()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
	return nil
}

// IncreaseStock puts quantity units back into stock
func (p *Product) IncreaseStock(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	p.Stock += quantity
	p.Touch()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
	return nil
}

// SetFeatured flags the product for the home page
func (p *Product) SetFeatured(featured bool) {
	if p.IsFeatured == featured {
		return
	}
	p.IsFeatured = featured
	p.Touch()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
}

// SetActive shows or hides the product on the storefront
func (p *Product) SetActive(active bool) {
	if p.IsActive == active {
		return
	}
	p.IsActive = active
	p.Touch()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
}

// AddImage appends an image URL; the first image becomes the cover
func (p *Product) AddImage(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return shared.NewDomainError("INVALID_IMAGE", "Image URL cannot be empty")
	}
	for _, existing := range p.Images {
		if existing == url {
			return nil
		}
	}
	if len(p.Images) >= MaxProductImages {
		return shared.NewDomainError("TOO_MANY_IMAGES", "A product can have at most 12 images")
	}
	p.Images = append(p.Images, url)
	if p.ImageURL == "" {
		p.ImageURL = url
	}
	p.Touch()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
	return nil
}

// RemoveImage drops an image; the cover moves to the next image
func (p *Product) RemoveImage(url string) {
	kept := p.Images[:0]
	for _, existing := range p.Images {
		if existing != url {
			kept = append(kept, existing)
		}
	}
	p.Images = kept
	if p.ImageURL == url {
		p.ImageURL = ""
		if len(p.Images) > 0 {
			p.ImageURL = p.Images[0]
		}
	}
	p.Touch()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
}

// ApplyRating stores the aggregate of approved reviews
func (p *Product) ApplyRating(average decimal.Decimal, count int) {
	p.Rating = average.Round(2)
	p.ReviewCount = count
	p.Touch()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
}

// IsPurchasable reports whether the product can be put in a cart
func (p *Product) IsPurchasable() bool {
	return p.IsActive && p.Stock > 0
}

// MarkDeleted records the deletion event
func (p *Product) MarkDeleted() {
	p.AddDomainEvent(NewProductDeletedEvent(p))
}
