package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/catalog"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/jewelry/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultRelatedLimit is used when the caller asks for no specific count
const DefaultRelatedLimit = 4

// ProductService handles product browsing and administration
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	lookupRepo   catalog.LookupRepository
	currency     valueobject.Currency
	publisher    shared.EventPublisher
	logger       *zap.Logger
}

// NewProductService creates a new ProductService. Prices are stored in currency.
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	lookupRepo catalog.LookupRepository,
	currency valueobject.Currency,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *ProductService {
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		lookupRepo:   lookupRepo,
		currency:     currency,
		publisher:    publisher,
		logger:       logger,
	}
}

// List returns one page of products. The storefront always sees active
// products only; admins may filter on visibility.
func (s *ProductService) List(ctx context.Context, query ProductListQuery, admin bool) (*shared.Paginated[ProductResponse], error) {
	filter, err := s.buildFilter(ctx, query, admin)
	if err != nil {
		return nil, err
	}
	if filter == nil {
		// unknown category slug matches nothing
		page := shared.NewPaginated([]ProductResponse{}, 0, max(query.Page, 1), query.PageSize)
		return &page, nil
	}

	products, total, err := s.productRepo.FindAll(ctx, *filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	page := shared.NewPaginated(ToProductResponses(products), total, max(filter.Page, 1), filter.Limit())
	return &page, nil
}

func (s *ProductService) buildFilter(ctx context.Context, q ProductListQuery, admin bool) (*catalog.ProductFilter, error) {
	filter := catalog.ProductFilter{
		Search:      strings.TrimSpace(q.Search),
		MetalTypeID: q.MetalType,
		StoneTypeID: q.StoneType,
		OccasionID:  q.Occasion,
		MinPrice:    q.MinPrice,
		MaxPrice:    q.MaxPrice,
		Featured:    q.Featured,
		InStock:     q.InStock,
		Sort:        catalog.ProductSort(q.Sort),
		Page:        q.Page,
		PageSize:    q.PageSize,
	}
	if filter.Sort == "" {
		filter.Sort = catalog.SortNewest
	}
	if !filter.Sort.IsValid() {
		return nil, shared.NewDomainError("INVALID_SORT", "Unknown sort: "+q.Sort)
	}
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return nil, shared.NewDomainError("INVALID_PRICE_RANGE", "min_price cannot exceed max_price")
	}

	if admin {
		filter.Active = q.Active
	} else {
		active := true
		filter.Active = &active
	}

	if category := strings.TrimSpace(q.Category); category != "" {
		if id, err := uuid.Parse(category); err == nil {
			filter.CategoryID = &id
		} else {
			found, err := s.categoryRepo.FindBySlug(ctx, strings.ToLower(category))
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return nil, nil
				}
				return nil, fmt.Errorf("failed to resolve category: %w", err)
			}
			filter.CategoryID = &found.ID
		}
	}
	return &filter, nil
}

// Get returns one product. Inactive products are only visible to admins.
func (s *ProductService) Get(ctx context.Context, id uuid.UUID, admin bool) (*ProductResponse, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive && !admin {
		return nil, productNotFound()
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Related returns active products of the same category, excluding the product itself
func (s *ProductService) Related(ctx context.Context, id uuid.UUID, limit int) ([]ProductResponse, error) {
	if limit <= 0 || limit > 20 {
		limit = DefaultRelatedLimit
	}
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.CategoryID == nil {
		return []ProductResponse{}, nil
	}
	related, err := s.productRepo.FindRelated(ctx, product, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load related products: %w", err)
	}
	return ToProductResponses(related), nil
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	details, err := s.details(ctx, req.Name, req.Description, req.Price, req.CompareAtPrice,
		req.CategoryID, req.MetalTypeID, req.StoneTypeID, req.OccasionID)
	if err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(details, req.Stock)
	if err != nil {
		return nil, err
	}
	product.SetFeatured(req.IsFeatured)
	if req.IsActive != nil {
		product.SetActive(*req.IsActive)
	}

	if err := s.save(ctx, product); err != nil {
		return nil, err
	}
	s.logger.Info("Product created", zap.String("product_id", product.ID.String()), zap.String("name", product.Name))

	resp := ToProductResponse(product)
	return &resp, nil
}

// Update replaces the merchandising fields of a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	details, err := s.details(ctx, req.Name, req.Description, req.Price, req.CompareAtPrice,
		req.CategoryID, req.MetalTypeID, req.StoneTypeID, req.OccasionID)
	if err != nil {
		return nil, err
	}
	if err := product.Update(details); err != nil {
		return nil, err
	}
	if err := s.save(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// SetStock overwrites the stock level
func (s *ProductService) SetStock(ctx context.Context, id uuid.UUID, stock int) (*ProductResponse, error) {
	return s.mutate(ctx, id, func(p *catalog.Product) error { return p.SetStock(stock) })
}

// SetFeatured flags or unflags the product for the home page
func (s *ProductService) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (*ProductResponse, error) {
	return s.mutate(ctx, id, func(p *catalog.Product) error {
		p.SetFeatured(featured)
		return nil
	})
}

// ToggleFeatured flips the featured flag
func (s *ProductService) ToggleFeatured(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	return s.mutate(ctx, id, func(p *catalog.Product) error {
		p.SetFeatured(!p.IsFeatured)
		return nil
	})
}

// SetActive shows or hides the product on the storefront
func (s *ProductService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*ProductResponse, error) {
	return s.mutate(ctx, id, func(p *catalog.Product) error {
		p.SetActive(active)
		return nil
	})
}

// Delete deletes a product
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, catalog.ErrProductInUse) {
			return err
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	product.MarkDeleted()
	s.publish(ctx, product)
	s.logger.Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}

// Count returns the number of products
func (s *ProductService) Count(ctx context.Context) (int64, error) {
	return s.productRepo.Count(ctx)
}

func (s *ProductService) mutate(ctx context.Context, id uuid.UUID, fn func(*catalog.Product) error) (*ProductResponse, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(product); err != nil {
		return nil, err
	}
	if err := s.save(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// details validates references and builds the domain input
func (s *ProductService) details(
	ctx context.Context,
	name, description string,
	price decimal.Decimal,
	compareAt *decimal.Decimal,
	categoryID *uuid.UUID,
	metalTypeID, stoneTypeID, occasionID *int64,
) (catalog.ProductDetails, error) {
	d := catalog.ProductDetails{
		Name:        name,
		Description: description,
		Price:       valueobject.MustMoney(price, s.currency),
		CategoryID:  categoryID,
		MetalTypeID: metalTypeID,
		StoneTypeID: stoneTypeID,
		OccasionID:  occasionID,
	}
	if compareAt != nil {
		m := valueobject.MustMoney(*compareAt, s.currency)
		d.CompareAtPrice = &m
	}

	if categoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *categoryID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return d, shared.NewDomainError("INVALID_CATEGORY", "Category not found")
			}
			return d, fmt.Errorf("failed to load category: %w", err)
		}
	}
	refs := []struct {
		kind catalog.LookupKind
		id   *int64
	}{
		{catalog.LookupMetalType, metalTypeID},
		{catalog.LookupStoneType, stoneTypeID},
		{catalog.LookupOccasion, occasionID},
	}
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		if _, err := s.lookupRepo.FindByID(ctx, ref.kind, *ref.id); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return d, shared.NewDomainError("INVALID_LOOKUP", fmt.Sprintf("Unknown %s id %d", ref.kind, *ref.id))
			}
			return d, fmt.Errorf("failed to load %s: %w", ref.kind, err)
		}
	}
	return d, nil
}

func (s *ProductService) find(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, productNotFound()
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return product, nil
}

func (s *ProductService) save(ctx context.Context, product *catalog.Product) error {
	if err := s.productRepo.Save(ctx, product); err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	s.publish(ctx, product)
	return nil
}

func (s *ProductService) publish(ctx context.Context, product *catalog.Product) {
	if err := shared.PublishAndClear(ctx, s.publisher, product); err != nil {
		s.logger.Warn("Failed to publish product events", zap.Error(err))
	}
}

func productNotFound() error {
	return shared.NewDomainError("NOT_FOUND", "Product not found")
}
