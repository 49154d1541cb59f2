package persistence

import (
	"context"
	"strings"

	"github.com/jewelry/backend/internal/domain/catalog"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/jewelry/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

var errLookupExists = shared.NewDomainError("ALREADY_EXISTS", "A value with this name already exists")

// GormLookupRepository implements LookupRepository over the metal_types,
// stone_types and occasions tables
type GormLookupRepository struct {
	db *gorm.DB
}

// NewGormLookupRepository creates a new GormLookupRepository
func NewGormLookupRepository(db *gorm.DB) *GormLookupRepository {
	return &GormLookupRepository{db: db}
}

func (r *GormLookupRepository) table(ctx context.Context, kind catalog.LookupKind) (*gorm.DB, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_LOOKUP", "Unknown lookup type: "+string(kind))
	}
	return r.db.WithContext(ctx).Table(string(kind)), nil
}

// List returns all values of a kind ordered by name
func (r *GormLookupRepository) List(ctx context.Context, kind catalog.LookupKind) ([]*catalog.Lookup, error) {
	query, err := r.table(ctx, kind)
	if err != nil {
		return nil, err
	}
	var rows []*models.LookupModel
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	lookups := make([]*catalog.Lookup, len(rows))
	for i, row := range rows {
		lookups[i] = row.ToDomain(kind)
	}
	return lookups, nil
}

// FindByID finds a value by kind and ID
func (r *GormLookupRepository) FindByID(ctx context.Context, kind catalog.LookupKind, id int64) (*catalog.Lookup, error) {
	query, err := r.table(ctx, kind)
	if err != nil {
		return nil, err
	}
	var row models.LookupModel
	if err := query.Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, notFound(err)
	}
	return row.ToDomain(kind), nil
}

// ExistsByName checks for a case-insensitive name clash, ignoring excludeID
func (r *GormLookupRepository) ExistsByName(ctx context.Context, kind catalog.LookupKind, name string, excludeID int64) (bool, error) {
	query, err := r.table(ctx, kind)
	if err != nil {
		return false, err
	}
	query = query.Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name)))
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the value and sets its ID
func (r *GormLookupRepository) Create(ctx context.Context, lookup *catalog.Lookup) error {
	query, err := r.table(ctx, lookup.Kind)
	if err != nil {
		return err
	}
	row := models.LookupModelFromDomain(lookup)
	row.ID = 0
	if err := query.Create(row).Error; err != nil {
		return duplicate(err, errLookupExists)
	}
	lookup.ID = row.ID
	return nil
}

// Update saves a renamed value
func (r *GormLookupRepository) Update(ctx context.Context, lookup *catalog.Lookup) error {
	query, err := r.table(ctx, lookup.Kind)
	if err != nil {
		return err
	}
	result := query.Where("id = ?", lookup.ID).Update("name", lookup.Name)
	if result.Error != nil {
		return duplicate(result.Error, errLookupExists)
	}
	return affected(result)
}

// Delete removes a value
func (r *GormLookupRepository) Delete(ctx context.Context, kind catalog.LookupKind, id int64) error {
	query, err := r.table(ctx, kind)
	if err != nil {
		return err
	}
	result := query.Where("id = ?", id).Delete(&models.LookupModel{})
	return affected(result)
}

// Ensure GormLookupRepository implements LookupRepository
var _ catalog.LookupRepository = (*GormLookupRepository)(nil)
